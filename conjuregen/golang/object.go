package golang

import (
	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"

	"github.com/broady/conjure/conjuregen/spec"
)

// objectField is a field of a generated struct.
type objectField struct {
	def spec.FieldDefinition

	// field is the unexported struct field, member the exported accessor
	// and setter name. add is the appender name of list and set fields.
	field  string
	member string
	add    string

	// goType is the struct field type. valueType is the type accepted by
	// setters and returned by accessors. itemType is the element type of
	// list and set fields.
	goType    *jen.Statement
	valueType *jen.Statement
	itemType  *jen.Statement

	required bool
	boxed    bool
	optional bool
}

func (e *emitter) objectFields(owner spec.TypeName, members *Scope, defs []spec.FieldDefinition) ([]objectField, error) {
	fields := make([]objectField, 0, len(defs))
	for _, fd := range defs {
		of := objectField{
			def:      fd,
			required: e.res.IsRequired(fd.Type),
			boxed:    e.res.Boxed(owner, fd.Type),
		}
		var err error
		if of.field, err = members.Declare(LocalIdent(fd.FieldName)); err != nil {
			return nil, errors.Wrapf(err, "field %s of %s", fd.FieldName, owner)
		}
		if of.member, err = members.Declare(FieldIdent(fd.FieldName)); err != nil {
			return nil, errors.Wrapf(err, "field %s of %s", fd.FieldName, owner)
		}
		if of.goType, err = e.res.ResolveField(owner, fd.Type); err != nil {
			return nil, errors.Wrapf(err, "field %s of %s", fd.FieldName, owner)
		}
		of.valueType = of.goType

		switch t := fd.Type.(type) {
		case *spec.OptionalType:
			of.optional = true
			if of.valueType, err = e.res.Resolve(t.ItemType); err != nil {
				return nil, err
			}
		case *spec.ListType:
			if of.itemType, err = e.res.Resolve(t.ItemType); err != nil {
				return nil, err
			}
		case *spec.SetType:
			if of.itemType, err = e.res.Resolve(t.ItemType); err != nil {
				return nil, err
			}
		}
		if of.boxed {
			if of.valueType, err = e.res.Resolve(fd.Type); err != nil {
				return nil, err
			}
		}
		if of.itemType != nil {
			if of.add, err = members.Declare("Add" + of.member); err != nil {
				return nil, errors.Wrapf(err, "field %s of %s", fd.FieldName, owner)
			}
		}
		fields = append(fields, of)
	}
	return fields, nil
}

// emitObject emits a struct with accessors, a staged builder and JSON
// methods. seed lists additional members the caller will declare.
func (e *emitter) emitObject(f *goFile, owner spec.TypeName, goName string, defs []spec.FieldDefinition, docs spec.Documentation, seed ...string) ([]objectField, error) {
	pkg := e.pkgs.forType(owner).ImportPath
	members := e.names.Members(owner, seed...)
	fields, err := e.objectFields(owner, members, defs)
	if err != nil {
		return nil, err
	}

	f.Add(e.doc(docs, ""))
	f.Type().Id(goName).StructFunc(func(g *jen.Group) {
		for _, fld := range fields {
			g.Id(fld.field).Add(fld.goType)
		}
	})

	for _, fld := range fields {
		e.emitAccessor(f, goName, fld)
	}
	if err := e.emitBuilder(f, pkg, goName, fields); err != nil {
		return nil, errors.Wrapf(err, "builder of %s", owner)
	}
	e.emitObjectJSON(f, goName, fields)
	return fields, nil
}

func (e *emitter) emitAccessor(f *goFile, goName string, fld objectField) {
	f.Add(e.doc(fld.def.Docs, fld.def.Deprecated))
	recv := jen.Id("o").Id(goName)
	value := jen.Id("o").Dot(fld.field)
	switch {
	case fld.optional:
		f.Func().Params(recv).Id(fld.member).Params().Params(jen.Add(fld.valueType), jen.Bool()).Block(
			jen.If(jen.Add(value).Op("==").Nil()).Block(
				jen.Var().Id("zero").Add(fld.valueType),
				jen.Return(jen.Id("zero"), jen.False()),
			),
			jen.Return(jen.Op("*").Id("o").Dot(fld.field), jen.True()),
		)
	case fld.boxed:
		f.Func().Params(recv).Id(fld.member).Params().Add(fld.valueType).Block(
			jen.If(jen.Add(value).Op("==").Nil()).Block(
				jen.Var().Id("zero").Add(fld.valueType),
				jen.Return(jen.Id("zero")),
			),
			jen.Return(jen.Op("*").Id("o").Dot(fld.field)),
		)
	default:
		f.Func().Params(recv).Id(fld.member).Params().Add(fld.valueType).Block(
			jen.Return(value),
		)
	}
}

// emitBuilder emits the staged builder: one stage interface per required
// field, in declaration order, each exposing exactly one setter, then the
// final stage with the remaining setters and Build.
func (e *emitter) emitBuilder(f *goFile, pkg, goName string, fields []objectField) error {
	var required, defaulted []objectField
	for _, fld := range fields {
		if fld.required {
			required = append(required, fld)
		} else {
			defaulted = append(defaulted, fld)
		}
	}

	stages := make([]string, len(required))
	for i, fld := range required {
		name, err := e.names.Declare(pkg, goName+"Set"+fld.member)
		if err != nil {
			return err
		}
		stages[i] = name
	}
	final, err := e.names.Declare(pkg, goName+"Builder")
	if err != nil {
		return err
	}
	impl, err := e.names.Declare(pkg, LocalIdent(goName)+"Builder")
	if err != nil {
		return err
	}
	ctor, err := e.names.Declare(pkg, "New"+goName+"Builder")
	if err != nil {
		return err
	}
	next := func(i int) string {
		if i+1 < len(stages) {
			return stages[i+1]
		}
		return final
	}

	for i, fld := range required {
		f.Commentf("%s is the stage of %s that sets %s.", stages[i], final, fld.def.FieldName)
		f.Type().Id(stages[i]).Interface(
			jen.Id(fld.member).Params(jen.Id("v").Add(fld.valueType)).Id(next(i)),
		)
	}

	f.Commentf("%s sets the optional fields of %s and builds it.", final, goName)
	f.Type().Id(final).InterfaceFunc(func(g *jen.Group) {
		for _, fld := range defaulted {
			g.Id(fld.member).Params(jen.Id("v").Add(fld.valueType)).Id(final)
			if fld.add != "" {
				g.Id(fld.add).Params(jen.Id("v").Op("...").Add(fld.itemType)).Id(final)
			}
		}
		g.Id("Build").Params().Id(goName)
	})

	f.Type().Id(impl).Struct(jen.Id("v").Id(goName))

	first := final
	if len(stages) > 0 {
		first = stages[0]
	}
	f.Commentf("%s returns a builder for %s.", ctor, goName)
	f.Func().Id(ctor).Params().Id(first).Block(
		jen.Return(jen.Op("&").Id(impl).Values()),
	)

	recv := jen.Id("b").Op("*").Id(impl)
	for i, fld := range required {
		assign := jen.Id("b").Dot("v").Dot(fld.field).Op("=").Id("v")
		if fld.boxed {
			assign = jen.Id("b").Dot("v").Dot(fld.field).Op("=").Op("&").Id("v")
		}
		f.Func().Params(recv.Clone()).Id(fld.member).Params(jen.Id("v").Add(fld.valueType)).Id(next(i)).Block(
			assign,
			jen.Return(jen.Id("b")),
		)
	}
	for _, fld := range defaulted {
		assign := jen.Id("b").Dot("v").Dot(fld.field).Op("=").Id("v")
		if fld.optional {
			assign = jen.Id("b").Dot("v").Dot(fld.field).Op("=").Op("&").Id("v")
		}
		f.Func().Params(recv.Clone()).Id(fld.member).Params(jen.Id("v").Add(fld.valueType)).Id(final).Block(
			assign,
			jen.Return(jen.Id("b")),
		)
		if fld.add != "" {
			f.Func().Params(recv.Clone()).Id(fld.add).Params(jen.Id("v").Op("...").Add(fld.itemType)).Id(final).Block(
				jen.Id("b").Dot("v").Dot(fld.field).Op("=").Append(jen.Id("b").Dot("v").Dot(fld.field), jen.Id("v").Op("...")),
				jen.Return(jen.Id("b")),
			)
		}
	}
	f.Func().Params(recv.Clone()).Id("Build").Params().Id(goName).Block(
		jen.Return(jen.Id("b").Dot("v")),
	)
	return nil
}

func (e *emitter) emitObjectJSON(f *goFile, goName string, fields []objectField) {
	f.Func().Params(jen.Id("o").Id(goName)).Id("MarshalJSON").Params().Params(jen.Index().Byte(), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Id("w").Op(":=").Add(e.res.codecs("NewObjectWriter")).Call()
		for _, fld := range fields {
			write := jen.Id("w").Dot("Field").Call(jen.Lit(fld.def.FieldName), jen.Id("o").Dot(fld.field))
			if cond := e.notEmpty(fld.def.Type, jen.Id("o").Dot(fld.field)); cond != nil {
				g.If(cond).Block(write)
				continue
			}
			g.Add(write)
		}
		g.Return(jen.Id("w").Dot("Bytes").Call())
	})

	f.Func().Params(jen.Id("o").Op("*").Id(goName)).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().BlockFunc(func(g *jen.Group) {
		if len(fields) == 0 {
			g.If(
				jen.List(jen.Id("_"), jen.Err()).Op(":=").Add(e.res.codecs("NewObjectReader")).Call(jen.Id("data")),
				jen.Err().Op("!=").Nil(),
			).Block(jen.Return(jen.Err()))
			g.Op("*").Id("o").Op("=").Id(goName).Values()
			g.Return(jen.Nil())
			return
		}
		g.List(jen.Id("r"), jen.Err()).Op(":=").Add(e.res.codecs("NewObjectReader")).Call(jen.Id("data"))
		g.Add(returnErr())
		g.Var().Id("v").Id(goName)
		for _, fld := range fields {
			method := "Optional"
			if fld.required {
				method = "Required"
			}
			g.Add(checkErr(jen.Id("r").Dot(method).Call(jen.Lit(fld.def.FieldName), jen.Op("&").Id("v").Dot(fld.field))))
		}
		g.Op("*").Id("o").Op("=").Id("v")
		g.Return(jen.Nil())
	})
}
