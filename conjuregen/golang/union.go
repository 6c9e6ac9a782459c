package golang

import (
	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"

	"github.com/broady/conjure/conjuregen/spec"
)

type unionVariant struct {
	def       spec.FieldDefinition
	field     string
	visit     string
	param     string
	ctor      string
	valueType *jen.Statement
}

// emitUnion emits a tagged union holding exactly one variant. Unknown
// variants keep their raw value and are re-encoded verbatim.
func (e *emitter) emitUnion(f *goFile, def *spec.UnionDefinition, goName string) error {
	pkg := e.pkgs.forType(def.Name).ImportPath
	members := e.names.Members(def.Name, "typ", "unknown", "Accept", "AcceptFuncs", "Type")
	visitorMembers := newScope("VisitUnknown")
	params := e.names.Locals()

	visitor, err := e.names.Declare(pkg, goName+"Visitor")
	if err != nil {
		return err
	}
	variants := make([]unionVariant, 0, len(def.Union))
	for _, fd := range def.Union {
		v := unionVariant{def: fd}
		if v.field, err = members.Declare(LocalIdent(fd.FieldName)); err != nil {
			return errors.Wrapf(err, "variant %s of %s", fd.FieldName, def.Name)
		}
		if v.visit, err = visitorMembers.Declare("Visit" + FieldIdent(fd.FieldName)); err != nil {
			return errors.Wrapf(err, "variant %s of %s", fd.FieldName, def.Name)
		}
		if v.param, err = params.Declare(LocalIdent(fd.FieldName) + "Func"); err != nil {
			return errors.Wrapf(err, "variant %s of %s", fd.FieldName, def.Name)
		}
		if v.ctor, err = e.names.Declare(pkg, "New"+goName+"From"+FieldIdent(fd.FieldName)); err != nil {
			return errors.Wrapf(err, "variant %s of %s", fd.FieldName, def.Name)
		}
		if v.valueType, err = e.res.Resolve(fd.Type); err != nil {
			return errors.Wrapf(err, "variant %s of %s", fd.FieldName, def.Name)
		}
		variants = append(variants, v)
	}
	unknownFunc, err := params.Declare("unknownFunc")
	if err != nil {
		return err
	}

	f.Add(e.doc(def.Docs, ""))
	f.Type().Id(goName).StructFunc(func(g *jen.Group) {
		g.Id("typ").String()
		for _, v := range variants {
			g.Id(v.field).Op("*").Add(v.valueType)
		}
		g.Id("unknown").Index().Byte()
	})

	for _, v := range variants {
		f.Add(e.doc(v.def.Docs, v.def.Deprecated))
		f.Func().Id(v.ctor).Params(jen.Id("v").Add(v.valueType)).Id(goName).Block(
			jen.Return(jen.Id(goName).Values(jen.Dict{
				jen.Id("typ"):   jen.Lit(v.def.FieldName),
				jen.Id(v.field): jen.Op("&").Id("v"),
			})),
		)
	}

	f.Commentf("%s handles each variant of %s.", visitor, goName)
	f.Type().Id(visitor).InterfaceFunc(func(g *jen.Group) {
		for _, v := range variants {
			g.Id(v.visit).Params(jen.Id("v").Add(v.valueType)).Error()
		}
		g.Id("VisitUnknown").Params(jen.Id("typ").String()).Error()
	})

	recv := func() *jen.Statement { return jen.Id("u").Id(goName) }
	empty := func() *jen.Statement {
		return jen.Op("&").Add(e.res.rt("EmptyUnionError")).Values(jen.Dict{jen.Id("Union"): jen.Lit(goName)})
	}

	f.Comment("Type returns the wire name of the variant that is set.")
	f.Func().Params(recv()).Id("Type").Params().String().Block(
		jen.Return(jen.Id("u").Dot("typ")),
	)

	f.Func().Params(recv()).Id("Accept").Params(jen.Id("v").Id(visitor)).Error().Block(
		jen.Switch(jen.Id("u").Dot("typ")).BlockFunc(func(g *jen.Group) {
			for _, v := range variants {
				g.Case(jen.Lit(v.def.FieldName)).Block(
					jen.If(jen.Id("u").Dot(v.field).Op("==").Nil()).Block(jen.Return(empty())),
					jen.Return(jen.Id("v").Dot(v.visit).Call(jen.Op("*").Id("u").Dot(v.field))),
				)
			}
			g.Case(jen.Lit("")).Block(jen.Return(empty()))
			g.Default().Block(jen.Return(jen.Id("v").Dot("VisitUnknown").Call(jen.Id("u").Dot("typ"))))
		}),
	)

	f.Func().Params(recv()).Id("AcceptFuncs").ParamsFunc(func(g *jen.Group) {
		for _, v := range variants {
			g.Id(v.param).Func().Params(jen.Add(v.valueType)).Error()
		}
		g.Id(unknownFunc).Func().Params(jen.String()).Error()
	}).Error().Block(
		jen.Switch(jen.Id("u").Dot("typ")).BlockFunc(func(g *jen.Group) {
			for _, v := range variants {
				g.Case(jen.Lit(v.def.FieldName)).Block(
					jen.If(jen.Id("u").Dot(v.field).Op("==").Nil()).Block(jen.Return(empty())),
					jen.Return(jen.Id(v.param).Call(jen.Op("*").Id("u").Dot(v.field))),
				)
			}
			g.Case(jen.Lit("")).Block(jen.Return(empty()))
			g.Default().Block(jen.Return(jen.Id(unknownFunc).Call(jen.Id("u").Dot("typ"))))
		}),
	)

	f.Func().Params(recv()).Id("MarshalJSON").Params().Params(jen.Index().Byte(), jen.Error()).Block(
		jen.If(jen.Id("u").Dot("typ").Op("==").Lit("")).Block(jen.Return(jen.Nil(), empty())),
		jen.Id("w").Op(":=").Add(e.res.codecs("NewObjectWriter")).Call(),
		jen.Id("w").Dot("Field").Call(jen.Lit("type"), jen.Id("u").Dot("typ")),
		jen.Switch(jen.Id("u").Dot("typ")).BlockFunc(func(g *jen.Group) {
			for _, v := range variants {
				g.Case(jen.Lit(v.def.FieldName)).Block(
					jen.Id("w").Dot("Field").Call(jen.Lit(v.def.FieldName), jen.Id("u").Dot(v.field)),
				)
			}
			g.Default().Block(
				jen.Id("w").Dot("RawField").Call(jen.Id("u").Dot("typ"), jen.Id("u").Dot("unknown")),
			)
		}),
		jen.Return(jen.Id("w").Dot("Bytes").Call()),
	)

	f.Func().Params(jen.Id("u").Op("*").Id(goName)).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().Block(
		jen.List(jen.Id("r"), jen.Err()).Op(":=").Add(e.res.codecs("NewObjectReader")).Call(jen.Id("data")),
		returnErr(),
		jen.Var().Id("v").Id(goName),
		checkErr(jen.Id("r").Dot("Required").Call(jen.Lit("type"), jen.Op("&").Id("v").Dot("typ"))),
		jen.Switch(jen.Id("v").Dot("typ")).BlockFunc(func(g *jen.Group) {
			for _, v := range variants {
				g.Case(jen.Lit(v.def.FieldName)).Block(
					jen.Id("v").Dot(v.field).Op("=").New(v.valueType),
					checkErr(jen.Id("r").Dot("Required").Call(jen.Lit(v.def.FieldName), jen.Id("v").Dot(v.field))),
				)
			}
			g.Default().Block(
				jen.List(jen.Id("raw"), jen.Id("_")).Op(":=").Id("r").Dot("Raw").Call(jen.Id("v").Dot("typ")),
				jen.Id("v").Dot("unknown").Op("=").Index().Byte().Call(jen.Id("raw")),
			)
		}),
		jen.Op("*").Id("u").Op("=").Id("v"),
		jen.Return(jen.Nil()),
	)
	return nil
}
