package golang

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/broady/conjure/conjuregen/spec"
)

// errorCodeConst maps a conjure error code to its runtime constant name.
func errorCodeConst(code spec.ErrorCode) string {
	var b strings.Builder
	b.WriteString("Code")
	for _, w := range strings.Split(strings.ToLower(string(code)), "_") {
		if w == "" {
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]) + w[1:])
	}
	return b.String()
}

// emitError emits an error definition as an object over its safe and
// unsafe arguments, plus the conjure.Error methods and a decoder
// registered with the runtime.
func (e *emitter) emitError(f *goFile, def *spec.ErrorDefinition, goName string) error {
	fields, err := e.emitObject(f, def.ErrorName, goName, def.AllArgs(), def.Docs, errorMembers...)
	if err != nil {
		return err
	}
	recv := func() *jen.Statement { return jen.Id("o").Id(goName) }
	name := def.QualifiedName()

	f.Func().Params(recv()).Id("Error").Params().String().Block(
		jen.Return(jen.Lit(string(def.Code) + " " + name)),
	)

	f.Func().Params(recv()).Id("Code").Params().Add(e.res.rt("ErrorCode")).Block(
		jen.Return(e.res.rt(errorCodeConst(def.Code))),
	)

	f.Func().Params(recv()).Id("Name").Params().String().Block(
		jen.Return(jen.Lit(name)),
	)

	safe := make([]jen.Code, 0, len(def.SafeArgs))
	for _, n := range def.SafeArgNames() {
		safe = append(safe, jen.Lit(n))
	}
	f.Comment("SafeArgNames returns the wire names of the parameters that are safe to log.")
	f.Func().Params(recv()).Id("SafeArgNames").Params().Index().String().Block(
		jen.Return(jen.Index().String().Values(safe...)),
	)

	f.Func().Params(recv()).Id("Parameters").Params().Map(jen.String()).Id("any").BlockFunc(func(g *jen.Group) {
		g.Id("params").Op(":=").Make(jen.Map(jen.String()).Id("any"), jen.Lit(len(fields)))
		for _, fld := range fields {
			value := jen.Id("o").Dot(fld.field)
			if fld.optional || fld.boxed {
				value = jen.Op("*").Id("o").Dot(fld.field)
			}
			set := jen.Id("params").Index(jen.Lit(fld.def.FieldName)).Op("=").Add(value)
			if cond := e.notEmpty(fld.def.Type, jen.Id("o").Dot(fld.field)); cond != nil {
				g.If(cond).Block(set)
				continue
			}
			g.Add(set)
		}
		g.Return(jen.Id("params"))
	})

	f.Func().Id("init").Params().Block(
		e.res.rt("RegisterErrorType").Call(
			jen.Lit(name),
			jen.Func().Params(jen.Id("params").Index().Byte()).Params(e.res.rt("Error"), jen.Error()).Block(
				jen.Var().Id("e").Id(goName),
				checkErr(e.res.codecs("JSON").Dot("Unmarshal").Call(jen.Id("params"), jen.Op("&").Id("e")), jen.Nil()),
				jen.Return(jen.Id("e"), jen.Nil()),
			),
		),
	)
	return nil
}
