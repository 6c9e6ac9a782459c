package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/broady/conjure/conjuregen/spec"
)

// emitAlias emits a defined type over the alias target. Aliases of optional
// and any become single-field wrapper structs, since Go allows no methods
// on named pointer or interface types.
func (e *emitter) emitAlias(f *goFile, def *spec.AliasDefinition, goName string) error {
	target, err := e.res.Resolve(def.Alias)
	if err != nil {
		return err
	}
	f.Add(e.doc(def.Docs, ""))

	if opt, ok := def.Alias.(*spec.OptionalType); ok {
		inner, err := e.res.Resolve(opt.ItemType)
		if err != nil {
			return err
		}
		e.emitWrapperAlias(f, goName, jen.Op("*").Add(inner))
		return nil
	}
	if p, ok := def.Alias.(*spec.PrimitiveType); ok && p.Primitive == spec.PrimitiveAny {
		e.emitWrapperAlias(f, goName, jen.Id("any"))
		return nil
	}

	f.Type().Id(goName).Add(target)
	recv := func() *jen.Statement { return jen.Id("a").Id(goName) }
	ptr := func() *jen.Statement { return jen.Id("a").Op("*").Id(goName) }
	asTarget := func() *jen.Statement { return jen.Add(target).Call(jen.Id("a")) }
	asTargetPtr := func() *jen.Statement { return jen.Parens(jen.Op("*").Add(target)).Call(jen.Id("a")) }

	if e.res.isPlain(def.Alias) {
		if e.res.isString(def.Alias) {
			f.Func().Params(recv()).Id("String").Params().String().Block(
				jen.Return(jen.String().Call(jen.Id("a"))),
			)
		} else {
			f.Func().Params(recv()).Id("String").Params().String().Block(
				jen.Return(jen.Qual("fmt", "Sprint").Call(asTarget())),
			)
		}

		f.Func().Params(recv()).Id("MarshalText").Params().Params(jen.Index().Byte(), jen.Error()).Block(
			jen.List(jen.Id("s"), jen.Err()).Op(":=").Add(e.res.rt("EncodePlain")).Call(asTarget()),
			returnErr(jen.Nil()),
			jen.Return(jen.Index().Byte().Call(jen.Id("s")), jen.Nil()),
		)

		f.Func().Params(ptr()).Id("UnmarshalText").Params(jen.Id("data").Index().Byte()).Error().Block(
			jen.Return(e.res.rt("DecodePlain").Call(jen.String().Call(jen.Id("data")), asTargetPtr())),
		)
	}

	f.Func().Params(recv()).Id("MarshalJSON").Params().Params(jen.Index().Byte(), jen.Error()).BlockFunc(func(g *jen.Group) {
		switch def.Alias.(type) {
		case *spec.ListType, *spec.SetType:
			g.If(jen.Id("a").Op("==").Nil()).Block(jen.Return(jen.Index().Byte().Call(jen.Lit("[]")), jen.Nil()))
		case *spec.MapType:
			g.If(jen.Id("a").Op("==").Nil()).Block(jen.Return(jen.Index().Byte().Call(jen.Lit("{}")), jen.Nil()))
		}
		g.Return(e.res.codecs("JSON").Dot("Marshal").Call(asTarget()))
	})

	f.Func().Params(ptr()).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().Block(
		jen.Return(e.res.codecs("JSON").Dot("Unmarshal").Call(jen.Id("data"), asTargetPtr())),
	)
	return nil
}

func (e *emitter) emitWrapperAlias(f *goFile, goName string, valueType *jen.Statement) {
	f.Type().Id(goName).Struct(jen.Id("Value").Add(valueType))

	f.Func().Params(jen.Id("a").Id(goName)).Id("MarshalJSON").Params().Params(jen.Index().Byte(), jen.Error()).Block(
		jen.Return(e.res.codecs("JSON").Dot("Marshal").Call(jen.Id("a").Dot("Value"))),
	)

	f.Func().Params(jen.Id("a").Op("*").Id(goName)).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().Block(
		jen.Var().Id("v").Add(valueType),
		checkErr(e.res.codecs("JSON").Dot("Unmarshal").Call(jen.Id("data"), jen.Op("&").Id("v"))),
		jen.Id("a").Dot("Value").Op("=").Id("v"),
		jen.Return(jen.Nil()),
	)
}
