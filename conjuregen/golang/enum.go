package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/broady/conjure/conjuregen/spec"
)

// emitEnum emits an open enum: a struct wrapping the raw wire string, so
// values unknown to this version of the definition round-trip unchanged.
func (e *emitter) emitEnum(f *goFile, def *spec.EnumDefinition, goName string) error {
	pkg := e.pkgs.forType(def.Name).ImportPath
	e.names.Members(def.Name, "IsUnknown", "Value", "Compare")

	valueType, err := e.names.Declare(pkg, goName+"_Value")
	if err != nil {
		return err
	}
	consts := make([]string, len(def.Values))
	for i, v := range def.Values {
		if consts[i], err = e.names.Declare(pkg, goName+"_"+v.Value); err != nil {
			return err
		}
	}
	unknown, err := e.names.Declare(pkg, goName+"_UNKNOWN")
	if err != nil {
		return err
	}
	valuesFunc, err := e.names.Declare(pkg, "Values_"+goName)
	if err != nil {
		return err
	}
	ctor, err := e.names.Declare(pkg, "New_"+goName)
	if err != nil {
		return err
	}
	parse, err := e.names.Declare(pkg, "Parse"+goName)
	if err != nil {
		return err
	}

	f.Commentf("%s is a value of %s.", valueType, goName)
	f.Type().Id(valueType).String()

	f.Const().DefsFunc(func(g *jen.Group) {
		for i, v := range def.Values {
			g.Add(e.doc(v.Docs, v.Deprecated))
			g.Id(consts[i]).Id(valueType).Op("=").Lit(v.Value)
		}
		g.Id(unknown).Id(valueType).Op("=").Lit("UNKNOWN")
	})

	f.Add(e.doc(def.Docs, ""))
	f.Type().Id(goName).Struct(jen.Id("val").Id(valueType))

	known := make([]jen.Code, len(consts))
	for i, c := range consts {
		known[i] = jen.Id(c)
	}

	f.Commentf("%s returns the declared values of %s in declaration order.", valuesFunc, goName)
	f.Func().Id(valuesFunc).Params().Index().Id(valueType).Block(
		jen.Return(jen.Index().Id(valueType).Values(known...)),
	)

	f.Func().Id(ctor).Params(jen.Id("value").Id(valueType)).Id(goName).Block(
		jen.Return(jen.Id(goName).Values(jen.Dict{jen.Id("val"): jen.Id("value")})),
	)

	f.Commentf("%s returns the %s named s. Values that are not declared are an error.", parse, goName)
	f.Func().Id(parse).Params(jen.Id("s").String()).Params(jen.Id(goName), jen.Error()).Block(
		jen.Id("e").Op(":=").Id(ctor).Call(jen.Id(valueType).Call(jen.Id("s"))),
		jen.If(jen.Id("e").Dot("IsUnknown").Call()).Block(
			jen.Return(jen.Id(goName).Values(), jen.Op("&").Add(e.res.rt("UnknownEnumValueError")).Values(jen.Dict{
				jen.Id("Enum"):  jen.Lit(goName),
				jen.Id("Value"): jen.Id("s"),
			})),
		),
		jen.Return(jen.Id("e"), jen.Nil()),
	)

	recv := func() *jen.Statement { return jen.Id("e").Id(goName) }

	f.Comment("IsUnknown reports whether the value is not declared by this version of the enum.")
	f.Func().Params(recv()).Id("IsUnknown").Params().Bool().BlockFunc(func(g *jen.Group) {
		if len(known) > 0 {
			g.Switch(jen.Id("e").Dot("val")).Block(
				jen.Case(known...).Block(jen.Return(jen.False())),
			)
		}
		g.Return(jen.True())
	})

	f.Func().Params(recv()).Id("Value").Params().Id(valueType).Block(
		jen.If(jen.Id("e").Dot("IsUnknown").Call()).Block(jen.Return(jen.Id(unknown))),
		jen.Return(jen.Id("e").Dot("val")),
	)

	f.Comment("String returns the wire value, including unknown values.")
	f.Func().Params(recv()).Id("String").Params().String().Block(
		jen.Return(jen.String().Call(jen.Id("e").Dot("val"))),
	)

	f.Func().Params(recv()).Id("Compare").Params(jen.Id("other").Id(goName)).Int().Block(
		jen.Return(jen.Qual("strings", "Compare").Call(
			jen.String().Call(jen.Id("e").Dot("val")),
			jen.String().Call(jen.Id("other").Dot("val")),
		)),
	)

	f.Func().Params(recv()).Id("MarshalText").Params().Params(jen.Index().Byte(), jen.Error()).Block(
		jen.Return(jen.Index().Byte().Call(jen.Id("e").Dot("val")), jen.Nil()),
	)

	f.Func().Params(jen.Id("e").Op("*").Id(goName)).Id("UnmarshalText").Params(jen.Id("data").Index().Byte()).Error().Block(
		jen.Op("*").Id("e").Op("=").Id(ctor).Call(jen.Id(valueType).Call(jen.Id("data"))),
		jen.Return(jen.Nil()),
	)

	f.Func().Params(recv()).Id("MarshalJSON").Params().Params(jen.Index().Byte(), jen.Error()).Block(
		jen.Return(e.res.codecs("JSON").Dot("Marshal").Call(jen.String().Call(jen.Id("e").Dot("val")))),
	)

	f.Func().Params(jen.Id("e").Op("*").Id(goName)).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().Block(
		jen.Var().Id("s").String(),
		checkErr(e.res.codecs("JSON").Dot("Unmarshal").Call(jen.Id("data"), jen.Op("&").Id("s"))),
		jen.Return(jen.Id("e").Dot("UnmarshalText").Call(jen.Index().Byte().Call(jen.Id("s")))),
	)
	return nil
}
