package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/broady/conjure/conjuregen/spec"
)

// emitter renders definitions into jennifer files. One emitter serves one
// generation run.
type emitter struct {
	res   *Resolver
	names *Context
	pkgs  *packageMap
	cfg   GeneratorConfig
}

// doc renders documentation and a deprecation notice as line comments.
// It renders nothing unless comments are enabled.
func (e *emitter) doc(docs, deprecated spec.Documentation) *jen.Statement {
	if !e.cfg.EmitComments {
		return jen.Null()
	}
	lines := docs.Lines()
	if dep := deprecated.Lines(); len(dep) > 0 {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, "Deprecated: "+dep[0])
		lines = append(lines, dep[1:]...)
	}
	if len(lines) == 0 {
		return jen.Null()
	}
	s := jen.Comment(lines[0])
	for _, l := range lines[1:] {
		s.Line().Comment(l)
	}
	return s
}

// notEmpty renders the negation of Resolver.IsEmpty. It returns nil for
// types that are never empty.
func (e *emitter) notEmpty(t spec.Type, expr jen.Code) *jen.Statement {
	switch e.res.EmptyCheck(t) {
	case EmptyNil:
		return jen.Add(expr).Op("!=").Nil()
	case EmptyLen:
		return jen.Len(expr).Op("!=").Lit(0)
	case EmptyAliasOptional:
		return jen.Add(expr).Dot("Value").Op("!=").Nil()
	}
	return nil
}

// returnErr renders `if err != nil { return <results>, err }`.
func returnErr(results ...jen.Code) *jen.Statement {
	return jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(append(results, jen.Err())...))
}

// checkErr renders `if err := call; err != nil { return <results>, err }`.
func checkErr(call jen.Code, results ...jen.Code) *jen.Statement {
	return jen.If(jen.Err().Op(":=").Add(call), jen.Err().Op("!=").Nil()).
		Block(jen.Return(append(results, jen.Err())...))
}
