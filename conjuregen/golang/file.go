package golang

import "github.com/dave/jennifer/jen"

// goFile is a jennifer file that separates top-level declarations with a
// blank line. A doc comment stays attached to the declaration after it.
type goFile struct {
	*jen.File
	started bool
	inDoc   bool
}

// gap starts a new declaration unit. doc reports whether the unit begins
// with a comment.
func (f *goFile) gap(doc bool) {
	if f.started && !f.inDoc {
		f.File.Line()
	}
	f.started = true
	f.inDoc = doc
}

func (f *goFile) Comment(s string) *jen.Statement {
	f.gap(true)
	return f.File.Comment(s)
}

func (f *goFile) Commentf(format string, a ...any) *jen.Statement {
	f.gap(true)
	return f.File.Commentf(format, a...)
}

// Add only ever carries doc comments for the declaration that follows.
func (f *goFile) Add(code ...jen.Code) *jen.Statement {
	f.gap(true)
	return f.File.Add(code...)
}

func (f *goFile) Func() *jen.Statement {
	f.gap(false)
	return f.File.Func()
}

func (f *goFile) Type() *jen.Statement {
	f.gap(false)
	return f.File.Type()
}

func (f *goFile) Const() *jen.Statement {
	f.gap(false)
	return f.File.Const()
}

func (f *goFile) Var() *jen.Statement {
	f.gap(false)
	return f.File.Var()
}
