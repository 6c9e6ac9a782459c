package golang

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/cockroachdb/errors"

	"github.com/broady/conjure/conjuregen/spec"
)

// ErrNameCollision is returned when no free identifier is left for a name.
var ErrNameCollision = errors.New("identifier collision")

// Go keywords.
var goKeywords = map[string]bool{
	"break":       true,
	"case":        true,
	"chan":        true,
	"const":       true,
	"continue":    true,
	"default":     true,
	"defer":       true,
	"else":        true,
	"fallthrough": true,
	"for":         true,
	"func":        true,
	"go":          true,
	"goto":        true,
	"if":          true,
	"import":      true,
	"interface":   true,
	"map":         true,
	"package":     true,
	"range":       true,
	"return":      true,
	"select":      true,
	"struct":      true,
	"switch":      true,
	"type":        true,
	"var":         true,
}

// Predeclared identifiers of the universe block.
var predeclared = map[string]bool{
	"any": true, "bool": true, "byte": true, "comparable": true,
	"complex64": true, "complex128": true, "error": true,
	"float32": true, "float64": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"rune": true, "string": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"true": true, "false": true, "iota": true, "nil": true,
	"append": true, "cap": true, "clear": true, "close": true, "complex": true,
	"copy": true, "delete": true, "imag": true, "len": true, "make": true,
	"max": true, "min": true, "new": true, "panic": true, "print": true,
	"println": true, "real": true, "recover": true,
}

// Package names imported by generated code.
var importNames = map[string]bool{
	"conjure":      true,
	"codecs":       true,
	"pathtemplate": true,
	"context":      true,
	"fmt":          true,
}

// Members every generated type may carry.
var generatedMembers = []string{
	"MarshalJSON",
	"UnmarshalJSON",
	"MarshalText",
	"UnmarshalText",
	"String",
	"Build",
}

// Members of generated error types.
var errorMembers = []string{
	"Error",
	"Code",
	"Name",
	"SafeArgNames",
	"Parameters",
}

// Local variables used in generated function bodies.
var reservedLocals = []string{
	"b", "o", "r", "w", "v", "err", "ctx", "c", "req", "result", "params", "typ",
	"impl", "router", "found", "data", "raw",
}

// Scope is a set of identifiers declared in one Go namespace.
type Scope struct {
	mu    sync.Mutex
	names map[string]bool
}

func newScope(seed ...string) *Scope {
	s := &Scope{names: make(map[string]bool, len(seed))}
	for _, name := range seed {
		s.names[name] = true
	}
	return s
}

// Declare registers name, or the first free variant of it: name_, then
// name_2 through name_9. Keywords and predeclared identifiers start with
// the trailing underscore.
func (s *Scope) Declare(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := name
	if goKeywords[base] || predeclared[base] {
		base += "_"
	}
	candidates := []string{base, base + "_"}
	for i := 2; i <= 9; i++ {
		candidates = append(candidates, base+"_"+strconv.Itoa(i))
	}
	for _, c := range candidates {
		if !s.names[c] {
			s.names[c] = true
			return c, nil
		}
	}
	return "", errors.Mark(errors.Newf("no free identifier for %q", name), ErrNameCollision)
}

// Has reports whether name is declared.
func (s *Scope) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names[name]
}

// Context tracks every identifier handed out during one generation run.
// It is safe for concurrent use.
type Context struct {
	mu        sync.Mutex
	packageOf func(spec.TypeName) string
	packages  map[string]*Scope
	types     map[spec.TypeName]string
	members   map[spec.TypeName]*Scope
}

// NewContext returns an empty Context. packageOf maps a type to the import
// path of the Go package it is emitted into.
func NewContext(packageOf func(spec.TypeName) string) *Context {
	c := &Context{packageOf: packageOf}
	c.Reset()
	return c
}

// Reset forgets every declared identifier.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packages = make(map[string]*Scope)
	c.types = make(map[spec.TypeName]string)
	c.members = make(map[spec.TypeName]*Scope)
}

func (c *Context) packageScope(pkg string) *Scope {
	s, ok := c.packages[pkg]
	if !ok {
		s = newScope("init", "main")
		c.packages[pkg] = s
	}
	return s
}

// RegisterTypes declares the Go names of all types in sorted order so that
// identifiers do not depend on emission order.
func (c *Context) RegisterTypes(names []spec.TypeName) error {
	sorted := append([]spec.TypeName(nil), names...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	for _, tn := range sorted {
		if _, err := c.TypeName(tn); err != nil {
			return err
		}
	}
	return nil
}

// TypeName returns the Go identifier of tn, declaring it on first use.
func (c *Context) TypeName(tn spec.TypeName) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name, ok := c.types[tn]; ok {
		return name, nil
	}
	name, err := c.packageScope(c.packageOf(tn)).Declare(FieldIdent(tn.Name))
	if err != nil {
		return "", errors.Wrapf(err, "type %s", tn)
	}
	c.types[tn] = name
	return name, nil
}

// Declare registers a top-level identifier other than a type name in the
// package pkg.
func (c *Context) Declare(pkg, name string) (string, error) {
	c.mu.Lock()
	scope := c.packageScope(pkg)
	c.mu.Unlock()
	return scope.Declare(name)
}

// Members returns the member scope of owner. The first call seeds it with
// the generated members plus seed.
func (c *Context) Members(owner spec.TypeName, seed ...string) *Scope {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.members[owner]
	if !ok {
		s = newScope(append(append([]string(nil), generatedMembers...), seed...)...)
		c.members[owner] = s
	}
	return s
}

// Locals returns a fresh scope for the parameters and variables of one
// generated function.
func (c *Context) Locals() *Scope {
	return newScope(reservedLocals...)
}

// words splits a conjure identifier into words on any character that is not
// a letter or digit.
func words(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// FieldIdent returns the exported Go identifier for a lowerCamel, kebab or
// snake case name.
func FieldIdent(name string) string {
	var b strings.Builder
	for _, w := range words(name) {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	ident := b.String()
	if ident == "" || !unicode.IsLetter([]rune(ident)[0]) {
		ident = "X" + ident
	}
	return ident
}

// LocalIdent returns the unexported Go identifier for name. Keywords,
// predeclared identifiers and the names of imported packages get a
// trailing underscore.
func LocalIdent(name string) string {
	ws := words(name)
	if len(ws) == 0 {
		return "x"
	}
	var b strings.Builder
	for i, w := range ws {
		r := []rune(w)
		switch {
		case i == 0 && strings.ToUpper(w) == w:
			r = []rune(strings.ToLower(w))
		case i == 0:
			r[0] = unicode.ToLower(r[0])
		default:
			r[0] = unicode.ToUpper(r[0])
		}
		b.WriteString(string(r))
	}
	ident := b.String()
	if !unicode.IsLetter([]rune(ident)[0]) {
		ident = "x" + ident
	}
	if goKeywords[ident] || predeclared[ident] || importNames[ident] {
		ident += "_"
	}
	return ident
}

// snakeCase converts a Go identifier to snake case for file names.
func snakeCase(ident string) string {
	var b strings.Builder
	runes := []rune(ident)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i > 0 && i+1 < len(runes) && unicode.IsUpper(runes[i-1]) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
