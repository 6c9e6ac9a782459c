package golang

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"

	"github.com/broady/conjure/conjuregen/spec"
)

var (
	// ErrUnknownReference is returned for references to undefined types.
	ErrUnknownReference = errors.New("unknown type reference")

	// ErrUnsupported is returned for type shapes Go cannot express, such
	// as map keys without a comparable text form.
	ErrUnsupported = errors.New("unsupported type")
)

// Index is the arena of every definition in a document, keyed by name.
type Index struct {
	types    map[spec.TypeName]spec.TypeDefinition
	errors   map[spec.TypeName]*spec.ErrorDefinition
	services map[spec.TypeName]*spec.ServiceDefinition
}

// NewIndex indexes def.
func NewIndex(def *spec.ConjureDefinition) *Index {
	ix := &Index{
		types:    make(map[spec.TypeName]spec.TypeDefinition, len(def.Types)),
		errors:   make(map[spec.TypeName]*spec.ErrorDefinition, len(def.Errors)),
		services: make(map[spec.TypeName]*spec.ServiceDefinition, len(def.Services)),
	}
	for _, t := range def.Types {
		ix.types[t.TypeName()] = t
	}
	for _, e := range def.Errors {
		ix.errors[e.ErrorName] = e
	}
	for _, s := range def.Services {
		ix.services[s.ServiceName] = s
	}
	return ix
}

// Type returns the type definition named tn.
func (ix *Index) Type(tn spec.TypeName) (spec.TypeDefinition, bool) {
	def, ok := ix.types[tn]
	return def, ok
}

// Names returns the names of every type, error and service, sorted.
func (ix *Index) Names() []spec.TypeName {
	names := make([]spec.TypeName, 0, len(ix.types)+len(ix.errors)+len(ix.services))
	for tn := range ix.types {
		names = append(names, tn)
	}
	for tn := range ix.errors {
		names = append(names, tn)
	}
	for tn := range ix.services {
		names = append(names, tn)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Less(names[j]) })
	return names
}

func (ix *Index) typeNames() []spec.TypeName {
	names := make([]spec.TypeName, 0, len(ix.types))
	for tn := range ix.types {
		names = append(names, tn)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Less(names[j]) })
	return names
}

// EmptyKind says how the emptiness of a field value is tested.
type EmptyKind int

const (
	// EmptyNone values are always serialized.
	EmptyNone EmptyKind = iota
	// EmptyNil values are pointers; nil is empty.
	EmptyNil
	// EmptyLen values are slices or maps; length zero is empty.
	EmptyLen
	// EmptyAliasOptional values are optional alias wrappers; a nil Value is empty.
	EmptyAliasOptional
)

// Resolver maps conjure types to Go type expressions.
type Resolver struct {
	index    *Index
	pkgs     *packageMap
	names    *Context
	runtime  string
	external map[string]string

	// component is the strongly connected component of each type in the
	// graph of by-value containment.
	component map[spec.TypeName]int
	cyclic    map[int]bool

	warnings []spec.Warning
	warned   map[spec.TypeName]bool
}

func newResolver(index *Index, pkgs *packageMap, names *Context, cfg GeneratorConfig) (*Resolver, error) {
	r := &Resolver{
		index:    index,
		pkgs:     pkgs,
		names:    names,
		runtime:  cfg.runtimePath(),
		external: cfg.ExternalTypes,
		warned:   make(map[spec.TypeName]bool),
	}
	if err := r.computeCycles(); err != nil {
		return nil, err
	}
	return r, nil
}

// Warnings returns the warnings recorded so far.
func (r *Resolver) Warnings() []spec.Warning {
	return r.warnings
}

func (r *Resolver) rt(name string) *jen.Statement {
	return jen.Qual(r.runtime, name)
}

func (r *Resolver) codecs(name string) *jen.Statement {
	return jen.Qual(r.runtime+"/codecs", name)
}

// Resolve returns the Go type expression of t.
func (r *Resolver) Resolve(t spec.Type) (*jen.Statement, error) {
	switch t := t.(type) {
	case *spec.PrimitiveType:
		return r.primitive(t.Primitive)
	case *spec.OptionalType:
		inner, err := r.Resolve(t.ItemType)
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(inner), nil
	case *spec.ListType:
		inner, err := r.Resolve(t.ItemType)
		if err != nil {
			return nil, err
		}
		return jen.Index().Add(inner), nil
	case *spec.SetType:
		inner, err := r.Resolve(t.ItemType)
		if err != nil {
			return nil, err
		}
		return jen.Index().Add(inner), nil
	case *spec.MapType:
		key, err := r.mapKey(t.KeyType)
		if err != nil {
			return nil, err
		}
		value, err := r.Resolve(t.ValueType)
		if err != nil {
			return nil, err
		}
		return jen.Map(key).Add(value), nil
	case *spec.ReferenceType:
		return r.reference(t.Target)
	case *spec.ExternalType:
		return r.externalType(t)
	default:
		return nil, errors.Mark(errors.Newf("unsupported type %T", t), ErrUnsupported)
	}
}

func (r *Resolver) primitive(kind spec.PrimitiveKind) (*jen.Statement, error) {
	switch kind {
	case spec.PrimitiveString:
		return jen.String(), nil
	case spec.PrimitiveInteger:
		return jen.Int32(), nil
	case spec.PrimitiveBoolean:
		return jen.Bool(), nil
	case spec.PrimitiveAny:
		return jen.Id("any"), nil
	case spec.PrimitiveDouble:
		return r.rt("Double"), nil
	case spec.PrimitiveSafelong:
		return r.rt("SafeLong"), nil
	case spec.PrimitiveBinary:
		return r.rt("Binary"), nil
	case spec.PrimitiveUUID:
		return r.rt("UUID"), nil
	case spec.PrimitiveRID:
		return r.rt("RID"), nil
	case spec.PrimitiveBearertoken:
		return r.rt("BearerToken"), nil
	case spec.PrimitiveDatetime:
		return r.rt("DateTime"), nil
	default:
		return nil, errors.Mark(errors.Newf("unsupported primitive %q", kind), ErrUnsupported)
	}
}

func (r *Resolver) reference(tn spec.TypeName) (*jen.Statement, error) {
	if _, ok := r.index.Type(tn); !ok {
		return nil, errors.Mark(errors.Newf("unknown type reference %s", tn), ErrUnknownReference)
	}
	name, err := r.names.TypeName(tn)
	if err != nil {
		return nil, err
	}
	return jen.Qual(r.pkgs.forType(tn).ImportPath, name), nil
}

func (r *Resolver) externalType(t *spec.ExternalType) (*jen.Statement, error) {
	if goType, ok := r.external[t.ExternalReference.String()]; ok {
		i := strings.LastIndex(goType, ".")
		if i <= 0 || i == len(goType)-1 {
			return nil, errors.WithHint(
				errors.Newf("external type %s maps to malformed Go type %q", t.ExternalReference, goType),
				`external types are written as "import/path.Type"`)
		}
		return jen.Qual(goType[:i], goType[i+1:]), nil
	}
	if t.Fallback == nil {
		return nil, errors.Mark(errors.Newf("external type %s has no mapping and no fallback", t.ExternalReference), ErrUnsupported)
	}
	if !r.warned[t.ExternalReference] {
		r.warned[t.ExternalReference] = true
		r.warnings = append(r.warnings, spec.Warning{
			Code:     "external_fallback",
			Message:  "no Go type configured for external type; using fallback " + t.Fallback.String(),
			TypeName: t.ExternalReference,
		})
	}
	return r.Resolve(t.Fallback)
}

// mapKey resolves a map key type. Keys must be comparable and have a text
// form, so binary, any, optional, collections, objects and unions are
// rejected.
func (r *Resolver) mapKey(t spec.Type) (*jen.Statement, error) {
	if !r.validKey(t) {
		return nil, errors.Mark(errors.Newf("unsupported map key type %s", t), ErrUnsupported)
	}
	if p, ok := t.(*spec.PrimitiveType); ok && p.Primitive == spec.PrimitiveBoolean {
		return r.rt("Boolean"), nil
	}
	return r.Resolve(t)
}

func (r *Resolver) validKey(t spec.Type) bool {
	switch t := t.(type) {
	case *spec.PrimitiveType:
		return t.Primitive != spec.PrimitiveBinary && t.Primitive != spec.PrimitiveAny
	case *spec.ReferenceType:
		switch def := r.typeDef(t.Target).(type) {
		case *spec.EnumDefinition:
			return true
		case *spec.AliasDefinition:
			return r.validKey(def.Alias)
		}
		return false
	case *spec.ExternalType:
		_, mapped := r.external[t.ExternalReference.String()]
		return !mapped && t.Fallback != nil && r.validKey(t.Fallback)
	}
	return false
}

func (r *Resolver) typeDef(tn spec.TypeName) spec.TypeDefinition {
	def, _ := r.index.Type(tn)
	return def
}

// ResolveField is Resolve for a field of owner, boxing references that
// would otherwise make owner infinitely large.
func (r *Resolver) ResolveField(owner spec.TypeName, t spec.Type) (*jen.Statement, error) {
	s, err := r.Resolve(t)
	if err != nil {
		return nil, err
	}
	if r.Boxed(owner, t) {
		return jen.Op("*").Add(s), nil
	}
	return s, nil
}

// Boxed reports whether a field of owner with type t is held by pointer:
// t is a reference into the same by-value containment cycle as owner.
func (r *Resolver) Boxed(owner spec.TypeName, t spec.Type) bool {
	ref, ok := t.(*spec.ReferenceType)
	if !ok {
		return false
	}
	oc, ok := r.component[owner]
	if !ok {
		return false
	}
	tc, ok := r.component[ref.Target]
	return ok && oc == tc && r.cyclic[oc]
}

// IsRequired reports whether a value of type t must be present on the
// wire. Optionals and collections, directly or through aliases, are not.
func (r *Resolver) IsRequired(t spec.Type) bool {
	switch t := t.(type) {
	case *spec.OptionalType, *spec.ListType, *spec.SetType, *spec.MapType:
		return false
	case *spec.ReferenceType:
		if alias, ok := r.typeDef(t.Target).(*spec.AliasDefinition); ok {
			return r.IsRequired(alias.Alias)
		}
	case *spec.ExternalType:
		if _, mapped := r.external[t.ExternalReference.String()]; !mapped && t.Fallback != nil {
			return r.IsRequired(t.Fallback)
		}
	}
	return true
}

// EmptyCheck returns how emptiness of a t value is tested.
func (r *Resolver) EmptyCheck(t spec.Type) EmptyKind {
	switch t := t.(type) {
	case *spec.OptionalType:
		return EmptyNil
	case *spec.ListType, *spec.SetType, *spec.MapType:
		return EmptyLen
	case *spec.ReferenceType:
		if alias, ok := r.typeDef(t.Target).(*spec.AliasDefinition); ok {
			if k := r.EmptyCheck(alias.Alias); k != EmptyNil {
				return k
			}
			return EmptyAliasOptional
		}
	case *spec.ExternalType:
		if _, mapped := r.external[t.ExternalReference.String()]; !mapped && t.Fallback != nil {
			return r.EmptyCheck(t.Fallback)
		}
	}
	return EmptyNone
}

// IsEmpty renders the predicate that holds when expr, of type t, is empty.
// It returns nil for types that are never empty.
func (r *Resolver) IsEmpty(t spec.Type, expr jen.Code) *jen.Statement {
	switch r.EmptyCheck(t) {
	case EmptyNil:
		return jen.Add(expr).Op("==").Nil()
	case EmptyLen:
		return jen.Len(expr).Op("==").Lit(0)
	case EmptyAliasOptional:
		return jen.Add(expr).Dot("Value").Op("==").Nil()
	}
	return nil
}

// isPlain reports whether t has a PLAIN text form, as required for path,
// header and query parameters and for alias text marshaling.
func (r *Resolver) isPlain(t spec.Type) bool {
	switch t := t.(type) {
	case *spec.PrimitiveType:
		return t.Primitive != spec.PrimitiveAny
	case *spec.ReferenceType:
		switch def := r.typeDef(t.Target).(type) {
		case *spec.EnumDefinition:
			return true
		case *spec.AliasDefinition:
			return r.isPlain(def.Alias)
		}
	case *spec.ExternalType:
		if _, mapped := r.external[t.ExternalReference.String()]; !mapped && t.Fallback != nil {
			return r.isPlain(t.Fallback)
		}
	}
	return false
}

// isString reports whether the Go type of t has string as its underlying type.
func (r *Resolver) isString(t spec.Type) bool {
	switch t := t.(type) {
	case *spec.PrimitiveType:
		return t.Primitive == spec.PrimitiveString
	case *spec.ReferenceType:
		if alias, ok := r.typeDef(t.Target).(*spec.AliasDefinition); ok {
			return r.isString(alias.Alias)
		}
	}
	return false
}

// isBinary reports whether t is binary, directly or through aliases.
func (r *Resolver) isBinary(t spec.Type) bool {
	switch t := t.(type) {
	case *spec.PrimitiveType:
		return t.Primitive == spec.PrimitiveBinary
	case *spec.ReferenceType:
		if alias, ok := r.typeDef(t.Target).(*spec.AliasDefinition); ok {
			return r.isBinary(alias.Alias)
		}
	}
	return false
}

// byValueEdges lists the types def contains by value: required reference
// fields of objects and reference targets of aliases.
func byValueEdges(def spec.TypeDefinition) []spec.TypeName {
	var edges []spec.TypeName
	switch def := def.(type) {
	case *spec.ObjectDefinition:
		for _, f := range def.Fields {
			if ref, ok := f.Type.(*spec.ReferenceType); ok {
				edges = append(edges, ref.Target)
			}
		}
	case *spec.AliasDefinition:
		if ref, ok := def.Alias.(*spec.ReferenceType); ok {
			edges = append(edges, ref.Target)
		}
	}
	return edges
}

// computeCycles runs Tarjan's strongly connected components algorithm over
// the by-value containment graph. Cycles made only of aliases are fatal.
func (r *Resolver) computeCycles() error {
	nodes := r.index.typeNames()
	r.component = make(map[spec.TypeName]int, len(nodes))
	r.cyclic = make(map[int]bool)

	var (
		index   int
		next    int
		stack   []spec.TypeName
		onStack = make(map[spec.TypeName]bool)
		indices = make(map[spec.TypeName]int)
		lowlink = make(map[spec.TypeName]int)
		members = make(map[int][]spec.TypeName)
	)

	var strongConnect func(v spec.TypeName)
	strongConnect = func(v spec.TypeName) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range byValueEdges(r.index.types[v]) {
			if _, known := r.index.types[w]; !known {
				continue
			}
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			id := next
			next++
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				r.component[w] = id
				members[id] = append(members[id], w)
				if w == v {
					break
				}
			}
		}
	}

	for _, v := range nodes {
		if _, visited := indices[v]; !visited {
			strongConnect(v)
		}
	}

	for id, ms := range members {
		if len(ms) > 1 || selfReferencing(r.index.types[ms[0]]) {
			r.cyclic[id] = true
		}
	}

	for id := 0; id < next; id++ {
		ms := members[id]
		if !r.cyclic[id] {
			continue
		}
		aliasesOnly := true
		for _, m := range ms {
			if _, ok := r.index.types[m].(*spec.AliasDefinition); !ok {
				aliasesOnly = false
				break
			}
		}
		if aliasesOnly {
			sort.Slice(ms, func(i, j int) bool { return ms[i].Less(ms[j]) })
			parts := make([]string, len(ms))
			for i, m := range ms {
				parts[i] = m.String()
			}
			return errors.Mark(
				errors.Newf("alias cycle through %s", strings.Join(parts, ", ")),
				ErrUnsupported)
		}
	}
	return nil
}

func selfReferencing(def spec.TypeDefinition) bool {
	for _, w := range byValueEdges(def) {
		if w == def.TypeName() {
			return true
		}
	}
	return false
}
