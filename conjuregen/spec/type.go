package spec

// TypeKind identifies the variant of a Type.
type TypeKind int

const (
	KindPrimitive TypeKind = iota
	KindOptional
	KindList
	KindSet
	KindMap
	KindReference
	KindExternal
)

// String returns the IR spelling of the type kind.
func (k TypeKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindOptional:
		return "optional"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindMap:
		return "map"
	case KindReference:
		return "reference"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Type is a recursive type expression. Cyclic type graphs are expressed
// through ReferenceType only and are resolved by name lookup.
type Type interface {
	// Kind returns the variant for type switching.
	Kind() TypeKind

	// String renders the type in Conjure YAML notation, e.g. "list<optional<string>>".
	String() string

	sealed()
}

// PrimitiveKind is one of the Conjure primitive types.
type PrimitiveKind string

const (
	PrimitiveString      PrimitiveKind = "STRING"
	PrimitiveDatetime    PrimitiveKind = "DATETIME"
	PrimitiveInteger     PrimitiveKind = "INTEGER"
	PrimitiveDouble      PrimitiveKind = "DOUBLE"
	PrimitiveSafelong    PrimitiveKind = "SAFELONG"
	PrimitiveBinary      PrimitiveKind = "BINARY"
	PrimitiveAny         PrimitiveKind = "ANY"
	PrimitiveBoolean     PrimitiveKind = "BOOLEAN"
	PrimitiveUUID        PrimitiveKind = "UUID"
	PrimitiveRID         PrimitiveKind = "RID"
	PrimitiveBearertoken PrimitiveKind = "BEARERTOKEN"
)

var primitiveKinds = map[PrimitiveKind]bool{
	PrimitiveString:      true,
	PrimitiveDatetime:    true,
	PrimitiveInteger:     true,
	PrimitiveDouble:      true,
	PrimitiveSafelong:    true,
	PrimitiveBinary:      true,
	PrimitiveAny:         true,
	PrimitiveBoolean:     true,
	PrimitiveUUID:        true,
	PrimitiveRID:         true,
	PrimitiveBearertoken: true,
}

// Valid reports whether k is a known primitive.
func (k PrimitiveKind) Valid() bool {
	return primitiveKinds[k]
}

// PrimitiveType is a built-in primitive.
type PrimitiveType struct {
	Primitive PrimitiveKind
}

func (*PrimitiveType) Kind() TypeKind { return KindPrimitive }
func (*PrimitiveType) sealed()        {}

func (t *PrimitiveType) String() string {
	switch t.Primitive {
	case PrimitiveDatetime:
		return "datetime"
	case PrimitiveBearertoken:
		return "bearertoken"
	case PrimitiveUUID:
		return "uuid"
	case PrimitiveRID:
		return "rid"
	}
	b := []byte(t.Primitive)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// OptionalType is a value that may be absent.
type OptionalType struct {
	ItemType Type
}

func (*OptionalType) Kind() TypeKind   { return KindOptional }
func (*OptionalType) sealed()          {}
func (t *OptionalType) String() string { return "optional<" + t.ItemType.String() + ">" }

// ListType is an ordered sequence.
type ListType struct {
	ItemType Type
}

func (*ListType) Kind() TypeKind   { return KindList }
func (*ListType) sealed()          {}
func (t *ListType) String() string { return "list<" + t.ItemType.String() + ">" }

// SetType is a sequence of distinct values.
type SetType struct {
	ItemType Type
}

func (*SetType) Kind() TypeKind   { return KindSet }
func (*SetType) sealed()          {}
func (t *SetType) String() string { return "set<" + t.ItemType.String() + ">" }

// MapType is a key-value mapping.
type MapType struct {
	KeyType   Type
	ValueType Type
}

func (*MapType) Kind() TypeKind { return KindMap }
func (*MapType) sealed()        {}
func (t *MapType) String() string {
	return "map<" + t.KeyType.String() + ", " + t.ValueType.String() + ">"
}

// ReferenceType refers to a named definition, possibly in another package.
type ReferenceType struct {
	Target TypeName
}

func (*ReferenceType) Kind() TypeKind   { return KindReference }
func (*ReferenceType) sealed()          {}
func (t *ReferenceType) String() string { return t.Target.String() }

// ExternalType refers to a type defined outside of Conjure, with a
// fallback used when no mapping is configured.
type ExternalType struct {
	ExternalReference TypeName
	Fallback          Type
}

func (*ExternalType) Kind() TypeKind   { return KindExternal }
func (*ExternalType) sealed()          {}
func (t *ExternalType) String() string { return "external<" + t.ExternalReference.String() + ">" }

// Convenience constructors.

// Primitive returns a PrimitiveType for kind.
func Primitive(kind PrimitiveKind) *PrimitiveType { return &PrimitiveType{Primitive: kind} }

// String returns the STRING primitive.
func String() *PrimitiveType { return Primitive(PrimitiveString) }

// Integer returns the INTEGER primitive.
func Integer() *PrimitiveType { return Primitive(PrimitiveInteger) }

// Double returns the DOUBLE primitive.
func Double() *PrimitiveType { return Primitive(PrimitiveDouble) }

// Safelong returns the SAFELONG primitive.
func Safelong() *PrimitiveType { return Primitive(PrimitiveSafelong) }

// Boolean returns the BOOLEAN primitive.
func Boolean() *PrimitiveType { return Primitive(PrimitiveBoolean) }

// Binary returns the BINARY primitive.
func Binary() *PrimitiveType { return Primitive(PrimitiveBinary) }

// Optional returns an OptionalType wrapping item.
func Optional(item Type) *OptionalType { return &OptionalType{ItemType: item} }

// List returns a ListType of item.
func List(item Type) *ListType { return &ListType{ItemType: item} }

// Set returns a SetType of item.
func Set(item Type) *SetType { return &SetType{ItemType: item} }

// Map returns a MapType from key to value.
func Map(key, value Type) *MapType { return &MapType{KeyType: key, ValueType: value} }

// Ref returns a ReferenceType to the named definition.
func Ref(pkg, name string) *ReferenceType {
	return &ReferenceType{Target: TypeName{Name: name, Package: pkg}}
}
