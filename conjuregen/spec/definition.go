package spec

// DefinitionKind identifies the category of a type definition.
type DefinitionKind int

const (
	DefinitionAlias DefinitionKind = iota
	DefinitionEnum
	DefinitionObject
	DefinitionUnion
)

// String returns the IR spelling of the definition kind.
func (k DefinitionKind) String() string {
	switch k {
	case DefinitionAlias:
		return "alias"
	case DefinitionEnum:
		return "enum"
	case DefinitionObject:
		return "object"
	case DefinitionUnion:
		return "union"
	default:
		return "unknown"
	}
}

// TypeDefinition is the base interface for all named type definitions.
// Definitions are created once during parsing and never mutated.
type TypeDefinition interface {
	// Kind returns the definition kind for type switching.
	Kind() DefinitionKind

	// TypeName returns the qualified name of the definition.
	TypeName() TypeName

	// Doc returns the definition's documentation.
	Doc() Documentation

	sealed()
}

// FieldDefinition is a single named field of an object, union or error.
type FieldDefinition struct {
	// FieldName is the wire name, as declared in the IDL.
	FieldName string

	// Type is the field's type expression.
	Type Type

	Docs       Documentation
	Deprecated Documentation
	Safety     LogSafety
}

// ObjectDefinition is a record with named fields.
type ObjectDefinition struct {
	Name   TypeName
	Fields []FieldDefinition
	Docs   Documentation
}

func (d *ObjectDefinition) Kind() DefinitionKind { return DefinitionObject }
func (d *ObjectDefinition) TypeName() TypeName   { return d.Name }
func (d *ObjectDefinition) Doc() Documentation   { return d.Docs }
func (*ObjectDefinition) sealed()                {}

// UnionDefinition is a tagged union; each member is one variant.
type UnionDefinition struct {
	Name  TypeName
	Union []FieldDefinition
	Docs  Documentation
}

func (d *UnionDefinition) Kind() DefinitionKind { return DefinitionUnion }
func (d *UnionDefinition) TypeName() TypeName   { return d.Name }
func (d *UnionDefinition) Doc() Documentation   { return d.Docs }
func (*UnionDefinition) sealed()                {}

// EnumValueDefinition is a single declared enum literal.
type EnumValueDefinition struct {
	Value      string
	Docs       Documentation
	Deprecated Documentation
}

// EnumDefinition is an open enumeration of string literals.
type EnumDefinition struct {
	Name   TypeName
	Values []EnumValueDefinition
	Docs   Documentation
}

func (d *EnumDefinition) Kind() DefinitionKind { return DefinitionEnum }
func (d *EnumDefinition) TypeName() TypeName   { return d.Name }
func (d *EnumDefinition) Doc() Documentation   { return d.Docs }
func (*EnumDefinition) sealed()                {}

// AliasDefinition is a named, transparent wrapper over another type.
type AliasDefinition struct {
	Name   TypeName
	Alias  Type
	Docs   Documentation
	Safety LogSafety
}

func (d *AliasDefinition) Kind() DefinitionKind { return DefinitionAlias }
func (d *AliasDefinition) TypeName() TypeName   { return d.Name }
func (d *AliasDefinition) Doc() Documentation   { return d.Docs }
func (*AliasDefinition) sealed()                {}
