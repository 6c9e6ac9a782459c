package codecs

import "fmt"

// MissingFieldError reports a required object member that was absent or null.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// FieldError wraps a decode or encode failure of a single object member.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// UnknownEnumValueError is returned by strict enum parsers for values that
// are not declared by the enum.
type UnknownEnumValueError struct {
	Enum  string
	Value string
}

func (e *UnknownEnumValueError) Error() string {
	return fmt.Sprintf("unknown %s value %q", e.Enum, e.Value)
}

// EmptyUnionError is returned when a union with no variant set is encoded
// or visited.
type EmptyUnionError struct {
	Union string
}

func (e *EmptyUnionError) Error() string {
	return fmt.Sprintf("union %s has no variant set", e.Union)
}
