package spec

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// ErrParse marks errors caused by a malformed IDL document.
var ErrParse = errors.New("conjure definition parse error")

// ErrorCode is the fixed set of Conjure error kinds.
type ErrorCode string

const (
	CodePermissionDenied      ErrorCode = "PERMISSION_DENIED"
	CodeInvalidArgument       ErrorCode = "INVALID_ARGUMENT"
	CodeNotFound              ErrorCode = "NOT_FOUND"
	CodeConflict              ErrorCode = "CONFLICT"
	CodeRequestEntityTooLarge ErrorCode = "REQUEST_ENTITY_TOO_LARGE"
	CodeFailedPrecondition    ErrorCode = "FAILED_PRECONDITION"
	CodeInternal              ErrorCode = "INTERNAL"
	CodeTimeout               ErrorCode = "TIMEOUT"
	CodeCustomClient          ErrorCode = "CUSTOM_CLIENT"
	CodeCustomServer          ErrorCode = "CUSTOM_SERVER"
)

var errorCodes = map[ErrorCode]bool{
	CodePermissionDenied:      true,
	CodeInvalidArgument:       true,
	CodeNotFound:              true,
	CodeConflict:              true,
	CodeRequestEntityTooLarge: true,
	CodeFailedPrecondition:    true,
	CodeInternal:              true,
	CodeTimeout:               true,
	CodeCustomClient:          true,
	CodeCustomServer:          true,
}

// Valid reports whether c is one of the known error codes.
func (c ErrorCode) Valid() bool {
	return errorCodes[c]
}

// ErrorDefinition declares a structured service error.
type ErrorDefinition struct {
	ErrorName TypeName

	// Namespace groups errors by product, e.g. "Catalog".
	Namespace string

	Code ErrorCode

	// SafeArgs are loggable without redaction; UnsafeArgs are not.
	// Both are serialized identically.
	SafeArgs   []FieldDefinition
	UnsafeArgs []FieldDefinition

	Docs Documentation
}

// QualifiedName returns "{namespace}:{Name}", the wire errorName.
func (e *ErrorDefinition) QualifiedName() string {
	return e.Namespace + ":" + e.ErrorName.Name
}

// AllArgs returns the safe args followed by the unsafe args.
func (e *ErrorDefinition) AllArgs() []FieldDefinition {
	args := make([]FieldDefinition, 0, len(e.SafeArgs)+len(e.UnsafeArgs))
	args = append(args, e.SafeArgs...)
	return append(args, e.UnsafeArgs...)
}

// SafeArgNames returns the wire names of the safe args, sorted lexicographically.
func (e *ErrorDefinition) SafeArgNames() []string {
	names := make([]string, len(e.SafeArgs))
	for i, arg := range e.SafeArgs {
		names[i] = arg.FieldName
	}
	sort.Strings(names)
	return names
}
