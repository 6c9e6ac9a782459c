package conjure

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"

	"github.com/broady/conjure/codecs"
)

// ErrorCode is the kind of a Conjure error.
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

// HTTPStatus maps an ErrorCode to an HTTP status code.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeInvalidArgument, CodeCustomClient:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeRequestEntityTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Error is implemented by every generated error type.
type Error interface {
	error

	// Code is the error kind.
	Code() ErrorCode

	// Name is the namespaced error name, "Namespace:Name".
	Name() string

	// SafeArgNames lists the wire names of the loggable parameters, sorted.
	SafeArgNames() []string

	// Parameters returns every parameter keyed by wire name.
	Parameters() map[string]any
}

// Wire decode errors returned by generated code.
type (
	MissingFieldError     = codecs.MissingFieldError
	FieldError            = codecs.FieldError
	UnknownEnumValueError = codecs.UnknownEnumValueError
	EmptyUnionError       = codecs.EmptyUnionError
)

var (
	// ErrInvalidArgument marks request decoding failures on the server side.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnauthorized marks missing or malformed credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// SerializableError is the wire envelope of a Conjure error.
type SerializableError struct {
	ErrorCode       ErrorCode       `json:"errorCode"`
	ErrorName       string          `json:"errorName"`
	ErrorInstanceID UUID            `json:"errorInstanceId"`
	Parameters      json.RawMessage `json:"parameters,omitempty"`
}

func (e *SerializableError) Error() string {
	return fmt.Sprintf("%s %s (instance %s)", e.ErrorCode, e.ErrorName, e.ErrorInstanceID)
}

// NewSerializableError wraps err in its wire envelope with a fresh instance id.
func NewSerializableError(err Error) (*SerializableError, error) {
	params, merr := codecs.JSON.Marshal(err)
	if merr != nil {
		return nil, errors.Wrapf(merr, "serialize %s parameters", err.Name())
	}
	return &SerializableError{
		ErrorCode:       err.Code(),
		ErrorName:       err.Name(),
		ErrorInstanceID: NewUUID(),
		Parameters:      params,
	}, nil
}

// ErrorDecoder rebuilds a typed error from its serialized parameters.
type ErrorDecoder func(parameters []byte) (Error, error)

var errorRegistry = struct {
	sync.RWMutex
	decoders map[string]ErrorDecoder
}{decoders: make(map[string]ErrorDecoder)}

// RegisterErrorType associates an error name with its decoder. Generated
// error types register themselves from init. Registering a name twice panics.
func RegisterErrorType(name string, decode ErrorDecoder) {
	errorRegistry.Lock()
	defer errorRegistry.Unlock()
	if _, dup := errorRegistry.decoders[name]; dup {
		panic(fmt.Sprintf("conjure: error type %s registered twice", name))
	}
	errorRegistry.decoders[name] = decode
}

// Decode rebuilds the typed error registered under e.ErrorName, or a
// GenericError if the name is unknown.
func (e *SerializableError) Decode() (Error, error) {
	errorRegistry.RLock()
	decode, ok := errorRegistry.decoders[e.ErrorName]
	errorRegistry.RUnlock()
	if ok {
		params := e.Parameters
		if len(params) == 0 {
			params = json.RawMessage("{}")
		}
		typed, err := decode(params)
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s", e.ErrorName)
		}
		return typed, nil
	}

	generic := NewError(e.ErrorCode, e.ErrorName)
	if len(e.Parameters) > 0 {
		if err := codecs.JSON.Unmarshal(e.Parameters, &generic.params); err != nil {
			return nil, errors.Wrapf(err, "decode %s parameters", e.ErrorName)
		}
	}
	return generic, nil
}

// GenericError is an error of a type that has no generated representation,
// such as the Default:* errors or errors from services this binary does not
// know about.
type GenericError struct {
	code   ErrorCode
	name   string
	params map[string]any
}

// NewError returns a GenericError with no parameters.
func NewError(code ErrorCode, name string) *GenericError {
	return &GenericError{code: code, name: name}
}

// WithParam returns a copy of e with the parameter added.
func (e *GenericError) WithParam(key string, value any) *GenericError {
	params := make(map[string]any, len(e.params)+1)
	for k, v := range e.params {
		params[k] = v
	}
	params[key] = value
	return &GenericError{code: e.code, name: e.name, params: params}
}

func (e *GenericError) Error() string {
	if len(e.params) == 0 {
		return fmt.Sprintf("%s %s", e.code, e.name)
	}
	keys := make([]string, 0, len(e.params))
	for k := range e.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, e.params[k])
	}
	return fmt.Sprintf("%s %s: %s", e.code, e.name, strings.Join(parts, ", "))
}

func (e *GenericError) Code() ErrorCode            { return e.code }
func (e *GenericError) Name() string               { return e.name }
func (e *GenericError) SafeArgNames() []string     { return nil }
func (e *GenericError) Parameters() map[string]any { return e.params }

func (e *GenericError) MarshalJSON() ([]byte, error) {
	if e.params == nil {
		return []byte("{}"), nil
	}
	return codecs.JSON.Marshal(e.params)
}

// ToSerializableError maps any error returned by a service implementation to
// its wire envelope. Conjure errors keep their type; request decoding and
// validation failures become Default:InvalidArgument; deadlines become
// Default:Timeout; everything else is masked as Default:Internal.
func ToSerializableError(err error) *SerializableError {
	if err == nil {
		return nil
	}

	var serr *SerializableError
	if errors.As(err, &serr) {
		return serr
	}

	var cerr Error
	if errors.As(err, &cerr) {
		if out, merr := NewSerializableError(cerr); merr == nil {
			return out
		}
		return mustSerialize(NewError(CodeInternal, "Default:Internal"))
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return mustSerialize(NewError(CodeTimeout, "Default:Timeout"))
	}

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		generic := NewError(CodeInvalidArgument, "Default:InvalidArgument")
		for _, ve := range valErrs {
			generic = generic.WithParam(ve.Field(), ValidationMessage(ve))
		}
		return mustSerialize(generic)
	}

	if errors.Is(err, ErrUnauthorized) {
		return mustSerialize(NewError(CodePermissionDenied, "Default:Unauthorized"))
	}

	if errors.Is(err, ErrInvalidArgument) {
		return mustSerialize(NewError(CodeInvalidArgument, "Default:InvalidArgument").WithParam("message", err.Error()))
	}

	// errors.Join: classify by the first error.
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := u.Unwrap(); len(errs) > 0 {
			return ToSerializableError(errs[0])
		}
	}

	return mustSerialize(NewError(CodeInternal, "Default:Internal"))
}

func mustSerialize(e *GenericError) *SerializableError {
	out, err := NewSerializableError(e)
	if err != nil {
		panic(err)
	}
	return out
}

// ValidationMessage renders a failed validation rule as a short phrase
// such as "is required" or "must be at least 18".
func ValidationMessage(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + ve.Param()
	case "max":
		return "must be at most " + ve.Param()
	case "oneof":
		return "must be one of: " + ve.Param()
	}
	if ve.Param() != "" {
		return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
	}
	return "failed " + ve.Tag() + " validation"
}
