package conjure

import (
	"context"
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/conjure/codecs"
)

// shelfFull is a hand-written error in the shape emitted by the generator.
type shelfFull struct {
	shelfID  string
	capacity int32
}

func (e shelfFull) Error() string               { return "CONFLICT Test:ShelfFull" }
func (e shelfFull) Code() ErrorCode             { return CodeConflict }
func (e shelfFull) Name() string                { return "Test:ShelfFull" }
func (e shelfFull) SafeArgNames() []string      { return []string{"capacity", "shelfId"} }
func (e shelfFull) Parameters() map[string]any {
	return map[string]any{"shelfId": e.shelfID, "capacity": e.capacity}
}

func (e shelfFull) MarshalJSON() ([]byte, error) {
	w := codecs.NewObjectWriter()
	w.Field("shelfId", e.shelfID)
	w.Field("capacity", e.capacity)
	return w.Bytes()
}

func (e *shelfFull) UnmarshalJSON(data []byte) error {
	r, err := codecs.NewObjectReader(data)
	if err != nil {
		return err
	}
	var v shelfFull
	if err := r.Required("shelfId", &v.shelfID); err != nil {
		return err
	}
	if err := r.Required("capacity", &v.capacity); err != nil {
		return err
	}
	*e = v
	return nil
}

func init() {
	RegisterErrorType("Test:ShelfFull", func(params []byte) (Error, error) {
		var e shelfFull
		if err := codecs.JSON.Unmarshal(params, &e); err != nil {
			return nil, err
		}
		return e, nil
	})
}

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodePermissionDenied, http.StatusForbidden},
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeRequestEntityTooLarge, http.StatusRequestEntityTooLarge},
		{CodeFailedPrecondition, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
		{CodeTimeout, http.StatusInternalServerError},
		{CodeCustomClient, http.StatusBadRequest},
		{CodeCustomServer, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.HTTPStatus(), tt.code)
	}
}

func TestSerializableError_RoundTrip(t *testing.T) {
	serr, err := NewSerializableError(shelfFull{shelfID: "s-1", capacity: 3})
	require.NoError(t, err)
	assert.Equal(t, CodeConflict, serr.ErrorCode)
	assert.Equal(t, "Test:ShelfFull", serr.ErrorName)

	wire, err := json.Marshal(serr)
	require.NoError(t, err)

	var decoded SerializableError
	require.NoError(t, json.Unmarshal(wire, &decoded))
	assert.Equal(t, serr.ErrorInstanceID, decoded.ErrorInstanceID)
	assert.JSONEq(t, `{"shelfId":"s-1","capacity":3}`, string(decoded.Parameters))

	typed, err := decoded.Decode()
	require.NoError(t, err)
	assert.Equal(t, shelfFull{shelfID: "s-1", capacity: 3}, typed)
}

func TestSerializableError_DecodeUnknown(t *testing.T) {
	serr := &SerializableError{
		ErrorCode:  CodeCustomClient,
		ErrorName:  "Other:Thing",
		Parameters: json.RawMessage(`{"a":"b"}`),
	}
	typed, err := serr.Decode()
	require.NoError(t, err)

	var generic *GenericError
	require.True(t, errors.As(typed, &generic))
	assert.Equal(t, CodeCustomClient, generic.Code())
	assert.Equal(t, "Other:Thing", generic.Name())
	assert.Equal(t, map[string]any{"a": "b"}, generic.Parameters())
	assert.Equal(t, "CUSTOM_CLIENT Other:Thing: a=b", generic.Error())
}

func TestRegisterErrorType_Duplicate(t *testing.T) {
	assert.Panics(t, func() {
		RegisterErrorType("Test:ShelfFull", nil)
	})
}

func TestGenericError_WithParam(t *testing.T) {
	base := NewError(CodeNotFound, "Default:NotFound")
	withParam := base.WithParam("path", "/x")

	assert.Nil(t, base.Parameters(), "WithParam must not mutate the receiver")
	assert.Equal(t, map[string]any{"path": "/x"}, withParam.Parameters())

	out, err := json.Marshal(base)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}

type signup struct {
	Email string `validate:"required"`
	Age   int    `validate:"min=18"`
}

func TestToSerializableError(t *testing.T) {
	valErr := validator.New().Struct(signup{Age: 3})
	require.Error(t, valErr)

	tests := []struct {
		name     string
		input    error
		wantCode ErrorCode
		wantName string
	}{
		{"conjure error", shelfFull{shelfID: "s"}, CodeConflict, "Test:ShelfFull"},
		{"wrapped conjure error", errors.Wrap(shelfFull{shelfID: "s"}, "ctx"), CodeConflict, "Test:ShelfFull"},
		{"deadline", errors.Wrap(context.DeadlineExceeded, "slow"), CodeTimeout, "Default:Timeout"},
		{"validation", valErr, CodeInvalidArgument, "Default:InvalidArgument"},
		{"invalid argument", errors.Mark(errors.New("bad query"), ErrInvalidArgument), CodeInvalidArgument, "Default:InvalidArgument"},
		{"unauthorized", errors.Mark(errors.New("no token"), ErrUnauthorized), CodePermissionDenied, "Default:Unauthorized"},
		{"joined", errors.Join(context.DeadlineExceeded, errors.New("other")), CodeTimeout, "Default:Timeout"},
		{"plain", errors.New("secret detail"), CodeInternal, "Default:Internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serr := ToSerializableError(tt.input)
			require.NotNil(t, serr)
			assert.Equal(t, tt.wantCode, serr.ErrorCode)
			assert.Equal(t, tt.wantName, serr.ErrorName)
			assert.NotContains(t, string(serr.Parameters), "secret detail")
		})
	}

	assert.Nil(t, ToSerializableError(nil))

	serr := ToSerializableError(valErr)
	assert.JSONEq(t, `{"Email":"is required","Age":"must be at least 18"}`, string(serr.Parameters))
}

type shelfLimits struct {
	Name  string `validate:"required"`
	Slots int    `validate:"max=4"`
	Kind  string `validate:"oneof=wood metal"`
	Label string `validate:"alphanum"`
	Code  string `validate:"len=3"`
}

func TestValidationMessage(t *testing.T) {
	err := validator.New().Struct(shelfLimits{Slots: 9, Kind: "glass", Label: "a b", Code: "x"})
	var valErrs validator.ValidationErrors
	require.True(t, errors.As(err, &valErrs))

	got := make(map[string]string)
	for _, ve := range valErrs {
		got[ve.Field()] = ValidationMessage(ve)
	}
	assert.Equal(t, map[string]string{
		"Name":  "is required",
		"Slots": "must be at most 4",
		"Kind":  "must be one of: wood metal",
		"Label": "failed alphanum validation",
		"Code":  "failed len=3 validation",
	}, got)
}
