package codecs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectWriter(t *testing.T) {
	w := NewObjectWriter()
	w.Field("zeta", 1)
	w.Field("alpha", []string{"a"})
	w.Field("quote\"d", map[string]int{"b": 2, "a": 1})

	out, err := w.Bytes()
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":["a"],"quote\"d":{"a":1,"b":2}}`, string(out))
}

func TestObjectWriter_Empty(t *testing.T) {
	out, err := NewObjectWriter().Bytes()
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}

type failingMarshaler struct{}

func (failingMarshaler) MarshalJSON() ([]byte, error) {
	return nil, errors.New("boom")
}

func TestObjectWriter_Error(t *testing.T) {
	w := NewObjectWriter()
	w.Field("ok", 1)
	w.Field("bad", failingMarshaler{})
	w.Field("after", 2)

	_, err := w.Bytes()
	require.Error(t, err)
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "bad", fe.Field)
}

func TestObjectReader(t *testing.T) {
	r, err := NewObjectReader([]byte(` {"name":"x","count":3,"nothing":null,"extra":{"deep":true}} `))
	require.NoError(t, err)

	var name string
	require.NoError(t, r.Required("name", &name))
	assert.Equal(t, "x", name)

	var count *int32
	require.NoError(t, r.Optional("count", &count))
	require.NotNil(t, count)
	assert.Equal(t, int32(3), *count)

	var missing *int32
	require.NoError(t, r.Optional("missing", &missing))
	assert.Nil(t, missing)
	require.NoError(t, r.Optional("nothing", &missing))
	assert.Nil(t, missing)

	err = r.Required("nothing", &name)
	var mfe *MissingFieldError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, "nothing", mfe.Field)

	err = r.Required("absent", &name)
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, "absent", mfe.Field)
	assert.Contains(t, err.Error(), `"absent"`)

	var wrong int
	err = r.Required("name", &wrong)
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "name", fe.Field)

	assert.True(t, r.Has("extra"))
	assert.False(t, r.Has("nothing"))
	raw, ok := r.Raw("extra")
	require.True(t, ok)
	assert.JSONEq(t, `{"deep":true}`, string(raw))
	assert.Equal(t, []string{"count", "extra", "name", "nothing"}, r.Keys())
}

func TestNewObjectReader_NotObject(t *testing.T) {
	for _, input := range []string{``, `null`, `[]`, `"s"`, `{"a":`} {
		_, err := NewObjectReader([]byte(input))
		assert.Error(t, err, "input %q", input)
	}
}

func TestBinaryCodec(t *testing.T) {
	data, err := Binary.Marshal([]byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, "raw", string(data))

	var out []byte
	require.NoError(t, Binary.Decode(strings.NewReader("bytes"), &out))
	assert.Equal(t, "bytes", string(out))

	var buf bytes.Buffer
	require.NoError(t, Binary.Encode(&buf, strings.NewReader("stream")))
	assert.Equal(t, "stream", buf.String())

	_, err = Binary.Marshal(42)
	assert.Error(t, err)
	assert.Equal(t, "application/octet-stream", Binary.ContentType())
}

func TestJSONCodec_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON.Encode(&buf, map[string]any{"b": 1, "a": []int{1}}))
	assert.Equal(t, "{\"a\":[1],\"b\":1}\n", buf.String())

	var decoded map[string]any
	require.NoError(t, JSON.Decode(&buf, &decoded))
	assert.Len(t, decoded, 2)
	assert.Equal(t, "application/json", JSON.ContentType())
}

func TestObjectWriter_RawField(t *testing.T) {
	w := NewObjectWriter()
	w.Field("type", "future")
	w.RawField("future", []byte(`{"a": [1, 2]}`))
	w.RawField("empty", nil)

	out, err := w.Bytes()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"future","future":{"a":[1,2]},"empty":null}`, string(out))

	bad := NewObjectWriter()
	bad.RawField("x", []byte(`{`))
	_, err = bad.Bytes()
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "x", fe.Field)
}

func TestEmptyUnionError(t *testing.T) {
	assert.Equal(t, "union Media has no variant set", (&EmptyUnionError{Union: "Media"}).Error())
}
