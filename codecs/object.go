package codecs

import (
	"bytes"
	"sort"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
)

// ObjectWriter builds a JSON object one field at a time, preserving the
// order in which fields are written. The first encoding error is kept and
// reported by Bytes.
type ObjectWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

// NewObjectWriter returns an empty object writer.
func NewObjectWriter() *ObjectWriter {
	w := &ObjectWriter{}
	w.buf.WriteByte('{')
	return w
}

// Field appends "key": v to the object.
func (w *ObjectWriter) Field(key string, v any) {
	if w.err != nil {
		return
	}
	value, err := json.Marshal(v)
	if err != nil {
		w.err = &FieldError{Field: key, Err: err}
		return
	}
	k, err := json.Marshal(key)
	if err != nil {
		w.err = &FieldError{Field: key, Err: err}
		return
	}
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(value)
	w.n++
}

// RawField appends "key": raw, where raw is already encoded JSON. Empty raw
// is written as null.
func (w *ObjectWriter) RawField(key string, raw []byte) {
	if w.err != nil {
		return
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("null")
	} else if !json.Valid(raw) {
		w.err = &FieldError{Field: key, Err: errors.New("invalid raw JSON")}
		return
	}
	w.Field(key, json.RawMessage(raw))
}

// Bytes closes the object and returns its encoding.
func (w *ObjectWriter) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	out := make([]byte, 0, w.buf.Len()+1)
	out = append(out, w.buf.Bytes()...)
	return append(out, '}'), nil
}

// ObjectReader gives keyed access to the members of a JSON object.
// Unknown keys are ignored.
type ObjectReader struct {
	fields map[string]json.RawMessage
}

// NewObjectReader parses data, which must be a JSON object.
func NewObjectReader(data []byte) (*ObjectReader, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.Newf("expected JSON object, got %s", preview(trimmed))
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, errors.Wrap(err, "decode JSON object")
	}
	return &ObjectReader{fields: fields}, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// Required decodes the member key into v. A missing or null member is a
// MissingFieldError.
func (r *ObjectReader) Required(key string, v any) error {
	raw, ok := r.fields[key]
	if !ok || isNull(raw) {
		return &MissingFieldError{Field: key}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &FieldError{Field: key, Err: err}
	}
	return nil
}

// Optional decodes the member key into v if it is present and not null.
// Otherwise v is left untouched.
func (r *ObjectReader) Optional(key string, v any) error {
	raw, ok := r.fields[key]
	if !ok || isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &FieldError{Field: key, Err: err}
	}
	return nil
}

// Has reports whether key is present with a non-null value.
func (r *ObjectReader) Has(key string) bool {
	raw, ok := r.fields[key]
	return ok && !isNull(raw)
}

// Raw returns the undecoded member key.
func (r *ObjectReader) Raw(key string) (json.RawMessage, bool) {
	raw, ok := r.fields[key]
	return raw, ok
}

// Keys returns the member names in sorted order.
func (r *ObjectReader) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func preview(data []byte) string {
	const max = 32
	if len(data) == 0 {
		return "empty input"
	}
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
