// Package codecs holds the wire encoders used by generated Conjure code.
//
// Generated MarshalJSON and UnmarshalJSON methods never call a JSON library
// directly; they go through ObjectWriter, ObjectReader and the JSON codec
// so that every generated type shares one set of wire rules.
package codecs

import (
	"io"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
)

// Codec encodes and decodes values of one content type.
type Codec interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Encode(w io.Writer, v any) error
	Decode(r io.Reader, v any) error
}

// JSON is the Conjure JSON codec. Map keys are written in sorted order.
var JSON Codec = jsonCodec{}

// Binary is the codec for application/octet-stream bodies. It only
// accepts []byte, *[]byte, io.Reader and io.Writer values.
var Binary Codec = binaryCodec{}

type jsonCodec struct{}

func (jsonCodec) ContentType() string { return "application/json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Encode(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func (jsonCodec) Decode(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}

type binaryCodec struct{}

func (binaryCodec) ContentType() string { return "application/octet-stream" }

func (binaryCodec) Marshal(v any) ([]byte, error) {
	switch v := v.(type) {
	case []byte:
		return v, nil
	case *[]byte:
		return *v, nil
	case io.Reader:
		return io.ReadAll(v)
	}
	return nil, errors.Newf("binary codec cannot marshal %T", v)
}

func (binaryCodec) Unmarshal(data []byte, v any) error {
	switch v := v.(type) {
	case *[]byte:
		*v = append((*v)[:0], data...)
		return nil
	case io.Writer:
		_, err := v.Write(data)
		return err
	}
	return errors.Newf("binary codec cannot unmarshal into %T", v)
}

func (c binaryCodec) Encode(w io.Writer, v any) error {
	if r, ok := v.(io.Reader); ok {
		_, err := io.Copy(w, r)
		return err
	}
	data, err := c.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (c binaryCodec) Decode(r io.Reader, v any) error {
	if w, ok := v.(io.Writer); ok {
		_, err := io.Copy(w, r)
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return c.Unmarshal(data, v)
}
