package conjure

import (
	"bytes"
	"encoding/base64"

	"github.com/cockroachdb/errors"
)

// Binary is a byte sequence, base64 encoded in text formats.
type Binary []byte

func (b Binary) String() string {
	return base64.StdEncoding.EncodeToString(b)
}

func (b Binary) MarshalText() ([]byte, error) {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(b)))
	base64.StdEncoding.Encode(out, b)
	return out, nil
}

func (b *Binary) UnmarshalText(data []byte) error {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
	n, err := base64.StdEncoding.Decode(out, data)
	if err != nil {
		return errors.Wrap(err, "invalid base64 binary")
	}
	*b = out[:n]
	return nil
}

func (b Binary) MarshalJSON() ([]byte, error) {
	text, _ := b.MarshalText()
	out := make([]byte, 0, len(text)+2)
	out = append(out, '"')
	out = append(out, text...)
	return append(out, '"'), nil
}

func (b *Binary) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.Newf("invalid binary: expected base64 string, got %s", data)
	}
	return b.UnmarshalText(data[1 : len(data)-1])
}
