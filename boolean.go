package conjure

import (
	"bytes"

	"github.com/cockroachdb/errors"
)

// Boolean is a bool usable as a JSON map key, where it is spelled
// "true" or "false".
type Boolean bool

func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (b Boolean) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Boolean) UnmarshalText(data []byte) error {
	switch string(data) {
	case "true":
		*b = true
	case "false":
		*b = false
	default:
		return errors.Newf("invalid boolean %q", data)
	}
	return nil
}

func (b Boolean) MarshalJSON() ([]byte, error) {
	return b.MarshalText()
}

func (b *Boolean) UnmarshalJSON(data []byte) error {
	return b.UnmarshalText(bytes.TrimSpace(data))
}
