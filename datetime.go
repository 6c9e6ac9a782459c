package conjure

import (
	"time"

	"github.com/cockroachdb/errors"
)

// DateTime is an instant with a zone offset, ISO 8601 / RFC 3339 on the wire.
type DateTime time.Time

// NewDateTime wraps t.
func NewDateTime(t time.Time) DateTime {
	return DateTime(t)
}

// Time returns the wrapped time.
func (d DateTime) Time() time.Time {
	return time.Time(d)
}

// Equal reports whether d and o are the same instant.
func (d DateTime) Equal(o DateTime) bool {
	return time.Time(d).Equal(time.Time(o))
}

func (d DateTime) String() string {
	return time.Time(d).Format(time.RFC3339Nano)
}

func (d DateTime) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DateTime) UnmarshalText(data []byte) error {
	t, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return errors.Wrapf(err, "invalid datetime %q", data)
	}
	*d = DateTime(t)
	return nil
}
