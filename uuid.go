package conjure

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// UUID is an RFC 4122 UUID in canonical lowercase form on the wire.
type UUID uuid.UUID

// NewUUID returns a random (version 4) UUID.
func NewUUID() UUID {
	return UUID(uuid.New())
}

// ParseUUID parses the canonical textual form of a UUID.
func ParseUUID(s string) (UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, errors.Wrapf(err, "invalid uuid %q", s)
	}
	return UUID(u), nil
}

func (u UUID) String() string {
	return uuid.UUID(u).String()
}

func (u UUID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *UUID) UnmarshalText(data []byte) error {
	parsed, err := ParseUUID(string(data))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
