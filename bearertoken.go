package conjure

import (
	"regexp"

	"github.com/cockroachdb/errors"
)

var bearerTokenPattern = regexp.MustCompile(`^[A-Za-z0-9\-\._~\+/]+=*$`)

// BearerToken is an opaque credential. Its String form is redacted so that
// tokens do not leak through logs or %v formatting; the wire form is the
// raw token.
type BearerToken string

// String returns a redacted placeholder.
func (t BearerToken) String() string {
	return "{REDACTED}"
}

// Valid reports whether the token matches the bearer token grammar.
func (t BearerToken) Valid() bool {
	return bearerTokenPattern.MatchString(string(t))
}

func (t BearerToken) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.New("invalid bearer token")
	}
	return []byte(t), nil
}

func (t *BearerToken) UnmarshalText(data []byte) error {
	token := BearerToken(data)
	if !token.Valid() {
		return errors.New("invalid bearer token")
	}
	*t = token
	return nil
}
