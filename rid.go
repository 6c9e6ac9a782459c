package conjure

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ridServicePattern  = regexp.MustCompile(`^[a-z][a-z0-9\-]*$`)
	ridInstancePattern = regexp.MustCompile(`^([a-z0-9][a-z0-9\-]*)?$`)
	ridTypePattern     = regexp.MustCompile(`^[a-z][a-z0-9\-]*$`)
	ridLocatorPattern  = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)
)

// RID is a resource identifier of the form
// ri.<service>.<instance>.<type>.<locator>.
type RID struct {
	Service  string
	Instance string
	Type     string
	Locator  string
}

// ParseRID parses and validates a resource identifier.
func ParseRID(s string) (RID, error) {
	parts := strings.SplitN(s, ".", 5)
	if len(parts) != 5 || parts[0] != "ri" {
		return RID{}, errors.Newf("invalid rid %q: expected ri.<service>.<instance>.<type>.<locator>", s)
	}
	rid := RID{Service: parts[1], Instance: parts[2], Type: parts[3], Locator: parts[4]}
	if err := rid.validate(); err != nil {
		return RID{}, errors.Wrapf(err, "invalid rid %q", s)
	}
	return rid, nil
}

func (r RID) validate() error {
	switch {
	case !ridServicePattern.MatchString(r.Service):
		return errors.Newf("bad service %q", r.Service)
	case !ridInstancePattern.MatchString(r.Instance):
		return errors.Newf("bad instance %q", r.Instance)
	case !ridTypePattern.MatchString(r.Type):
		return errors.Newf("bad type %q", r.Type)
	case !ridLocatorPattern.MatchString(r.Locator):
		return errors.Newf("bad locator %q", r.Locator)
	}
	return nil
}

func (r RID) String() string {
	return "ri." + r.Service + "." + r.Instance + "." + r.Type + "." + r.Locator
}

func (r RID) MarshalText() ([]byte, error) {
	if err := r.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid rid")
	}
	return []byte(r.String()), nil
}

func (r *RID) UnmarshalText(data []byte) error {
	parsed, err := ParseRID(string(data))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
