// Package pathtemplate parses Conjure HTTP path templates such as
// "/things/{thingId}/{rest:.*}" into literal and parameter segments.
//
// The package is shared by the code generator, which validates endpoint
// paths, and by generated code, which expands templates into request paths
// and matches incoming requests against them.
package pathtemplate

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrInvalidPathComponent marks every template parse failure.
var ErrInvalidPathComponent = errors.New("invalid path component")

// Segment is one "/"-separated element of a template: either a Literal or
// a Parameter.
type Segment interface {
	// String renders the segment as it appears in a template.
	String() string
	segment()
}

// Literal is a fixed path element.
type Literal string

func (l Literal) String() string { return string(l) }
func (Literal) segment()         {}

// Parameter is a "{name}" or "{name:regex}" path element.
type Parameter struct {
	Name string

	// Regex constrains the matched value. Only meaningful if HasRegex.
	Regex    string
	HasRegex bool
}

func (p Parameter) String() string {
	if p.HasRegex {
		return "{" + p.Name + ":" + p.Regex + "}"
	}
	return "{" + p.Name + "}"
}
func (Parameter) segment() {}

// Template is the ordered segment sequence of a parsed path template.
// A Template is immutable and may be iterated any number of times.
type Template []Segment

func invalid(segment, reason string) error {
	return errors.Mark(
		errors.Newf("invalid path component %q: %s", segment, reason),
		ErrInvalidPathComponent,
	)
}

// Parse splits template on "/" and classifies every segment. The template
// must be empty or start with "/"; "" and "/" both yield an empty Template.
func Parse(template string) (Template, error) {
	if template == "" || template == "/" {
		return Template{}, nil
	}
	if !strings.HasPrefix(template, "/") {
		return nil, invalid(template, "template must start with /")
	}

	parts := strings.Split(template[1:], "/")
	segments := make(Template, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			// A single trailing slash is tolerated; anything else is an empty segment.
			if i == len(parts)-1 && i > 0 {
				break
			}
			return nil, invalid(template, "empty segment")
		}
		seg, err := parseSegment(part)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func parseSegment(part string) (Segment, error) {
	if !strings.ContainsAny(part, "{}") {
		return Literal(part), nil
	}
	if !balanced(part) {
		return nil, invalid(part, "unbalanced braces")
	}
	if !strings.HasPrefix(part, "{") || !strings.HasSuffix(part, "}") {
		return nil, invalid(part, "parameter must be the whole segment")
	}

	inner := part[1 : len(part)-1]
	name, regex, hasRegex := strings.Cut(inner, ":")
	if strings.ContainsAny(name, "{}") {
		return nil, invalid(part, "nested braces")
	}
	if name == "" {
		return nil, invalid(part, "empty parameter name")
	}
	if hasRegex {
		if err := checkBraces(regex); err != nil {
			return nil, invalid(part, err.Error())
		}
		if _, err := regexp.Compile(regex); err != nil {
			return nil, invalid(part, "bad regex")
		}
	}
	return Parameter{Name: name, Regex: regex, HasRegex: hasRegex}, nil
}

// balanced reports whether every brace in s is closed in order.
func balanced(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// checkBraces allows regex quantifiers like {2,3} but rejects unbalanced or
// nested braces inside a parameter's regex.
func checkBraces(s string) error {
	depth := 0
	for _, r := range s {
		switch r {
		case '{':
			depth++
			if depth > 1 {
				return errors.New("nested braces")
			}
		case '}':
			depth--
			if depth < 0 {
				return errors.New("unbalanced braces")
			}
		}
	}
	if depth != 0 {
		return errors.New("unbalanced braces")
	}
	return nil
}

// Params returns the parameter names in declaration order.
func (t Template) Params() []string {
	var names []string
	for _, seg := range t {
		if p, ok := seg.(Parameter); ok {
			names = append(names, p.Name)
		}
	}
	return names
}

// Parameter returns the parameter segment with the given name.
func (t Template) Parameter(name string) (Parameter, bool) {
	for _, seg := range t {
		if p, ok := seg.(Parameter); ok && p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// String renders the canonical template. Parse(t.String()) yields t.
func (t Template) String() string {
	if len(t) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, seg := range t {
		b.WriteByte('/')
		b.WriteString(seg.String())
	}
	return b.String()
}

// Expand substitutes values into the template, path-escaping each value.
// The value of a trailing regex parameter may span several segments; each
// of its segments is escaped on its own.
func (t Template) Expand(values map[string]string) (string, error) {
	if len(t) == 0 {
		return "/", nil
	}
	var b strings.Builder
	for i, seg := range t {
		b.WriteByte('/')
		switch s := seg.(type) {
		case Literal:
			b.WriteString(string(s))
		case Parameter:
			v, ok := values[s.Name]
			if !ok {
				return "", errors.Newf("missing value for path parameter %q", s.Name)
			}
			if !t.isRest(i) {
				b.WriteString(url.PathEscape(v))
				continue
			}
			for j, part := range strings.Split(v, "/") {
				if j > 0 {
					b.WriteByte('/')
				}
				b.WriteString(url.PathEscape(part))
			}
		}
	}
	return b.String(), nil
}

// isRest reports whether segment i is a trailing regex parameter, which
// may match the remainder of a path.
func (t Template) isRest(i int) bool {
	p, ok := t[i].(Parameter)
	return ok && p.HasRegex && i == len(t)-1
}

// Match matches a concrete request path against the template and returns
// the unescaped parameter values. Parameters with a regex must match it in
// full. A trailing regex parameter is matched against the rest of the path,
// so "{path:.*}" accepts "a/b/c" and, at the end of the path, "".
func (t Template) Match(path string) (map[string]string, bool) {
	path = strings.TrimSuffix(path, "/")
	if path != "" && !strings.HasPrefix(path, "/") {
		return nil, false
	}
	var parts []string
	if path != "" {
		parts = strings.Split(path[1:], "/")
	}

	rest := len(t) > 0 && t.isRest(len(t)-1)
	switch {
	case len(parts) == len(t):
	case rest && len(parts) > len(t):
		last := len(t) - 1
		parts = append(parts[:last:last], strings.Join(parts[last:], "/"))
	case rest && len(parts) == len(t)-1:
		parts = append(parts, "")
	default:
		return nil, false
	}

	values := make(map[string]string)
	for i, seg := range t {
		switch s := seg.(type) {
		case Literal:
			if parts[i] != string(s) {
				return nil, false
			}
		case Parameter:
			v, err := unescape(parts[i])
			if err != nil {
				return nil, false
			}
			if s.HasRegex {
				re, err := compile(s.Regex)
				if err != nil || !re.MatchString(v) {
					return nil, false
				}
			} else if v == "" {
				return nil, false
			}
			values[s.Name] = v
		}
	}
	return values, true
}

// unescape path-unescapes every "/"-separated part of s.
func unescape(s string) (string, error) {
	parts := strings.Split(s, "/")
	for i, p := range parts {
		v, err := url.PathUnescape(p)
		if err != nil {
			return "", err
		}
		parts[i] = v
	}
	return strings.Join(parts, "/"), nil
}

var regexCache, _ = lru.New[string, *regexp.Regexp](cacheSize)

func compile(regex string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Get(regex); ok {
		return re, nil
	}
	re, err := regexp.Compile("^(?:" + regex + ")$")
	if err != nil {
		return nil, err
	}
	regexCache.Add(regex, re)
	return re, nil
}

const cacheSize = 512

var cache, _ = lru.New[string, Template](cacheSize)

// ParseCached is Parse memoised in a bounded LRU cache. Generated clients
// call it on every request.
func ParseCached(template string) (Template, error) {
	if t, ok := cache.Get(template); ok {
		return t, nil
	}
	t, err := Parse(template)
	if err != nil {
		return nil, err
	}
	cache.Add(template, t)
	return t, nil
}
