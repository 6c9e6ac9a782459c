package conjure

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/schema"

	"github.com/broady/conjure/codecs"
)

var schemaDecoder = schema.NewDecoder()

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// Handler serves one endpoint. The returned value is encoded with the
// route's response codec; nil means no response body.
type Handler func(ctx context.Context, req *ServerRequest) (any, error)

// Route binds a handler to an endpoint.
type Route struct {
	ServiceName  string
	EndpointName string
	Method       string
	Path         string
	Handler      Handler

	// ResponseCodec encodes the handler result. Nil means codecs.JSON.
	ResponseCodec codecs.Codec
}

// Router accepts the routes of generated servers.
type Router interface {
	Register(route Route) error
}

// ServerRequest is the decoded form of an incoming call as seen by a
// generated handler. Decode errors are marked with ErrInvalidArgument.
type ServerRequest struct {
	Method     string
	PathParams map[string]string
	Query      url.Values
	Header     http.Header
	Body       []byte
}

func invalidArgument(err error) error {
	return errors.Mark(err, ErrInvalidArgument)
}

// DecodePathParam decodes the PLAIN path parameter name into v.
func (r *ServerRequest) DecodePathParam(name string, v any) error {
	s, ok := r.PathParams[name]
	if !ok {
		return invalidArgument(errors.Newf("missing path parameter %q", name))
	}
	if err := DecodePlain(s, v); err != nil {
		return invalidArgument(errors.Wrapf(err, "path parameter %s", name))
	}
	return nil
}

// DecodeHeader decodes the PLAIN header name into v. A missing header is
// an error.
func (r *ServerRequest) DecodeHeader(name string, v any) error {
	found, err := r.DecodeOptionalHeader(name, v)
	if err != nil {
		return err
	}
	if !found {
		return invalidArgument(errors.Newf("missing header %q", name))
	}
	return nil
}

// DecodeOptionalHeader decodes the header name into v if it is present.
func (r *ServerRequest) DecodeOptionalHeader(name string, v any) (bool, error) {
	values := r.Header.Values(name)
	if len(values) == 0 {
		return false, nil
	}
	if err := DecodePlain(values[0], v); err != nil {
		return true, invalidArgument(errors.Wrapf(err, "header %s", name))
	}
	return true, nil
}

// DecodeQuery decodes the query string into dst, a pointer to a struct
// whose fields carry `schema` tags. Unknown keys are ignored.
func (r *ServerRequest) DecodeQuery(dst any) error {
	if err := schemaDecoder.Decode(dst, r.Query); err != nil {
		return invalidArgument(errors.Wrap(err, "query"))
	}
	return nil
}

// DecodeBody decodes a required JSON body into v.
func (r *ServerRequest) DecodeBody(v any) error {
	if len(strings.TrimSpace(string(r.Body))) == 0 {
		return invalidArgument(errors.New("missing request body"))
	}
	if err := codecs.JSON.Unmarshal(r.Body, v); err != nil {
		return invalidArgument(errors.Wrap(err, "request body"))
	}
	return nil
}

// DecodeOptionalBody decodes a JSON body into v if one was sent.
func (r *ServerRequest) DecodeOptionalBody(v any) error {
	if len(strings.TrimSpace(string(r.Body))) == 0 {
		return nil
	}
	return r.DecodeBody(v)
}

// BearerToken returns the token of the Authorization header.
func (r *ServerRequest) BearerToken() (BearerToken, error) {
	auth := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return "", errors.Mark(errors.New("missing bearer token"), ErrUnauthorized)
	}
	var token BearerToken
	if err := token.UnmarshalText([]byte(raw)); err != nil {
		return "", errors.Mark(err, ErrUnauthorized)
	}
	return token, nil
}

// CookieToken returns the token carried in the named cookie.
func (r *ServerRequest) CookieToken(name string) (BearerToken, error) {
	for _, line := range r.Header.Values("Cookie") {
		cookies, err := http.ParseCookie(line)
		if err != nil {
			continue
		}
		for _, c := range cookies {
			if c.Name != name {
				continue
			}
			var token BearerToken
			if err := token.UnmarshalText([]byte(c.Value)); err != nil {
				return "", errors.Mark(err, ErrUnauthorized)
			}
			return token, nil
		}
	}
	return "", errors.Mark(errors.Newf("missing %s cookie", name), ErrUnauthorized)
}
