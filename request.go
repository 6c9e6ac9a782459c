package conjure

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"

	"github.com/broady/conjure/codecs"
	"github.com/broady/conjure/pathtemplate"
)

// Client executes requests built by generated service clients. Transport,
// retries and connection management are the implementation's concern.
//
// result is nil for endpoints without a response body; otherwise the
// response is decoded into it with req.ResponseCodec.
type Client interface {
	Do(ctx context.Context, req *Request, result any) error
}

// Request is a transport-neutral description of one endpoint call.
type Request struct {
	Method   string
	Template pathtemplate.Template

	// PathParams holds the PLAIN encoded value of every template parameter.
	PathParams map[string]string
	Query      url.Values
	Header     http.Header

	// Body is encoded with BodyCodec. Nil means no body.
	Body      any
	BodyCodec codecs.Codec

	ResponseCodec codecs.Codec
}

// NewRequest returns a JSON request for the endpoint at the given path template.
func NewRequest(method, path string) (*Request, error) {
	tmpl, err := pathtemplate.ParseCached(path)
	if err != nil {
		return nil, err
	}
	return &Request{
		Method:        method,
		Template:      tmpl,
		PathParams:    make(map[string]string),
		Query:         make(url.Values),
		Header:        make(http.Header),
		BodyCodec:     codecs.JSON,
		ResponseCodec: codecs.JSON,
	}, nil
}

// SetPathParam sets a template parameter to the PLAIN encoding of v.
func (r *Request) SetPathParam(name string, v any) error {
	if _, ok := r.Template.Parameter(name); !ok {
		return errors.Newf("path %s has no parameter %q", r.Template, name)
	}
	s, err := EncodePlain(v)
	if err != nil {
		return errors.Wrapf(err, "path parameter %s", name)
	}
	r.PathParams[name] = s
	return nil
}

// AddQuery appends the PLAIN encoding of v to the query parameter name.
func (r *Request) AddQuery(name string, v any) error {
	s, err := EncodePlain(v)
	if err != nil {
		return errors.Wrapf(err, "query parameter %s", name)
	}
	r.Query.Add(name, s)
	return nil
}

// SetHeader sets the header name to the PLAIN encoding of v.
func (r *Request) SetHeader(name string, v any) error {
	s, err := EncodePlain(v)
	if err != nil {
		return errors.Wrapf(err, "header %s", name)
	}
	r.Header.Set(name, s)
	return nil
}

// SetBearerToken authenticates the request with an Authorization header.
func (r *Request) SetBearerToken(token BearerToken) {
	r.Header.Set("Authorization", "Bearer "+string(token))
}

// SetCookieToken authenticates the request with the named cookie.
func (r *Request) SetCookieToken(cookie string, token BearerToken) {
	r.Header.Add("Cookie", (&http.Cookie{Name: cookie, Value: string(token)}).String())
}

// SetJSONBody sets a JSON request body.
func (r *Request) SetJSONBody(v any) {
	r.Body = v
	r.BodyCodec = codecs.JSON
}

// SetBinaryBody sets an application/octet-stream request body.
func (r *Request) SetBinaryBody(data []byte) {
	r.Body = data
	r.BodyCodec = codecs.Binary
}

// ExpectBinaryResponse decodes the response as raw bytes.
func (r *Request) ExpectBinaryResponse() {
	r.ResponseCodec = codecs.Binary
}

// Path expands the template with the path parameters.
func (r *Request) Path() (string, error) {
	return r.Template.Expand(r.PathParams)
}

// URL returns the request path plus its encoded query string.
func (r *Request) URL() (string, error) {
	path, err := r.Path()
	if err != nil {
		return "", err
	}
	if len(r.Query) == 0 {
		return path, nil
	}
	return path + "?" + r.Query.Encode(), nil
}
