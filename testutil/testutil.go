// Package testutil provides testing helpers for generated conjure servers.
// Handlers can be called directly, without a Mux, using requests built
// with the fluent RequestBuilder and routes captured by a Router.
package testutil

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"

	"github.com/broady/conjure"
)

// RequestBuilder helps construct server requests with a fluent API.
type RequestBuilder struct {
	req *conjure.ServerRequest
}

// NewRequest creates a new request builder for a GET request.
func NewRequest() *RequestBuilder {
	return &RequestBuilder{req: &conjure.ServerRequest{
		Method:     "GET",
		PathParams: make(map[string]string),
		Query:      make(url.Values),
		Header:     make(http.Header),
	}}
}

// GET sets the HTTP method to GET.
func (b *RequestBuilder) GET() *RequestBuilder {
	b.req.Method = "GET"
	return b
}

// POST sets the HTTP method to POST.
func (b *RequestBuilder) POST() *RequestBuilder {
	b.req.Method = "POST"
	return b
}

// PUT sets the HTTP method to PUT.
func (b *RequestBuilder) PUT() *RequestBuilder {
	b.req.Method = "PUT"
	return b
}

// WithPathParam sets a raw path parameter.
func (b *RequestBuilder) WithPathParam(name, value string) *RequestBuilder {
	b.req.PathParams[name] = value
	return b
}

// WithJSON sets the request body as JSON.
func (b *RequestBuilder) WithJSON(v any) *RequestBuilder {
	data, _ := json.Marshal(v)
	b.req.Body = data
	return b
}

// WithBody sets the raw request body.
func (b *RequestBuilder) WithBody(body string) *RequestBuilder {
	b.req.Body = []byte(body)
	return b
}

// WithHeader adds a header to the request.
func (b *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	b.req.Header.Add(key, value)
	return b
}

// WithQuery adds a query parameter.
func (b *RequestBuilder) WithQuery(key, value string) *RequestBuilder {
	b.req.Query.Add(key, value)
	return b
}

// WithBearerToken sets the Authorization header.
func (b *RequestBuilder) WithBearerToken(token string) *RequestBuilder {
	b.req.Header.Set("Authorization", "Bearer "+token)
	return b
}

// WithCookie adds a cookie.
func (b *RequestBuilder) WithCookie(name, value string) *RequestBuilder {
	b.req.Header.Add("Cookie", (&http.Cookie{Name: name, Value: value}).String())
	return b
}

// Build returns the request.
func (b *RequestBuilder) Build() *conjure.ServerRequest {
	return b.req
}

// Router is a conjure.Router that records routes so that tests can call
// their handlers directly.
type Router struct {
	routes []conjure.Route
}

// Register implements conjure.Router.
func (r *Router) Register(route conjure.Route) error {
	for _, existing := range r.routes {
		if existing.ServiceName == route.ServiceName && existing.EndpointName == route.EndpointName {
			return errors.Newf("endpoint %s.%s registered twice", route.ServiceName, route.EndpointName)
		}
	}
	r.routes = append(r.routes, route)
	return nil
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []conjure.Route {
	return r.routes
}

// Route returns the route of endpoint, failing the test if there is none.
func (r *Router) Route(t *testing.T, endpoint string) conjure.Route {
	t.Helper()
	for _, route := range r.routes {
		if route.EndpointName == endpoint {
			return route
		}
	}
	t.Fatalf("no route for endpoint %s", endpoint)
	return conjure.Route{}
}

// AssertJSONResult encodes the handler result and compares it with the
// encoding of expected.
func AssertJSONResult(t *testing.T, result, expected any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("encode expected value: %v", err)
	}
	actualJSON, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("encode result: %v", err)
	}

	var expectedData, actualData any
	_ = json.Unmarshal(expectedJSON, &expectedData)
	_ = json.Unmarshal(actualJSON, &actualData)

	expectedStr, _ := json.MarshalIndent(expectedData, "", "  ")
	actualStr, _ := json.MarshalIndent(actualData, "", "  ")

	if string(expectedStr) != string(actualStr) {
		t.Errorf("result mismatch:\nExpected:\n%s\nActual:\n%s", expectedStr, actualStr)
	}
}

// AssertConjureError checks that err serializes as the conjure error name
// and returns its wire envelope.
func AssertConjureError(t *testing.T, err error, expectedName string) *conjure.SerializableError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %s, got nil", expectedName)
	}
	serr := conjure.ToSerializableError(err)
	if serr.ErrorName != expectedName {
		t.Errorf("expected error %s, got %s (%v)", expectedName, serr.ErrorName, err)
	}
	return serr
}
