package conjure

import (
	"bytes"
	"context"
	"net/url"
	"runtime/debug"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/conjure/codecs"
	"github.com/broady/conjure/pathtemplate"
)

type muxRoute struct {
	Route
	template pathtemplate.Template
}

// Mux is an in-process Router and Client. Do dispatches a Request to the
// matching registered route, passing the request body, the result and any
// error through their wire encodings, so generated clients and servers can
// be exercised together without a transport.
type Mux struct {
	mu           sync.RWMutex
	routes       []*muxRoute
	interceptors []Interceptor
	logger       *zap.Logger
}

var (
	_ Router = (*Mux)(nil)
	_ Client = (*Mux)(nil)
)

// NewMux returns an empty Mux that logs nothing.
func NewMux() *Mux {
	return &Mux{logger: zap.NewNop()}
}

// WithLogger sets the logger used for handler failures.
func (m *Mux) WithLogger(logger *zap.Logger) *Mux {
	if logger == nil {
		logger = zap.NewNop()
	}
	m.logger = logger
	return m
}

// WithInterceptor adds an interceptor. Interceptors run in the order added.
func (m *Mux) WithInterceptor(i Interceptor) *Mux {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interceptors = append(m.interceptors, i)
	return m
}

// Register adds a route. Two routes may not share a method and path.
func (m *Mux) Register(route Route) error {
	if route.Handler == nil {
		return errors.Newf("route %s.%s has no handler", route.ServiceName, route.EndpointName)
	}
	tmpl, err := pathtemplate.ParseCached(route.Path)
	if err != nil {
		return errors.Wrapf(err, "route %s.%s", route.ServiceName, route.EndpointName)
	}
	if route.ResponseCodec == nil {
		route.ResponseCodec = codecs.JSON
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.routes {
		if existing.Method == route.Method && existing.template.String() == tmpl.String() {
			return errors.Newf("route %s %s already registered by %s.%s",
				route.Method, tmpl, existing.ServiceName, existing.EndpointName)
		}
	}
	m.routes = append(m.routes, &muxRoute{Route: route, template: tmpl})
	return nil
}

// Routes returns the registered routes in registration order.
func (m *Mux) Routes() []Route {
	m.mu.RLock()
	defer m.mu.RUnlock()
	routes := make([]Route, len(m.routes))
	for i, r := range m.routes {
		routes[i] = r.Route
	}
	return routes
}

func (m *Mux) lookup(method, path string) (*muxRoute, map[string]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var (
		best       *muxRoute
		bestParams map[string]string
	)
	for _, r := range m.routes {
		if r.Method != method {
			continue
		}
		params, ok := r.template.Match(path)
		if !ok {
			continue
		}
		if best == nil || moreSpecific(r.template, best.template) {
			best, bestParams = r, params
		}
	}
	return best, bestParams, best != nil
}

// segmentRank orders the kinds of segment i of t from least to most
// specific: a trailing regex parameter, any other regex parameter, a plain
// parameter, a literal.
func segmentRank(t pathtemplate.Template, i int) int {
	switch s := t[i].(type) {
	case pathtemplate.Literal:
		return 3
	case pathtemplate.Parameter:
		switch {
		case !s.HasRegex:
			return 2
		case i < len(t)-1:
			return 1
		}
	}
	return 0
}

// moreSpecific reports whether a should win over b when both match a path.
// The first segment where they differ in kind decides. If one is a prefix
// of the other, the longer one only matched through an empty trailing
// parameter, so the shorter wins. Ties keep registration order.
func moreSpecific(a, b pathtemplate.Template) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		ra, rb := segmentRank(a, i), segmentRank(b, i)
		if ra != rb {
			return ra > rb
		}
	}
	return len(a) < len(b)
}

// Do implements Client.
func (m *Mux) Do(ctx context.Context, req *Request, result any) error {
	path, err := req.Path()
	if err != nil {
		return err
	}
	route, params, ok := m.lookup(req.Method, path)
	if !ok {
		return m.wireError(NewError(CodeNotFound, "Default:NotFound").WithParam("path", path))
	}

	sreq := &ServerRequest{
		Method:     req.Method,
		PathParams: params,
		Query:      url.Values{},
		Header:     req.Header.Clone(),
	}
	for k, v := range req.Query {
		sreq.Query[k] = append([]string(nil), v...)
	}
	if req.Body != nil {
		var body bytes.Buffer
		if err := req.BodyCodec.Encode(&body, req.Body); err != nil {
			return errors.Wrap(err, "encode request body")
		}
		sreq.Body = body.Bytes()
	}

	ctx = withEndpoint(ctx, EndpointInfo{
		Service:  route.ServiceName,
		Endpoint: route.EndpointName,
		Method:   route.Method,
		Path:     route.Path,
	})

	m.mu.RLock()
	handler := chainInterceptors(m.interceptors, route.Handler)
	m.mu.RUnlock()

	res, err := m.invoke(ctx, handler, sreq)
	if err != nil {
		m.logFailure(route, err)
		return m.wireError(err)
	}
	if result == nil || res == nil {
		return nil
	}
	data, err := route.ResponseCodec.Marshal(res)
	if err != nil {
		return errors.Wrapf(err, "encode %s.%s response", route.ServiceName, route.EndpointName)
	}
	if err := req.ResponseCodec.Unmarshal(data, result); err != nil {
		return errors.Wrapf(err, "decode %s.%s response", route.ServiceName, route.EndpointName)
	}
	return nil
}

func (m *Mux) invoke(ctx context.Context, h Handler, req *ServerRequest) (res any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			m.logger.Error("PANIC recovered",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()))
			err = errors.Newf("handler panic: %v", rec)
		}
	}()
	return h(ctx, req)
}

func (m *Mux) logFailure(route *muxRoute, err error) {
	fields := []zap.Field{
		zap.String("service", route.ServiceName),
		zap.String("endpoint", route.EndpointName),
		zap.Error(err),
	}
	var cerr Error
	if errors.As(err, &cerr) {
		m.logger.Info("endpoint returned conjure error", append(fields, zap.String("errorName", cerr.Name()))...)
		return
	}
	m.logger.Error("endpoint failed", fields...)
}

// wireError serializes err the way a server would and decodes it the way a
// client would.
func (m *Mux) wireError(err error) error {
	serr := ToSerializableError(err)
	data, merr := codecs.JSON.Marshal(serr)
	if merr != nil {
		return errors.Wrap(merr, "encode error")
	}
	var decoded SerializableError
	if uerr := codecs.JSON.Unmarshal(data, &decoded); uerr != nil {
		return errors.Wrap(uerr, "decode error")
	}
	typed, derr := decoded.Decode()
	if derr != nil {
		return errors.WithSecondaryError(&decoded, derr)
	}
	return typed
}
