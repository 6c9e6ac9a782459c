package conjure

import "context"

type contextKey struct {
	name string
}

var endpointKey = &contextKey{"endpoint"}

// EndpointInfo identifies the endpoint being served.
type EndpointInfo struct {
	Service  string
	Endpoint string
	Method   string
	Path     string
}

// EndpointFromContext returns the endpoint of the current call.
// It requires that the handler was called via a Mux.
func EndpointFromContext(ctx context.Context) (EndpointInfo, bool) {
	info, ok := ctx.Value(endpointKey).(EndpointInfo)
	return info, ok
}

func withEndpoint(ctx context.Context, info EndpointInfo) context.Context {
	return context.WithValue(ctx, endpointKey, info)
}

// Interceptor wraps endpoint execution. Interceptors can inspect or modify
// the request, short-circuit with an error, or post-process the result.
type Interceptor func(ctx context.Context, req *ServerRequest, next Handler) (any, error)

// chainInterceptors combines interceptors around h.
// The first interceptor in the slice is the outer-most one (runs first).
func chainInterceptors(interceptors []Interceptor, h Handler) Handler {
	for i := len(interceptors) - 1; i >= 0; i-- {
		current, next := interceptors[i], h
		h = func(ctx context.Context, req *ServerRequest) (any, error) {
			return current(ctx, req, next)
		}
	}
	return h
}
