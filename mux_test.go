package conjure

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/broady/conjure/codecs"
)

type shelfQuery struct {
	Limit *int32   `schema:"limit"`
	Tags  []string `schema:"tag"`
}

func newShelfMux(t *testing.T) (*Mux, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	mux := NewMux().WithLogger(zap.New(core))

	require.NoError(t, mux.Register(Route{
		ServiceName:  "ShelfService",
		EndpointName: "getShelf",
		Method:       "GET",
		Path:         "/shelves/{shelfId}",
		Handler: func(ctx context.Context, req *ServerRequest) (any, error) {
			token, err := req.BearerToken()
			if err != nil {
				return nil, err
			}
			var shelfID string
			if err := req.DecodePathParam("shelfId", &shelfID); err != nil {
				return nil, err
			}
			var q shelfQuery
			if err := req.DecodeQuery(&q); err != nil {
				return nil, err
			}
			var trace string
			if _, err := req.DecodeOptionalHeader("X-Trace", &trace); err != nil {
				return nil, err
			}
			if shelfID == "full" {
				return nil, shelfFull{shelfID: shelfID, capacity: 1}
			}
			limit := int32(-1)
			if q.Limit != nil {
				limit = *q.Limit
			}
			info, _ := EndpointFromContext(ctx)
			return map[string]any{
				"id":       shelfID,
				"limit":    limit,
				"tags":     q.Tags,
				"trace":    trace,
				"endpoint": info.Endpoint,
				"token":    string(token),
			}, nil
		},
	}))

	require.NoError(t, mux.Register(Route{
		ServiceName:  "ShelfService",
		EndpointName: "putLabel",
		Method:       "PUT",
		Path:         "/shelves/{shelfId}/label",
		Handler: func(ctx context.Context, req *ServerRequest) (any, error) {
			if _, err := req.CookieToken("SESSION"); err != nil {
				return nil, err
			}
			var label string
			if err := req.DecodeBody(&label); err != nil {
				return nil, err
			}
			return nil, nil
		},
	}))

	require.NoError(t, mux.Register(Route{
		ServiceName:   "ShelfService",
		EndpointName:  "echoBytes",
		Method:        "POST",
		Path:          "/echo",
		ResponseCodec: codecs.Binary,
		Handler: func(ctx context.Context, req *ServerRequest) (any, error) {
			return append([]byte("echo:"), req.Body...), nil
		},
	}))

	require.NoError(t, mux.Register(Route{
		ServiceName:  "ShelfService",
		EndpointName: "explode",
		Method:       "POST",
		Path:         "/explode",
		Handler: func(ctx context.Context, req *ServerRequest) (any, error) {
			panic("boom")
		},
	}))
	return mux, logs
}

func TestMux_Do(t *testing.T) {
	mux, _ := newShelfMux(t)

	req, err := NewRequest("GET", "/shelves/{shelfId}")
	require.NoError(t, err)
	require.NoError(t, req.SetPathParam("shelfId", "a b"))
	require.NoError(t, req.AddQuery("limit", int32(5)))
	require.NoError(t, req.AddQuery("tag", "x"))
	require.NoError(t, req.AddQuery("tag", "y"))
	require.NoError(t, req.AddQuery("ignored", true))
	require.NoError(t, req.SetHeader("X-Trace", "t-1"))
	req.SetBearerToken("secret-token")

	url, err := req.URL()
	require.NoError(t, err)
	assert.Equal(t, "/shelves/a%20b?ignored=true&limit=5&tag=x&tag=y", url)

	var result map[string]any
	require.NoError(t, mux.Do(context.Background(), req, &result))
	assert.Equal(t, "a b", result["id"])
	assert.Equal(t, float64(5), result["limit"])
	assert.Equal(t, []any{"x", "y"}, result["tags"])
	assert.Equal(t, "t-1", result["trace"])
	assert.Equal(t, "getShelf", result["endpoint"])
	assert.Equal(t, "secret-token", result["token"])
}

func TestMux_TypedError(t *testing.T) {
	mux, logs := newShelfMux(t)

	req, err := NewRequest("GET", "/shelves/{shelfId}")
	require.NoError(t, err)
	require.NoError(t, req.SetPathParam("shelfId", "full"))
	req.SetBearerToken("t")

	err = mux.Do(context.Background(), req, &map[string]any{})
	var typed shelfFull
	require.True(t, errors.As(err, &typed), "got %v", err)
	assert.Equal(t, shelfFull{shelfID: "full", capacity: 1}, typed)
	assert.Equal(t, 1, logs.FilterMessage("endpoint returned conjure error").Len())
}

func TestMux_Errors(t *testing.T) {
	mux, logs := newShelfMux(t)
	ctx := context.Background()

	code := func(err error) ErrorCode {
		var cerr Error
		require.True(t, errors.As(err, &cerr), "got %v", err)
		return cerr.Code()
	}

	missingAuth, err := NewRequest("GET", "/shelves/{shelfId}")
	require.NoError(t, err)
	require.NoError(t, missingAuth.SetPathParam("shelfId", "s"))
	assert.Equal(t, CodePermissionDenied, code(mux.Do(ctx, missingAuth, nil)))

	badQuery, err := NewRequest("GET", "/shelves/{shelfId}")
	require.NoError(t, err)
	require.NoError(t, badQuery.SetPathParam("shelfId", "s"))
	require.NoError(t, badQuery.AddQuery("limit", "many"))
	badQuery.SetBearerToken("t")
	assert.Equal(t, CodeInvalidArgument, code(mux.Do(ctx, badQuery, nil)))

	notFound, err := NewRequest("DELETE", "/shelves/{shelfId}")
	require.NoError(t, err)
	require.NoError(t, notFound.SetPathParam("shelfId", "s"))
	assert.Equal(t, CodeNotFound, code(mux.Do(ctx, notFound, nil)))

	noBody, err := NewRequest("PUT", "/shelves/{shelfId}/label")
	require.NoError(t, err)
	require.NoError(t, noBody.SetPathParam("shelfId", "s"))
	noBody.SetCookieToken("SESSION", "cookie-token")
	assert.Equal(t, CodeInvalidArgument, code(mux.Do(ctx, noBody, nil)))

	withBody, err := NewRequest("PUT", "/shelves/{shelfId}/label")
	require.NoError(t, err)
	require.NoError(t, withBody.SetPathParam("shelfId", "s"))
	withBody.SetCookieToken("SESSION", "cookie-token")
	withBody.SetJSONBody("fiction")
	require.NoError(t, mux.Do(ctx, withBody, nil))

	explode, err := NewRequest("POST", "/explode")
	require.NoError(t, err)
	assert.Equal(t, CodeInternal, code(mux.Do(ctx, explode, nil)))
	assert.Equal(t, 1, logs.FilterMessage("PANIC recovered").Len())

	_, err = NewRequest("GET", "/bad/{")
	assert.Error(t, err)
}

func TestMux_Binary(t *testing.T) {
	mux, _ := newShelfMux(t)

	req, err := NewRequest("POST", "/echo")
	require.NoError(t, err)
	req.SetBinaryBody([]byte{1, 2, 3})
	req.ExpectBinaryResponse()

	var out []byte
	require.NoError(t, mux.Do(context.Background(), req, &out))
	assert.Equal(t, append([]byte("echo:"), 1, 2, 3), out)
}

func TestMux_Register(t *testing.T) {
	mux := NewMux()
	h := func(ctx context.Context, req *ServerRequest) (any, error) { return nil, nil }

	require.NoError(t, mux.Register(Route{ServiceName: "S", EndpointName: "a", Method: "GET", Path: "/x/{id}", Handler: h}))
	err := mux.Register(Route{ServiceName: "S", EndpointName: "b", Method: "GET", Path: "/x/{id}", Handler: h})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S.a")

	require.NoError(t, mux.Register(Route{ServiceName: "S", EndpointName: "c", Method: "POST", Path: "/x/{id}", Handler: h}))
	assert.Error(t, mux.Register(Route{ServiceName: "S", EndpointName: "d", Method: "GET", Path: "/y"}))
	assert.Error(t, mux.Register(Route{ServiceName: "S", EndpointName: "e", Method: "GET", Path: "y", Handler: h}))

	routes := mux.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "a", routes[0].EndpointName)
	assert.Equal(t, "c", routes[1].EndpointName)
}

func TestMux_MostSpecificRouteWins(t *testing.T) {
	mux := NewMux()
	endpoint := func(ctx context.Context, req *ServerRequest) (any, error) {
		info, _ := EndpointFromContext(ctx)
		return info.Endpoint, nil
	}
	// Registered general-first so registration order alone would pick the wrong route.
	for _, r := range []struct{ name, path string }{
		{"getFile", "/books/{bookId}/{path:.*}"},
		{"getBook", "/books/{bookId}"},
		{"searchBooks", "/books/search"},
		{"getCover", "/books/{bookId}/cover"},
		{"latestCover", "/books/latest/cover"},
	} {
		require.NoError(t, mux.Register(Route{
			ServiceName:  "LibraryService",
			EndpointName: r.name,
			Method:       "GET",
			Path:         r.path,
			Handler:      endpoint,
		}))
	}

	tests := []struct {
		path string
		want string
	}{
		{"/books/search", "searchBooks"},
		{"/books/b-1", "getBook"},
		{"/books/b-1/cover", "getCover"},
		{"/books/latest/cover", "latestCover"},
		{"/books/b-1/pages/3", "getFile"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req, err := NewRequest("GET", tt.path)
			require.NoError(t, err)
			var got string
			require.NoError(t, mux.Do(context.Background(), req, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMux_Interceptors(t *testing.T) {
	var order []string
	mux := NewMux().
		WithInterceptor(func(ctx context.Context, req *ServerRequest, next Handler) (any, error) {
			order = append(order, "outer")
			return next(ctx, req)
		}).
		WithInterceptor(func(ctx context.Context, req *ServerRequest, next Handler) (any, error) {
			order = append(order, "inner")
			info, ok := EndpointFromContext(ctx)
			require.True(t, ok)
			assert.Equal(t, "ping", info.Endpoint)
			return next(ctx, req)
		})
	require.NoError(t, mux.Register(Route{
		ServiceName: "S", EndpointName: "ping", Method: "GET", Path: "/ping",
		Handler: func(ctx context.Context, req *ServerRequest) (any, error) {
			order = append(order, "handler")
			return "pong", nil
		},
	}))

	req, err := NewRequest("GET", "/ping")
	require.NoError(t, err)
	var out string
	require.NoError(t, mux.Do(context.Background(), req, &out))
	assert.Equal(t, "pong", out)
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
