// Package middleware provides conjure.Interceptor implementations.
package middleware

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/conjure"
)

// Logging returns an interceptor that logs the start and end of each call,
// including duration and error status. Conjure errors are logged at info
// level with their error name; other failures at error level.
func Logging(logger *zap.Logger) conjure.Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(ctx context.Context, req *conjure.ServerRequest, next conjure.Handler) (any, error) {
		start := time.Now()
		fields := []zap.Field{zap.String("method", req.Method)}
		if info, ok := conjure.EndpointFromContext(ctx); ok {
			fields = append(fields, zap.String("endpoint", info.Service+"."+info.Endpoint))
		}

		logger.Debug("request started", fields...)

		res, err := next(ctx, req)
		fields = append(fields, zap.Duration("duration", time.Since(start)))

		var cerr conjure.Error
		switch {
		case err == nil:
			logger.Info("request completed", fields...)
		case errors.As(err, &cerr):
			logger.Info("request failed",
				append(fields, zap.String("errorName", cerr.Name()), zap.String("errorCode", string(cerr.Code())))...)
		default:
			logger.Error("request failed", append(fields, zap.Error(err))...)
		}
		return res, err
	}
}
