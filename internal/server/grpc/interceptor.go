package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// loggingInterceptor logs every unary call with its outcome and latency.
func (s *HealthServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	startedAt := time.Now()

	resp, err := handler(ctx, req)

	args := []any{
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"latency_ms", float64(time.Since(startedAt).Microseconds()) / 1000.0,
	}
	if err != nil {
		s.logger.Warn(ctx, "grpc call failed", append(args, "error", err.Error())...)
	} else {
		s.logger.Debug(ctx, "grpc call", args...)
	}

	return resp, err
}
