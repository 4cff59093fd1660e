package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/pricetag-ocr/internal/common"
)

// RequestIDHeader is read from incoming metadata; a new id is minted when absent.
const RequestIDHeader = "x-request-id"

// LoggingInterceptor pins a request id on the context and logs each call.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		var rid string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDHeader); len(v) > 0 {
				rid = v[0]
			}
		}
		if rid == "" {
			rid = common.RequestIDFromContext(ctx)
		}
		ctx = common.WithRequestID(ctx, rid)

		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Warn("grpc.call.failed",
				"req_id", rid,
				"method", info.FullMethod,
				"code", status.Code(err).String(),
				"error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return resp, err
		}
		logger.Info("grpc.call.ok", "req_id", rid, "method", info.FullMethod, "elapsed_ms", time.Since(start).Milliseconds())
		return resp, nil
	}
}
