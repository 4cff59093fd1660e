package server

import (
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewGRPCServer returns a server with the scan service, health and reflection registered.
// The health server is returned so callers can flip it to NOT_SERVING on shutdown.
func NewGRPCServer(svc ScanServiceServer, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(LoggingInterceptor(logger))}, opts...)
	s := grpc.NewServer(opts...)
	RegisterScanServiceServer(s, svc)

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(s)
	return s, hs
}
