package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/pricetag-ocr/internal/app"
	"github.com/joseph-ayodele/pricetag-ocr/internal/async"
	"github.com/joseph-ayodele/pricetag-ocr/internal/common"
	"github.com/joseph-ayodele/pricetag-ocr/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stdout, cfg.Log.Level, true)
	slog.SetDefault(logger)

	addr := cfg.Server.GRPCAddr
	if addr != "" && !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "code", common.AppErrorCode(err), "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.DB.HealthCheck(ctx, 5*time.Second); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	queue := async.NewScanQueue(a.Service, a.Scans, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
	)

	scanService := server.NewScanService(a.Service, queue, a.Scans, logger)
	grpcServer, healthServer := server.NewGRPCServer(scanService, logger)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}

	logger.Info("pricetagd listening",
		"addr", addr,
		"ocr_engine", a.Engine.Name(),
		"use_local_ocr", a.Service.IsLocalOCREnabled(ctx),
		"db_dialect", a.DB.Dialect,
	)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Queue.ProcessTimeout)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
}
