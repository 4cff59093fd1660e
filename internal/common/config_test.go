package common

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_URL", "postgres://u:p@db:5432/pricetag")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OCR_ENGINE", OCREngineTesseractCLI)
	t.Setenv("ANALYSIS_TIMEOUT", "10s")
	t.Setenv("ANALYSIS_VALIDATE_SCHEMA", "false")
	t.Setenv("QUEUE_WORKERS", "not-a-number")

	cfg := LoadConfig()
	if cfg.Database.DSN != "postgres://u:p@db:5432/pricetag" {
		t.Errorf("DSN = %q", cfg.Database.DSN)
	}
	if cfg.Log.Level != slog.LevelDebug {
		t.Errorf("Level = %v, want debug", cfg.Log.Level)
	}
	if cfg.OCR.Engine != OCREngineTesseractCLI {
		t.Errorf("Engine = %q", cfg.OCR.Engine)
	}
	if cfg.Analysis.Timeout != 10*time.Second || cfg.Analysis.ValidateSchema {
		t.Errorf("Analysis = %+v", cfg.Analysis)
	}
	if cfg.Queue.Workers != 4 {
		t.Errorf("Workers = %d, want default 4 for unparsable value", cfg.Queue.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.OCR.Engine = "paddle"
	err := cfg.Validate()
	if AppErrorCode(err) != "CONFIG_ERROR" || !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Validate = %v, want CONFIG_ERROR wrapping ErrInvalidInput", err)
	}
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	minted := RequestIDFromContext(ctx)
	if minted == "" {
		t.Fatal("expected a minted request id")
	}
	ctx = WithRequestID(ctx, "req-1")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext = %q, want req-1", got)
	}
}
