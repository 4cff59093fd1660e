package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"time"
)

// CLIEngine shells out to the tesseract binary.
type CLIEngine struct {
	cfg      Config
	runner   Runner
	logger   *slog.Logger
	lookPath func(string) (string, error)
}

func NewCLIEngine(cfg Config, logger *slog.Logger) *CLIEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIEngine{
		cfg:      withDefaults(cfg),
		runner:   execRunner{logger: logger},
		logger:   logger,
		lookPath: exec.LookPath,
	}
}

func (e *CLIEngine) Name() string { return "tesseract-cli" }

// Available reports whether the tesseract binary is on PATH.
func (e *CLIEngine) Available() error {
	if _, err := e.lookPath(e.cfg.Tesseract); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEngineUnavailable, e.cfg.Tesseract, err)
	}
	return nil
}

func (e *CLIEngine) Recognize(ctx context.Context, path string) ([]string, error) {
	start := time.Now()
	img, cleanup, err := prepareImage(ctx, e.runner, e.logger, e.cfg, path)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	// tesseract <file> stdout -l <lang>
	args := []string{img, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}

	frags := Fragments(string(out))
	e.logger.Debug("ocr.cli.ok", "path", path, "fragments", len(frags), "elapsed_ms", time.Since(start).Milliseconds())
	return frags, nil
}
