package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/pricetag-ocr/internal/common"
	"github.com/joseph-ayodele/pricetag-ocr/internal/ocr"
)

// OCRAdapter exposes an ocr.Engine as a Recognizer with request-scoped logging.
type OCRAdapter struct {
	e      ocr.Engine
	logger *slog.Logger
}

func NewOCRAdapter(e ocr.Engine, logger *slog.Logger) *OCRAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRAdapter{e: e, logger: logger}
}

func (a *OCRAdapter) Available() error {
	err := a.e.Available()
	if err != nil {
		a.logger.Warn("ocr.unavailable", "engine", a.e.Name(), "error", err)
	}
	return err
}

func (a *OCRAdapter) Recognize(ctx context.Context, path string) ([]string, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()
	frags, err := a.e.Recognize(ctx, path)
	if err != nil {
		a.logger.Error("ocr.recognize.failed", "req_id", rid, "engine", a.e.Name(), "path", path, "error", err)
		return nil, err
	}
	a.logger.Info("ocr.recognize.ok",
		"req_id", rid,
		"engine", a.e.Name(),
		"path", path,
		"fragments", len(frags),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return frags, nil
}
