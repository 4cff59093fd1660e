package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/otiai10/gosseract/v2"
)

// GosseractEngine recognizes text in-process through libtesseract.
type GosseractEngine struct {
	cfg           Config
	runner        Runner
	logger        *slog.Logger
	clientFactory func() *gosseract.Client
}

func NewGosseractEngine(cfg Config, logger *slog.Logger) *GosseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &GosseractEngine{
		cfg:           withDefaults(cfg),
		runner:        execRunner{logger: logger},
		logger:        logger,
		clientFactory: gosseract.NewClient,
	}
}

func (e *GosseractEngine) Name() string { return "gosseract" }

// Available reports whether libtesseract answers with a version.
func (e *GosseractEngine) Available() error {
	c := e.clientFactory()
	defer c.Close()
	if v := c.Version(); v == "" {
		return fmt.Errorf("%w: libtesseract reported no version", ErrEngineUnavailable)
	}
	return nil
}

func (e *GosseractEngine) Recognize(ctx context.Context, path string) ([]string, error) {
	start := time.Now()
	img, cleanup, err := prepareImage(ctx, e.runner, e.logger, e.cfg, path)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := e.clientFactory()
	defer c.Close()
	if e.cfg.TessdataDir != "" {
		c.TessdataPrefix = e.cfg.TessdataDir
	}
	if err := c.SetLanguage(e.cfg.TesseractLang); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	if e.cfg.PSM > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("tessedit_pageseg_mode"), strconv.Itoa(e.cfg.PSM)); err != nil {
			return nil, fmt.Errorf("set psm: %w", err)
		}
	}
	if err := c.SetImage(img); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}

	frags := Fragments(text)
	e.logger.Debug("ocr.gosseract.ok", "path", path, "fragments", len(frags), "elapsed_ms", time.Since(start).Milliseconds())
	return frags, nil
}
