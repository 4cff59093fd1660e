package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/joseph-ayodele/pricetag-ocr/constants"
	"github.com/joseph-ayodele/pricetag-ocr/internal/common"
)

var (
	// ErrEngineUnavailable is returned when the recognizer cannot run on this host.
	ErrEngineUnavailable = errors.New("ocr engine unavailable")
	// ErrUnsupportedImage is returned for extensions tesseract cannot read.
	ErrUnsupportedImage = errors.New("unsupported image type")
)

type Config struct {
	Engine        string // "gosseract" | "tesseract-cli"
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	PSM           int // e.g., 6 is good for a uniform block of text; 0 leaves the default

	HeicConverter    string // "heif-convert" | "magick" | "sips"
	ArtifactCacheDir string
}

// Engine recognizes text in a price-tag image and returns it as ordered fragments (lines).
type Engine interface {
	Name() string
	// Available returns nil when the engine can run, or an error wrapping ErrEngineUnavailable.
	Available() error
	Recognize(ctx context.Context, path string) ([]string, error)
}

// ConfigFromApp maps the application config onto the recognizer config.
func ConfigFromApp(c common.OCRConfig) Config {
	return Config{
		Engine:           c.Engine,
		Tesseract:        c.TesseractBin,
		TesseractLang:    c.Language,
		TessdataDir:      c.TessdataDir,
		HeicConverter:    c.HeicConverter,
		ArtifactCacheDir: c.ArtifactCacheDir,
	}
}

// New builds the engine named by cfg.Engine.
func New(cfg Config, logger *slog.Logger) (Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = withDefaults(cfg)
	switch cfg.Engine {
	case common.OCREngineGosseract:
		return NewGosseractEngine(cfg, logger), nil
	case common.OCREngineTesseractCLI:
		return NewCLIEngine(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", cfg.Engine)
	}
}

func withDefaults(cfg Config) Config {
	if cfg.Engine == "" {
		cfg.Engine = common.OCREngineGosseract
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	return cfg
}

// prepareImage rejects unsupported extensions and converts HEIC/HEIF to PNG.
// cleanup is nil when nothing temporary was produced.
func prepareImage(ctx context.Context, r Runner, logger *slog.Logger, cfg Config, path string) (string, func(), error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	if !constants.IsAllowedExt(ext) {
		return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedImage, ext)
	}
	if !constants.IsHEICExt(ext) {
		return path, nil, nil
	}
	out, warns, cleanup, err := convertHEICtoPNG(ctx, r, logger, cfg.HeicConverter, path, cfg.ArtifactCacheDir)
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		logger.Error("ocr.heic.convert.failed", "path", path, "warnings", warns, "error", err)
		return "", nil, err
	}
	return out, cleanup, nil
}
