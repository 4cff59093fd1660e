package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// convertHEICtoPNG converts a HEIC/HEIF file to PNG.
// With a cacheDir the PNG is kept (and reused) at {cacheDir}/heic/{sha256}.png
// and cleanup is nil; otherwise the PNG lives in a temp dir that cleanup removes.
func convertHEICtoPNG(ctx context.Context, r Runner, logger *slog.Logger, converter, in, cacheDir string) (string, []string, func(), error) {
	var cached string
	if cacheDir != "" {
		sum, err := fileSHA256(in)
		if err != nil {
			return "", nil, nil, fmt.Errorf("hash %s: %w", in, err)
		}
		dir := filepath.Join(cacheDir, "heic")
		cached = filepath.Join(dir, sum+".png")
		if st, err := os.Stat(cached); err == nil && !st.IsDir() {
			logger.Debug("ocr.heic.cache.hit", "cache", cached)
			return cached, nil, nil, nil
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", nil, nil, err
		}
	}

	tmpDir, err := os.MkdirTemp("", "pt-heic-*")
	if err != nil {
		return "", nil, nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	out := filepath.Join(tmpDir, "tag.png")

	switch converter {
	case "heif-convert":
		if _, errb, err2 := r.Run(ctx, "heif-convert", in, out); err2 != nil {
			return "", []string{string(errb)}, cleanup, fmt.Errorf("heif-convert failed: %w", err2)
		}
	case "magick":
		if _, errb, err2 := r.Run(ctx, "magick", in, out); err2 != nil {
			return "", []string{string(errb)}, cleanup, fmt.Errorf("magick convert failed: %w", err2)
		}
	case "sips":
		if _, errb, err2 := r.Run(ctx, "sips", "-s", "format", "png", in, "--out", out); err2 != nil {
			return "", []string{string(errb)}, cleanup, fmt.Errorf("sips convert failed: %w", err2)
		}
	default:
		return "", nil, cleanup, fmt.Errorf("HEIC not supported: set HEIC_CONVERTER to one of: heif-convert | magick | sips")
	}

	if _, statErr := os.Stat(out); statErr != nil {
		return "", nil, cleanup, fmt.Errorf("HEIC conversion produced no output: %v", statErr)
	}
	if cached == "" {
		return out, nil, cleanup, nil
	}

	defer cleanup()
	if err := os.Rename(out, cached); err != nil {
		// rename fails across devices; copy instead
		if err := copyFile(out, cached); err != nil {
			return "", nil, nil, err
		}
	}
	logger.Debug("ocr.heic.cache.store", "cache", cached)
	return cached, nil, nil, nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
