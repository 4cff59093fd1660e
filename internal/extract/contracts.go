package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/pricetag-ocr/constants"
)

// Image references a price-tag photo on disk.
type Image struct {
	Path        string
	ContentType string
}

// NewImage validates the extension and fills in the content type.
func NewImage(path string) (Image, error) {
	ext := filepath.Ext(path)
	if !constants.IsAllowedExt(ext) {
		return Image{}, fmt.Errorf("unsupported image extension %q", ext)
	}
	return Image{Path: path, ContentType: constants.MimeTypeForExt(ext)}, nil
}

// Read loads the image bytes.
func (i Image) Read() ([]byte, error) {
	return os.ReadFile(i.Path)
}

// Recognizer is the local path: image -> ordered text fragments.
type Recognizer interface {
	Available() error
	Recognize(ctx context.Context, path string) ([]string, error)
}

// Analyzer is the remote path: the API does its own extraction.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, img Image) (RemoteResult, error)
	AnalyzeText(ctx context.Context, ocrText string) (RemoteResult, error)
}

// RemoteResult is the decoded analysis API response.
type RemoteResult struct {
	Name      string
	Brand     string
	Price     float64
	Weight    float64
	OCRText   string
	AllPrices []string
	AllItems  []string
}
