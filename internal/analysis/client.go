package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/joseph-ayodele/pricetag-ocr/internal/common"
	"github.com/joseph-ayodele/pricetag-ocr/internal/extract"
)

const (
	analyzePath     = "/PriceTag/analyze"
	analyzeTextPath = "/PriceTag/analyze-text"
	uploadFilename  = "price-tag.jpg"
)

// Config for the remote price-tag analysis API.
type Config struct {
	BaseURL        string        // e.g. https://host/api
	APIKey         string        // sent as X-API-Key
	Timeout        time.Duration // http client timeout
	ValidateSchema bool
}

// Client calls the remote analysis API. It never retries.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("analysis status %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// AnalyzeImage uploads the image as multipart field "image".
func (c *Client) AnalyzeImage(ctx context.Context, img extract.Image) (extract.RemoteResult, error) {
	data, err := img.Read()
	if err != nil {
		return extract.RemoteResult{}, fmt.Errorf("read image: %w", err)
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, uploadFilename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return extract.RemoteResult{}, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return extract.RemoteResult{}, fmt.Errorf("write multipart part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return extract.RemoteResult{}, fmt.Errorf("close multipart: %w", err)
	}

	raw, err := c.post(ctx, c.cfg.BaseURL+analyzePath, mw.FormDataContentType(), &buf)
	if err != nil {
		return extract.RemoteResult{}, err
	}
	return c.decode(ctx, raw)
}

// AnalyzeText posts already-recognized text.
func (c *Client) AnalyzeText(ctx context.Context, ocrText string) (extract.RemoteResult, error) {
	b, err := json.Marshal(map[string]string{"ocrText": ocrText})
	if err != nil {
		return extract.RemoteResult{}, fmt.Errorf("encode json: %w", err)
	}
	raw, err := c.post(ctx, c.cfg.BaseURL+analyzeTextPath, "application/json", bytes.NewReader(b))
	if err != nil {
		return extract.RemoteResult{}, err
	}
	return c.decode(ctx, raw)
}

func (c *Client) post(ctx context.Context, url, contentType string, body io.Reader) ([]byte, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		c.logger.Error("analysis.http.build_request_error", "req_id", rid, "error", err)
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", c.cfg.APIKey)
	}

	c.logger.Info("analysis.http.request", "req_id", rid, "url", url)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("analysis.http.send_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("analysis http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.Warn("analysis.http.response_body_close_error", "req_id", rid, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Info("analysis.http.response",
		"req_id", rid,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(raw)}
	}
	return raw, nil
}

func (c *Client) decode(ctx context.Context, raw []byte) (extract.RemoteResult, error) {
	if c.cfg.ValidateSchema {
		if err := ValidateJSONAgainstSchema(ResponseSchema(), raw); err != nil {
			c.logger.Error("analysis.schema_validation_failed",
				"req_id", common.RequestIDFromContext(ctx), "error", err, "raw_bytes", len(raw))
			return extract.RemoteResult{}, fmt.Errorf("schema validation failed: %w", err)
		}
	}
	out, err := DecodeResponse(raw)
	if err != nil {
		return extract.RemoteResult{}, err
	}
	c.logger.Debug("analysis.decode.ok",
		"req_id", common.RequestIDFromContext(ctx),
		"name", out.Name,
		"price", out.Price,
		"weight", out.Weight,
	)
	return out, nil
}
