// Package batch scans many price-tag images and exports the results for
// accuracy review. One bad image never aborts the run.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/pricetag-ocr/internal/extract"
	"github.com/joseph-ayodele/pricetag-ocr/internal/service"
)

// AnalyzeFunc scans one image; OCRService.Analyze and AnalyzeHybrid both fit.
type AnalyzeFunc func(ctx context.Context, img extract.Image) (service.Result, error)

// ItemResult is one row of a batch run.
type ItemResult struct {
	Filename       string
	Path           string
	OCRText        string
	Name           string
	Brand          string
	Price          float64
	Weight         float64
	Confidence     *float64
	ProcessingTime time.Duration
	Error          string
}

type Runner struct {
	analyze     AnalyzeFunc
	concurrency int
	progress    func(done, total int)
	logger      *slog.Logger
}

type Option func(*Runner)

func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithProgress is called after every finished image.
func WithProgress(fn func(done, total int)) Option {
	return func(r *Runner) { r.progress = fn }
}

func NewRunner(analyze AnalyzeFunc, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{analyze: analyze, concurrency: 4, logger: logger}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run scans paths with bounded concurrency. Results keep the input order.
// The only error returned is the context's.
func (r *Runner) Run(ctx context.Context, paths []string) ([]ItemResult, error) {
	runID := uuid.New().String()
	start := time.Now()
	results := make([]ItemResult, len(paths))
	var done atomic.Int64

	r.logger.Info("batch.run.start", "run_id", runID, "images", len(paths), "concurrency", r.concurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, p := range paths {
		if gctx.Err() != nil {
			break
		}
		i, p := i, p
		g.Go(func() error {
			results[i] = r.scanOne(gctx, runID, i, p)
			n := done.Add(1)
			if r.progress != nil {
				r.progress(int(n), len(paths))
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		r.logger.Warn("batch.run.canceled", "run_id", runID, "done", done.Load(), "error", err)
		return results, err
	}
	sum := Summarize(results)
	r.logger.Info("batch.run.ok",
		"run_id", runID,
		"images", sum.Total,
		"failed", sum.Failed,
		"avg_ms", sum.Average.Milliseconds(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

func (r *Runner) scanOne(ctx context.Context, runID string, i int, path string) ItemResult {
	out := ItemResult{Filename: filepath.Base(path), Path: path}
	if out.Filename == "." || out.Filename == string(filepath.Separator) {
		out.Filename = fmt.Sprintf("image_%d.jpg", i+1)
	}

	img, err := extract.NewImage(path)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	start := time.Now()
	res, err := r.analyze(ctx, img)
	if err != nil {
		r.logger.Warn("batch.image.failed", "run_id", runID, "path", path, "error", err)
		out.Error = err.Error()
		return out
	}
	out.OCRText = res.OCRText
	out.Name = res.Name
	out.Brand = res.Brand
	out.Price = res.Price
	out.Weight = res.Weight
	out.Confidence = res.Confidence
	out.ProcessingTime = time.Since(start)
	return out
}

// Summary aggregates a run the way the batch screen reports it.
type Summary struct {
	Total     int
	Failed    int
	TotalTime time.Duration
	Average   time.Duration
}

func Summarize(results []ItemResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Error != "" {
			s.Failed++
		}
		s.TotalTime += r.ProcessingTime
	}
	if s.Total > 0 {
		s.Average = s.TotalTime / time.Duration(s.Total)
	}
	return s
}
