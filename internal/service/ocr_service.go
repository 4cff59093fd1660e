// Package service orchestrates a price-tag scan: it reads the OCR mode once,
// then either recognizes and transforms locally or delegates to the remote
// analysis API. The selected mode is authoritative; there is no fallback.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pricetag-ocr/constants"
	"github.com/joseph-ayodele/pricetag-ocr/internal/common"
	"github.com/joseph-ayodele/pricetag-ocr/internal/extract"
	"github.com/joseph-ayodele/pricetag-ocr/internal/ocr"
	"github.com/joseph-ayodele/pricetag-ocr/internal/repository"
	"github.com/joseph-ayodele/pricetag-ocr/internal/transform"
)

// ModePreference is the persisted useLocalOCR flag.
type ModePreference interface {
	UseLocalOCR(ctx context.Context) bool
	SetUseLocalOCR(ctx context.Context, enabled bool) error
	ToggleUseLocalOCR(ctx context.Context) (bool, error)
}

// Result is an extracted item tagged with where it came from.
type Result struct {
	transform.Item
	Source     constants.Source
	Confidence *float64 // only set for local extractions
	OCRText    string
	AllPrices  []string
	AllItems   []string
	ScanID     uuid.UUID // zero when history is not recorded
}

type OCRService struct {
	prefs      ModePreference
	recognizer extract.Recognizer
	analyzer   extract.Analyzer
	scans      repository.ScanRepository
	logger     *slog.Logger
}

// NewOCRService wires the orchestrator. recognizer, analyzer and scans may be nil:
// a nil recognizer reads as unavailable, a nil analyzer fails remote calls,
// and a nil scans repository disables history.
func NewOCRService(prefs ModePreference, recognizer extract.Recognizer, analyzer extract.Analyzer, scans repository.ScanRepository, logger *slog.Logger) *OCRService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRService{prefs: prefs, recognizer: recognizer, analyzer: analyzer, scans: scans, logger: logger}
}

// Analyze extracts item fields from a price-tag image using the persisted mode.
func (s *OCRService) Analyze(ctx context.Context, img extract.Image) (Result, error) {
	rid := common.RequestIDFromContext(ctx)
	ctx = common.WithRequestID(ctx, rid)
	start := time.Now()

	useLocal := s.prefs.UseLocalOCR(ctx)
	s.logger.Info("service.analyze.start", "req_id", rid, "path", img.Path, "use_local_ocr", useLocal)

	var (
		res Result
		err error
	)
	if useLocal {
		res, err = s.analyzeLocal(ctx, img)
	} else {
		res, err = s.analyzeRemote(ctx, img)
	}
	res = s.record(ctx, img.Path, res, err)

	if err != nil {
		s.logger.Error("service.analyze.failed",
			"req_id", rid,
			"code", common.AppErrorCode(err),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return res, err
	}
	s.logger.Info("service.analyze.ok",
		"req_id", rid,
		"source", res.Source,
		"name", res.Name,
		"price", res.Price,
		"confidence", confidenceAttr(res.Confidence),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// AnalyzeText runs the local engine over already-recognized text.
func (s *OCRService) AnalyzeText(ctx context.Context, text string) (Result, error) {
	res := localResult(text)
	res = s.record(ctx, "", res, nil)
	s.logger.Debug("service.analyze_text.ok", "req_id", common.RequestIDFromContext(ctx), "name", res.Name, "confidence", *res.Confidence)
	return res, nil
}

// AnalyzeTextRemote sends already-recognized text to the analysis API.
func (s *OCRService) AnalyzeTextRemote(ctx context.Context, text string) (Result, error) {
	if s.analyzer == nil {
		return Result{}, failure(CodeRemoteAnalysisFailure, ErrRemoteAnalysisFailure, "no analysis client configured", nil)
	}
	r, err := s.analyzer.AnalyzeText(ctx, text)
	if err != nil {
		err = failure(CodeRemoteAnalysisFailure, ErrRemoteAnalysisFailure, "analyze text", err)
		return s.record(ctx, "", Result{Source: constants.SourceAPI}, err), err
	}
	return s.record(ctx, "", remoteResult(r), nil), nil
}

// AnalyzeHybrid recognizes locally and lets the analysis API parse the text.
// It ignores the persisted mode.
func (s *OCRService) AnalyzeHybrid(ctx context.Context, img extract.Image) (Result, error) {
	local, err := s.analyzeLocal(ctx, img)
	if err != nil {
		return s.record(ctx, img.Path, local, err), err
	}
	if s.analyzer == nil {
		err := failure(CodeRemoteAnalysisFailure, ErrRemoteAnalysisFailure, "no analysis client configured", nil)
		return s.record(ctx, img.Path, Result{Source: constants.SourceAPI, OCRText: local.OCRText}, err), err
	}
	r, err := s.analyzer.AnalyzeText(ctx, local.OCRText)
	if err != nil {
		err = failure(CodeRemoteAnalysisFailure, ErrRemoteAnalysisFailure, "analyze text of "+img.Path, err)
		return s.record(ctx, img.Path, Result{Source: constants.SourceAPI, OCRText: local.OCRText}, err), err
	}
	res := remoteResult(r)
	res.OCRText = local.OCRText
	return s.record(ctx, img.Path, res, nil), nil
}

func (s *OCRService) IsLocalOCREnabled(ctx context.Context) bool {
	return s.prefs.UseLocalOCR(ctx)
}

func (s *OCRService) SetOCRMode(ctx context.Context, useLocal bool) error {
	return s.prefs.SetUseLocalOCR(ctx, useLocal)
}

// ToggleOCRMode flips the mode and returns the new useLocalOCR value.
func (s *OCRService) ToggleOCRMode(ctx context.Context) (bool, error) {
	return s.prefs.ToggleUseLocalOCR(ctx)
}

func (s *OCRService) analyzeLocal(ctx context.Context, img extract.Image) (Result, error) {
	base := Result{Source: constants.SourceLocal}
	if s.recognizer == nil {
		return base, failure(CodeLocalOCRUnavailable, ErrLocalOCRUnavailable, "no local recognizer configured", nil)
	}
	if err := s.recognizer.Available(); err != nil {
		return base, failure(CodeLocalOCRUnavailable, ErrLocalOCRUnavailable, "local recognizer cannot run", err)
	}
	frags, err := s.recognizer.Recognize(ctx, img.Path)
	if err != nil {
		return base, failure(CodeLocalOCRFailure, ErrLocalOCRFailure, "recognize "+img.Path, err)
	}
	return localResult(ocr.JoinFragments(frags)), nil
}

func (s *OCRService) analyzeRemote(ctx context.Context, img extract.Image) (Result, error) {
	base := Result{Source: constants.SourceAPI}
	if s.analyzer == nil {
		return base, failure(CodeRemoteAnalysisFailure, ErrRemoteAnalysisFailure, "no analysis client configured", nil)
	}
	r, err := s.analyzer.AnalyzeImage(ctx, img)
	if err != nil {
		return base, failure(CodeRemoteAnalysisFailure, ErrRemoteAnalysisFailure, "analyze "+img.Path, err)
	}
	return remoteResult(r), nil
}

func localResult(text string) Result {
	r := transform.Analyze(text)
	item := r.Item
	if item.Name == "" {
		item.Name = constants.UnknownItem
	}
	conf := r.Confidence
	return Result{
		Item:       item,
		Source:     constants.SourceLocal,
		Confidence: &conf,
		OCRText:    text,
	}
}

func remoteResult(r extract.RemoteResult) Result {
	return Result{
		Item:      transform.Item{Name: r.Name, Brand: r.Brand, Price: r.Price, Weight: r.Weight},
		Source:    constants.SourceAPI,
		OCRText:   r.OCRText,
		AllPrices: r.AllPrices,
		AllItems:  r.AllItems,
	}
}

// record writes the outcome to scan history. Failures here are logged only.
func (s *OCRService) record(ctx context.Context, path string, res Result, analyzeErr error) Result {
	if s.scans == nil {
		return res
	}
	rid := common.RequestIDFromContext(ctx)
	rec := repository.ScanRecord{
		Source:     res.Source,
		Name:       res.Name,
		Brand:      res.Brand,
		Price:      res.Price,
		Weight:     res.Weight,
		Confidence: res.Confidence,
		OCRText:    res.OCRText,
		ImagePath:  path,
		Status:     constants.ScanStatusDone,
	}

	if id, ok := common.ScanIDFromContext(ctx); ok {
		res.ScanID = id
		rec.ID = id
		var err error
		if analyzeErr != nil {
			err = s.scans.MarkFailed(ctx, id, analyzeErr.Error())
		} else {
			err = s.scans.Complete(ctx, rec)
		}
		if err != nil {
			s.logger.Warn("service.record.failed", "req_id", rid, "scan_id", id, "error", err)
		}
		return res
	}

	if analyzeErr != nil {
		rec.Status = constants.ScanStatusFailed
		rec.ErrorMessage = analyzeErr.Error()
	}
	saved, err := s.scans.Create(ctx, rec)
	if err != nil {
		s.logger.Warn("service.record.failed", "req_id", rid, "error", err)
		return res
	}
	res.ScanID = saved.ID
	return res
}

func confidenceAttr(c *float64) any {
	if c == nil {
		return nil
	}
	return *c
}
