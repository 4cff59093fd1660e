package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/pricetag-ocr/internal/common"
	"github.com/joseph-ayodele/pricetag-ocr/internal/extract"
	"github.com/joseph-ayodele/pricetag-ocr/internal/repository"
	"github.com/joseph-ayodele/pricetag-ocr/internal/service"
	"github.com/joseph-ayodele/pricetag-ocr/internal/transform"
)

// Scanner is the orchestrator surface the gRPC service needs.
type Scanner interface {
	Analyze(ctx context.Context, img extract.Image) (service.Result, error)
	AnalyzeHybrid(ctx context.Context, img extract.Image) (service.Result, error)
	IsLocalOCREnabled(ctx context.Context) bool
	SetOCRMode(ctx context.Context, useLocal bool) error
	ToggleOCRMode(ctx context.Context) (bool, error)
}

// Submitter queues a scan for asynchronous processing.
type Submitter interface {
	Submit(ctx context.Context, img extract.Image) (uuid.UUID, error)
}

type ScanService struct {
	scanner Scanner
	queue   Submitter
	scans   repository.ScanRepository
	logger  *slog.Logger
}

// NewScanService builds the gRPC service. queue and scans may be nil, which
// makes SubmitScan, GetScan and ListScans report Unavailable.
func NewScanService(scanner Scanner, queue Submitter, scans repository.ScanRepository, logger *slog.Logger) *ScanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanService{scanner: scanner, queue: queue, scans: scans, logger: logger}
}

func (s *ScanService) Transform(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, err := requiredString(req, "text")
	if err != nil {
		return nil, err
	}
	r := transform.Analyze(text)
	return newStruct(map[string]any{
		"name":       r.Name,
		"brand":      r.Brand,
		"price":      r.Price,
		"weight":     r.Weight,
		"unit":       string(transform.DetectWeightUnit(transform.Clean(text))),
		"confidence": r.Confidence,
		"band":       string(transform.Band(r.Confidence)),
	})
}

func (s *ScanService) Split(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, err := requiredString(req, "text")
	if err != nil {
		return nil, err
	}
	results := transform.AnalyzeItems(text)
	items := make([]any, 0, len(results))
	for _, r := range results {
		items = append(items, map[string]any{
			"name":       r.Name,
			"brand":      r.Brand,
			"price":      r.Price,
			"weight":     r.Weight,
			"confidence": r.Confidence,
		})
	}
	return newStruct(map[string]any{"items": items})
}

func (s *ScanService) Score(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := req.GetFields()
	item := transform.Item{
		Name:   f["name"].GetStringValue(),
		Brand:  f["brand"].GetStringValue(),
		Price:  f["price"].GetNumberValue(),
		Weight: f["weight"].GetNumberValue(),
	}
	score := transform.Score(item)
	return newStruct(map[string]any{"confidence": score, "band": string(transform.Band(score))})
}

func (s *ScanService) Analyze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	img, err := imageArg(req)
	if err != nil {
		return nil, err
	}
	var res service.Result
	if req.GetFields()["hybrid"].GetBoolValue() {
		res, err = s.scanner.AnalyzeHybrid(ctx, img)
	} else {
		res, err = s.scanner.Analyze(ctx, img)
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(resultFields(res))
}

func (s *ScanService) SubmitScan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.queue == nil {
		return nil, common.UnavailableError("async scans are not enabled")
	}
	img, err := imageArg(req)
	if err != nil {
		return nil, err
	}
	id, err := s.queue.Submit(ctx, img)
	if err != nil {
		s.logger.Warn("grpc.submit_scan.failed", "req_id", common.RequestIDFromContext(ctx), "error", err)
		return nil, common.UnavailableError("submit scan failed: " + err.Error())
	}
	return newStruct(map[string]any{"scan_id": id.String()})
}

func (s *ScanService) GetScan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.scans == nil {
		return nil, common.UnavailableError("scan history is not enabled")
	}
	raw, err := requiredString(req, "scan_id")
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, common.InvalidArgumentErrorf("scan_id: %v", err)
	}
	rec, err := s.scans.GetByID(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(recordFields(rec))
}

func (s *ScanService) ListScans(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.scans == nil {
		return nil, common.UnavailableError("scan history is not enabled")
	}
	limit := int(req.GetFields()["limit"].GetNumberValue())
	recs, err := s.scans.List(ctx, limit)
	if err != nil {
		return nil, toStatus(err)
	}
	out := make([]any, 0, len(recs))
	for _, r := range recs {
		out = append(out, recordFields(r))
	}
	return newStruct(map[string]any{"scans": out})
}

func (s *ScanService) GetMode(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return modeStruct(s.scanner.IsLocalOCREnabled(ctx))
}

func (s *ScanService) SetMode(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	v, ok := req.GetFields()["use_local_ocr"]
	if !ok {
		return nil, common.InvalidArgumentError("use_local_ocr is required")
	}
	if _, isBool := v.GetKind().(*structpb.Value_BoolValue); !isBool {
		return nil, common.InvalidArgumentError("use_local_ocr must be a bool")
	}
	if err := s.scanner.SetOCRMode(ctx, v.GetBoolValue()); err != nil {
		return nil, common.InternalError("save mode failed")
	}
	return modeStruct(v.GetBoolValue())
}

func (s *ScanService) ToggleMode(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	on, err := s.scanner.ToggleOCRMode(ctx)
	if err != nil {
		return nil, common.InternalError("save mode failed")
	}
	return modeStruct(on)
}

func modeStruct(on bool) (*structpb.Struct, error) {
	return newStruct(map[string]any{"use_local_ocr": on})
}

func requiredString(req *structpb.Struct, key string) (string, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return "", common.InvalidArgumentErrorf("%s is required", key)
	}
	sv, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		return "", common.InvalidArgumentErrorf("%s must be a string", key)
	}
	return sv.StringValue, nil
}

func imageArg(req *structpb.Struct) (extract.Image, error) {
	path, err := requiredString(req, "path")
	if err != nil {
		return extract.Image{}, err
	}
	if path == "" {
		return extract.Image{}, common.InvalidArgumentError("path is required")
	}
	img, err := extract.NewImage(path)
	if err != nil {
		return extract.Image{}, common.InvalidArgumentError(err.Error())
	}
	return img, nil
}

func resultFields(r service.Result) map[string]any {
	m := map[string]any{
		"name":       r.Name,
		"brand":      r.Brand,
		"price":      r.Price,
		"weight":     r.Weight,
		"source":     string(r.Source),
		"ocr_text":   r.OCRText,
		"all_prices": stringsToAny(r.AllPrices),
		"all_items":  stringsToAny(r.AllItems),
	}
	if r.Confidence != nil {
		m["confidence"] = *r.Confidence
		m["band"] = string(transform.Band(*r.Confidence))
	}
	if r.ScanID != uuid.Nil {
		m["scan_id"] = r.ScanID.String()
	}
	return m
}

func recordFields(r repository.ScanRecord) map[string]any {
	m := map[string]any{
		"scan_id":       r.ID.String(),
		"source":        string(r.Source),
		"name":          r.Name,
		"brand":         r.Brand,
		"price":         r.Price,
		"weight":        r.Weight,
		"ocr_text":      r.OCRText,
		"image_path":    r.ImagePath,
		"status":        string(r.Status),
		"error_message": r.ErrorMessage,
		"created_at":    r.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":    r.UpdatedAt.Format(time.RFC3339Nano),
	}
	if r.Confidence != nil {
		m["confidence"] = *r.Confidence
	}
	return m
}

func stringsToAny(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return s, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return common.NotFoundError(err.Error())
	case errors.Is(err, service.ErrLocalOCRUnavailable), errors.Is(err, service.ErrRemoteAnalysisFailure):
		return common.UnavailableError(err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return common.UnavailableError(err.Error())
	default:
		return common.InternalError(err.Error())
	}
}
