package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/pricetag-ocr/constants"
	"github.com/joseph-ayodele/pricetag-ocr/internal/analysis"
	"github.com/joseph-ayodele/pricetag-ocr/internal/common"
	"github.com/joseph-ayodele/pricetag-ocr/internal/extract"
	"github.com/joseph-ayodele/pricetag-ocr/internal/repository"
	"github.com/joseph-ayodele/pricetag-ocr/internal/settings"
	"github.com/joseph-ayodele/pricetag-ocr/internal/transform"
)

type fakeRecognizer struct {
	frags    []string
	err      error
	availErr error
	calls    int
}

func (f *fakeRecognizer) Available() error { return f.availErr }
func (f *fakeRecognizer) Recognize(context.Context, string) ([]string, error) {
	f.calls++
	return f.frags, f.err
}

type fakeAnalyzer struct {
	res   extract.RemoteResult
	err   error
	calls int
	text  string
}

func (f *fakeAnalyzer) AnalyzeImage(context.Context, extract.Image) (extract.RemoteResult, error) {
	f.calls++
	return f.res, f.err
}

func (f *fakeAnalyzer) AnalyzeText(_ context.Context, text string) (extract.RemoteResult, error) {
	f.calls++
	f.text = text
	return f.res, f.err
}

func newPrefs(t *testing.T, local bool) *settings.Preferences {
	t.Helper()
	p := settings.NewPreferences(settings.NewMemoryStore(), nil)
	if err := p.SetUseLocalOCR(context.Background(), local); err != nil {
		t.Fatal(err)
	}
	return p
}

var tag = extract.Image{Path: "tag.jpg", ContentType: "image/jpeg"}

func TestAnalyzeLocal(t *testing.T) {
	rec := &fakeRecognizer{frags: []string{"Organic Bananas", "by Fresh Farms", "2 lb $3.99"}}
	an := &fakeAnalyzer{}
	svc := NewOCRService(newPrefs(t, true), rec, an, nil, nil)

	got, err := svc.Analyze(context.Background(), tag)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if an.calls != 0 {
		t.Fatalf("remote analyzer called %d times in local mode", an.calls)
	}

	text := "Organic Bananas by Fresh Farms 2 lb $3.99"
	want := transform.Analyze(text)
	if got.Source != constants.SourceLocal || got.OCRText != text {
		t.Fatalf("got source %q text %q", got.Source, got.OCRText)
	}
	if diff := cmp.Diff(want.Item, got.Item); diff != "" {
		t.Fatalf("item mismatch (-want +got):\n%s", diff)
	}
	if got.Confidence == nil || *got.Confidence != want.Confidence {
		t.Fatalf("confidence = %v, want %v", got.Confidence, want.Confidence)
	}
}

func TestAnalyzeLocalEmptyRecognition(t *testing.T) {
	svc := NewOCRService(newPrefs(t, true), &fakeRecognizer{}, nil, nil, nil)
	got, err := svc.Analyze(context.Background(), tag)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Name != constants.UnknownProduct || got.Brand != constants.GenericBrand || got.Price != 0 || got.Weight != 0 {
		t.Fatalf("got %+v", got.Item)
	}
	if got.Confidence == nil || *got.Confidence != 0 {
		t.Fatalf("confidence = %v, want 0", got.Confidence)
	}
}

func TestAnalyzeRemote(t *testing.T) {
	rec := &fakeRecognizer{}
	an := &fakeAnalyzer{res: extract.RemoteResult{
		Name: "Organic Bananas", Brand: "Fresh Farms", Price: 3.99, Weight: 32,
		OCRText: "raw", AllPrices: []string{"3.99"}, AllItems: []string{"Organic Bananas"},
	}}
	svc := NewOCRService(newPrefs(t, false), rec, an, nil, nil)

	got, err := svc.Analyze(context.Background(), tag)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rec.calls != 0 {
		t.Fatalf("local recognizer called %d times in remote mode", rec.calls)
	}
	want := Result{
		Item:      transform.Item{Name: "Organic Bananas", Brand: "Fresh Farms", Price: 3.99, Weight: 32},
		Source:    constants.SourceAPI,
		OCRText:   "raw",
		AllPrices: []string{"3.99"},
		AllItems:  []string{"Organic Bananas"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeFailures(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name     string
		local    bool
		rec      extract.Recognizer
		an       extract.Analyzer
		wantKind error
		wantCode string
	}{
		{"no recognizer", true, nil, &fakeAnalyzer{}, ErrLocalOCRUnavailable, CodeLocalOCRUnavailable},
		{"recognizer unavailable", true, &fakeRecognizer{availErr: cause}, &fakeAnalyzer{}, ErrLocalOCRUnavailable, CodeLocalOCRUnavailable},
		{"recognition failed", true, &fakeRecognizer{err: cause}, &fakeAnalyzer{}, ErrLocalOCRFailure, CodeLocalOCRFailure},
		{"remote failed", false, &fakeRecognizer{}, &fakeAnalyzer{err: cause}, ErrRemoteAnalysisFailure, CodeRemoteAnalysisFailure},
		{"no analyzer", false, &fakeRecognizer{}, nil, ErrRemoteAnalysisFailure, CodeRemoteAnalysisFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewOCRService(newPrefs(t, tt.local), tt.rec, tt.an, nil, nil)
			_, err := svc.Analyze(context.Background(), tag)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("err = %v, want kind %v", err, tt.wantKind)
			}
			if code := common.AppErrorCode(err); code != tt.wantCode {
				t.Fatalf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestAnalyzeFailureKeepsCause(t *testing.T) {
	se := &analysis.StatusError{StatusCode: 503, Body: "down"}
	svc := NewOCRService(newPrefs(t, false), nil, &fakeAnalyzer{err: se}, nil, nil)

	_, err := svc.Analyze(context.Background(), tag)
	var got *analysis.StatusError
	if !errors.As(err, &got) || got.StatusCode != 503 {
		t.Fatalf("err = %v, want *analysis.StatusError in chain", err)
	}
	if errors.Is(err, ErrLocalOCRFailure) {
		t.Fatal("remote failure must not match local kinds")
	}
}

func TestNoFallbackBetweenModes(t *testing.T) {
	rec := &fakeRecognizer{availErr: errors.New("missing")}
	an := &fakeAnalyzer{res: extract.RemoteResult{Name: "Milk"}}
	svc := NewOCRService(newPrefs(t, true), rec, an, nil, nil)

	if _, err := svc.Analyze(context.Background(), tag); !errors.Is(err, ErrLocalOCRUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if an.calls != 0 {
		t.Fatal("local failure fell back to the remote analyzer")
	}
}

func TestModeDelegation(t *testing.T) {
	ctx := context.Background()
	svc := NewOCRService(newPrefs(t, false), nil, nil, nil, nil)

	if svc.IsLocalOCREnabled(ctx) {
		t.Fatal("expected remote mode")
	}
	on, err := svc.ToggleOCRMode(ctx)
	if err != nil || !on || !svc.IsLocalOCREnabled(ctx) {
		t.Fatalf("toggle = %v, %v", on, err)
	}
	if err := svc.SetOCRMode(ctx, false); err != nil || svc.IsLocalOCREnabled(ctx) {
		t.Fatalf("SetOCRMode(false) err %v, enabled %v", err, svc.IsLocalOCREnabled(ctx))
	}
}

func TestAnalyzeTextVariants(t *testing.T) {
	ctx := context.Background()
	an := &fakeAnalyzer{res: extract.RemoteResult{Name: "Milk", Price: 2.5}}
	svc := NewOCRService(newPrefs(t, false), nil, an, nil, nil)

	local, err := svc.AnalyzeText(ctx, "Milk $2.50")
	if err != nil || local.Source != constants.SourceLocal || local.Price != 2.5 || local.Confidence == nil {
		t.Fatalf("AnalyzeText = %+v, %v", local, err)
	}

	remote, err := svc.AnalyzeTextRemote(ctx, "Milk $2.50")
	if err != nil || remote.Source != constants.SourceAPI || remote.Confidence != nil || an.text != "Milk $2.50" {
		t.Fatalf("AnalyzeTextRemote = %+v, %v", remote, err)
	}
}

func openScans(t *testing.T) repository.ScanRepository {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: "sqlite://:memory:", DialTimeout: 5 * time.Second}, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	return repository.NewScanRepository(db, nil)
}

func TestAnalyzeRecordsHistory(t *testing.T) {
	ctx := context.Background()
	scans := openScans(t)
	rec := &fakeRecognizer{frags: []string{"Milk $2.50"}}
	svc := NewOCRService(newPrefs(t, true), rec, nil, scans, nil)

	ok, err := svc.Analyze(ctx, tag)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if ok.ScanID == uuid.Nil {
		t.Fatal("expected a recorded scan id")
	}
	row, err := scans.GetByID(ctx, ok.ScanID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if row.Status != constants.ScanStatusDone || row.Name != ok.Name || row.ImagePath != "tag.jpg" || row.Confidence == nil {
		t.Fatalf("row = %+v", row)
	}

	rec.err = errors.New("tesseract crashed")
	failed, err := svc.Analyze(ctx, tag)
	if err == nil {
		t.Fatal("expected failure")
	}
	row, err = scans.GetByID(ctx, failed.ScanID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if row.Status != constants.ScanStatusFailed || row.ErrorMessage == "" {
		t.Fatalf("failed row = %+v", row)
	}
}

func TestAnalyzeCompletesPinnedScan(t *testing.T) {
	ctx := context.Background()
	scans := openScans(t)
	pending, err := scans.Create(ctx, repository.ScanRecord{Source: constants.SourceAPI, ImagePath: "tag.jpg", Status: constants.ScanStatusPending})
	if err != nil {
		t.Fatal(err)
	}

	an := &fakeAnalyzer{res: extract.RemoteResult{Name: "Tea", Price: 1.25}}
	svc := NewOCRService(newPrefs(t, false), nil, an, scans, nil)
	got, err := svc.Analyze(common.WithScanID(ctx, pending.ID), tag)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.ScanID != pending.ID {
		t.Fatalf("ScanID = %v, want %v", got.ScanID, pending.ID)
	}
	row, err := scans.GetByID(ctx, pending.ID)
	if err != nil {
		t.Fatal(err)
	}
	if row.Status != constants.ScanStatusDone || row.Name != "Tea" || row.Confidence != nil {
		t.Fatalf("row = %+v", row)
	}
}

func TestAnalyzeHybrid(t *testing.T) {
	ctx := context.Background()
	rec := &fakeRecognizer{frags: []string{"Rye Bread", "$3.00"}}
	an := &fakeAnalyzer{res: extract.RemoteResult{Name: "Rye Bread", Price: 3}}
	// persisted mode is remote; hybrid still recognizes locally
	svc := NewOCRService(newPrefs(t, false), rec, an, nil, nil)

	got, err := svc.AnalyzeHybrid(ctx, tag)
	if err != nil {
		t.Fatalf("AnalyzeHybrid: %v", err)
	}
	if rec.calls != 1 || an.text != "Rye Bread $3.00" {
		t.Fatalf("recognizer calls %d, analyzer text %q", rec.calls, an.text)
	}
	if got.Source != constants.SourceAPI || got.OCRText != "Rye Bread $3.00" || got.Name != "Rye Bread" || got.Confidence != nil {
		t.Fatalf("got %+v", got)
	}

	rec.err = errors.New("bad image")
	if _, err := svc.AnalyzeHybrid(ctx, tag); !errors.Is(err, ErrLocalOCRFailure) {
		t.Fatalf("err = %v, want ErrLocalOCRFailure", err)
	}
}
