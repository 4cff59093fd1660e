package batch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/pricetag-ocr/internal/extract"
	"github.com/joseph-ayodele/pricetag-ocr/internal/service"
	"github.com/joseph-ayodele/pricetag-ocr/internal/transform"
)

func fakeAnalyze(ctx context.Context, img extract.Image) (service.Result, error) {
	if strings.Contains(img.Path, "bad") {
		return service.Result{}, errors.New("tesseract: exit status 1")
	}
	r := transform.Analyze(strings.TrimSuffix(img.Path, ".jpg"))
	conf := r.Confidence
	return service.Result{Item: r.Item, OCRText: img.Path, Confidence: &conf}, nil
}

func TestRunKeepsOrderAndIsolatesFailures(t *testing.T) {
	paths := []string{"dir/Milk $2.50.jpg", "dir/bad.jpg", "notes.txt", "dir/Bread $3.00.jpg"}
	var calls atomic.Int64
	var (
		mu       sync.Mutex
		lastDone int
	)
	r := NewRunner(func(ctx context.Context, img extract.Image) (service.Result, error) {
		calls.Add(1)
		return fakeAnalyze(ctx, img)
	}, nil, WithConcurrency(2), WithProgress(func(done, total int) {
		if total != len(paths) {
			t.Errorf("progress total = %d", total)
		}
		mu.Lock()
		if done > lastDone {
			lastDone = done
		}
		mu.Unlock()
	}))

	got, err := r.Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != len(paths) {
		t.Fatalf("results = %d, want %d", len(got), len(paths))
	}
	if calls.Load() != 3 {
		t.Fatalf("analyze calls = %d, want 3 (unsupported file skipped)", calls.Load())
	}

	wantFiles := []string{"Milk $2.50.jpg", "bad.jpg", "notes.txt", "Bread $3.00.jpg"}
	for i, w := range wantFiles {
		if got[i].Filename != w || got[i].Path != paths[i] {
			t.Errorf("result %d = %q (%q), want %q", i, got[i].Filename, got[i].Path, w)
		}
	}
	if got[0].Error != "" || got[0].Price != 2.5 || got[0].Confidence == nil {
		t.Errorf("milk = %+v", got[0])
	}
	if got[1].Error == "" || got[1].ProcessingTime != 0 || got[1].Confidence != nil {
		t.Errorf("bad = %+v", got[1])
	}
	if !strings.Contains(got[2].Error, "unsupported") {
		t.Errorf("notes.txt error = %q", got[2].Error)
	}
	if got[3].Price != 3 {
		t.Errorf("bread = %+v", got[3])
	}
	if lastDone != len(paths) {
		t.Errorf("last progress = %d, want %d", lastDone, len(paths))
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner(fakeAnalyze, nil)
	if _, err := r.Run(ctx, []string{"a.jpg", "b.jpg"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]ItemResult{
		{ProcessingTime: 100 * time.Millisecond},
		{ProcessingTime: 300 * time.Millisecond},
		{Error: "boom"},
		{ProcessingTime: 200 * time.Millisecond},
	})
	want := Summary{Total: 4, Failed: 1, TotalTime: 600 * time.Millisecond, Average: 150 * time.Millisecond}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Summarize mismatch (-want +got):\n%s", diff)
	}
	if got := Summarize(nil); got != (Summary{}) {
		t.Fatalf("Summarize(nil) = %+v", got)
	}
}

func sample() []ItemResult {
	conf := 0.875
	return []ItemResult{
		{
			Filename:       "tag1.jpg",
			OCRText:        `Organic Bananas, "Fresh" 2 lb $3.99`,
			Name:           "Organic Bananas",
			Brand:          "Fresh Farms",
			Price:          3.99,
			Weight:         32,
			Confidence:     &conf,
			ProcessingTime: 1234 * time.Millisecond,
		},
		{Filename: "tag2.jpg", Error: "remote analysis failed: status 503"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "Filename,OCR Text,Extracted Name,Extracted Brand,Extracted Price,Extracted Weight,Confidence,Processing Time (ms),Error\n" +
		`tag1.jpg,"Organic Bananas, ""Fresh"" 2 lb $3.99",Organic Bananas,Fresh Farms,3.99,32,87.5,1234,` + "\n" +
		"tag2.jpg,,,,0,0,0.0,0,remote analysis failed: status 503\n"
	if got := buf.String(); got != want {
		t.Fatalf("WriteCSV =\n%s\nwant\n%s", got, want)
	}
}

func TestExportXLSX(t *testing.T) {
	b, err := ExportXLSX(sample())
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Scans")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if diff := cmp.Diff(columns, rows[0]); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	if rows[1][0] != "tag1.jpg" || rows[1][2] != "Organic Bananas" || rows[1][4] != "3.99" || rows[1][7] != "1234" {
		t.Fatalf("row 1 = %q", rows[1])
	}
	if rows[2][8] != "remote analysis failed: status 503" {
		t.Fatalf("row 2 = %q", rows[2])
	}
}
