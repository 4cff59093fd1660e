package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pricetag-ocr/constants"
	"github.com/joseph-ayodele/pricetag-ocr/internal/common"
	"github.com/joseph-ayodele/pricetag-ocr/internal/extract"
	"github.com/joseph-ayodele/pricetag-ocr/internal/repository"
	"github.com/joseph-ayodele/pricetag-ocr/internal/service"
	"github.com/joseph-ayodele/pricetag-ocr/internal/settings"
)

type textRecognizer struct {
	byPath map[string][]string
}

func (r textRecognizer) Available() error { return nil }
func (r textRecognizer) Recognize(_ context.Context, path string) ([]string, error) {
	frags, ok := r.byPath[path]
	if !ok {
		return nil, errors.New("unreadable image")
	}
	return frags, nil
}

func setup(t *testing.T) (*service.OCRService, repository.ScanRepository) {
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
	scans := repository.NewScanRepository(db, nil)

	prefs := settings.NewPreferences(settings.NewMemoryStore(), nil)
	if err := prefs.SetUseLocalOCR(ctx, true); err != nil {
		t.Fatal(err)
	}
	rec := textRecognizer{byPath: map[string][]string{
		"milk.jpg":  {"Whole Milk,", "$2.50"},
		"bread.jpg": {"Rye Bread,", "$3.00"},
	}}
	return service.NewOCRService(prefs, rec, nil, scans, nil), scans
}

func TestScanQueueProcessesSubmittedScans(t *testing.T) {
	ctx := context.Background()
	svc, scans := setup(t)
	q := NewScanQueue(svc, scans, nil, WithWorkers(2), WithQueueSize(4), WithProcessTimeout(time.Minute))

	paths := []string{"milk.jpg", "bread.jpg", "broken.jpg"}
	ids := make([]uuid.UUID, len(paths))
	for i, p := range paths {
		id, err := q.Submit(ctx, extract.Image{Path: p})
		if err != nil {
			t.Fatalf("Submit(%s): %v", p, err)
		}
		ids[i] = id
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)

	wantStatus := []constants.ScanStatus{constants.ScanStatusDone, constants.ScanStatusDone, constants.ScanStatusFailed}
	wantName := []string{"Whole Milk", "Rye Bread", ""}
	for i, id := range ids {
		row, err := scans.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID(%s): %v", paths[i], err)
		}
		if row.Status != wantStatus[i] || row.Name != wantName[i] {
			t.Errorf("%s: status %s name %q; want %s %q", paths[i], row.Status, row.Name, wantStatus[i], wantName[i])
		}
	}
}

func TestEnqueueAfterShutdown(t *testing.T) {
	ctx := context.Background()
	svc, scans := setup(t)
	q := NewScanQueue(svc, scans, nil, WithWorkers(1))
	q.Shutdown(ctx)
	q.Shutdown(ctx) // idempotent

	if err := q.Enqueue(ctx, Job{ScanID: uuid.New()}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("Enqueue err = %v, want ErrQueueClosed", err)
	}
	if _, err := q.Submit(ctx, extract.Image{Path: "milk.jpg"}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("Submit err = %v, want ErrQueueClosed", err)
	}
}

type blockingAnalyzer struct {
	release chan struct{}
	mu      sync.Mutex
	seen    []uuid.UUID
}

func (b *blockingAnalyzer) Analyze(ctx context.Context, _ extract.Image) (service.Result, error) {
	<-b.release
	id, _ := common.ScanIDFromContext(ctx)
	b.mu.Lock()
	b.seen = append(b.seen, id)
	b.mu.Unlock()
	return service.Result{}, nil
}

func TestEnqueueBackpressureHonoursContext(t *testing.T) {
	b := &blockingAnalyzer{release: make(chan struct{})}
	q := NewScanQueue(b, nil, nil, WithWorkers(1), WithQueueSize(1))

	bg := context.Background()
	first, second := Job{ScanID: uuid.New()}, Job{ScanID: uuid.New()}
	if err := q.Enqueue(bg, first); err != nil {
		t.Fatal(err)
	}
	// wait until the worker holds the first job so the buffer slot is free
	deadline := time.Now().Add(5 * time.Second)
	for len(q.ch) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := q.Enqueue(bg, second); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(bg, 50*time.Millisecond)
	defer cancel()
	if err := q.Enqueue(ctx, Job{ScanID: uuid.New()}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Enqueue on full queue err = %v, want DeadlineExceeded", err)
	}

	close(b.release)
	q.Shutdown(bg)
	if len(b.seen) != 2 || b.seen[0] != first.ScanID || b.seen[1] != second.ScanID {
		t.Fatalf("processed %v, want [%v %v]", b.seen, first.ScanID, second.ScanID)
	}
}
