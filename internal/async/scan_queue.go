package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pricetag-ocr/constants"
	"github.com/joseph-ayodele/pricetag-ocr/internal/common"
	"github.com/joseph-ayodele/pricetag-ocr/internal/extract"
	"github.com/joseph-ayodele/pricetag-ocr/internal/repository"
	"github.com/joseph-ayodele/pricetag-ocr/internal/service"
)

// Analyzer runs one scan. The scan id pinned in ctx tells it which row to finish.
type Analyzer interface {
	Analyze(ctx context.Context, img extract.Image) (service.Result, error)
}

type ScanQueue struct {
	svc     Analyzer
	scans   repository.ScanRepository
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*ScanQueue)

func WithWorkers(n int) Option {
	return func(q *ScanQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ScanQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ScanQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewScanQueue(svc Analyzer, scans repository.ScanRepository, logger *slog.Logger, opts ...Option) *ScanQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ScanQueue{
		svc:     svc,
		scans:   scans,
		logger:  logger,
		workers: 4,
		timeout: 2 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ScanQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("queue.worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.process(workerID, job)
				}
				q.logger.Info("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ScanQueue) process(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	ctx = common.WithScanID(common.WithRequestID(ctx, job.TraceID), job.ScanID)

	res, err := q.svc.Analyze(ctx, job.Image)
	if err != nil {
		q.logger.Error("queue.scan.failed", "worker_id", workerID, "scan_id", job.ScanID, "req_id", job.TraceID, "error", err)
		return
	}
	q.logger.Info("queue.scan.ok",
		"worker_id", workerID,
		"scan_id", job.ScanID,
		"req_id", job.TraceID,
		"source", res.Source,
		"wait_ms", time.Since(job.SubmittedAt).Milliseconds(),
	)
}

// Submit records a PENDING scan and queues it. The returned id can be polled.
func (q *ScanQueue) Submit(ctx context.Context, img extract.Image) (uuid.UUID, error) {
	rec, err := q.scans.Create(ctx, repository.ScanRecord{
		ImagePath: img.Path,
		Status:    constants.ScanStatusPending,
	})
	if err != nil {
		return uuid.Nil, err
	}
	job := Job{
		ScanID:      rec.ID,
		Image:       img,
		SubmittedAt: time.Now(),
		TraceID:     common.RequestIDFromContext(ctx),
	}
	if err := q.Enqueue(ctx, job); err != nil {
		if mErr := q.scans.MarkFailed(context.WithoutCancel(ctx), rec.ID, err.Error()); mErr != nil {
			q.logger.Warn("queue.mark_failed.failed", "scan_id", rec.ID, "error", mErr)
		}
		return uuid.Nil, err
	}
	return rec.ID, nil
}

// Enqueue blocks while the queue is full until ctx is done.
func (q *ScanQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "scan_id", job.ScanID)
		return ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.logger.Info("queue.enqueue.ok", "scan_id", job.ScanID)
		return nil
	default:
	}
	q.logger.Warn("queue.full.backpressure", "scan_id", job.ScanID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ScanQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.drained")
	}
}
