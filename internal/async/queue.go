package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pricetag-ocr/internal/extract"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("scan queue is shut down")

// Job is one image waiting to be analyzed under a pre-created scan row.
type Job struct {
	ScanID      uuid.UUID
	Image       extract.Image
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
