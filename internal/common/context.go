package common

import (
	"context"

	"github.com/google/uuid"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyScanID    contextKey = "scan_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context, minting one if absent
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok && requestID != "" {
		return requestID
	}
	return uuid.New().String()
}

// WithScanID pins the scan row an orchestrated call should record into.
func WithScanID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextKeyScanID, id)
}

// ScanIDFromContext returns the pinned scan ID, if any
func ScanIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ContextKeyScanID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
