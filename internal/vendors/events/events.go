// Package events publishes vendor lifecycle notifications. Publishing is
// best-effort: callers log failures and carry on.
package events

import (
	"context"
	"log/slog"
	"time"
)

// Type names a lifecycle event.
type Type string

const (
	TypeVendorCreated        Type = "vendor.created"
	TypeVendorCreationFailed Type = "vendor.creation_failed"
)

// Event is emitted after a processing record reaches a terminal state.
type Event struct {
	Type         Type      `json:"type"`
	ProcessingID string    `json:"processing_id"`
	VendorID     string    `json:"vendor_id,omitempty"`
	Registration string    `json:"registration,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the structured log. Used when no broker is
// configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) error {
	p.logger.InfoContext(ctx, "vendor event",
		"type", string(e.Type),
		"processing_id", e.ProcessingID,
		"vendor_id", e.VendorID,
		"registration", e.Registration,
		"reason", e.Reason,
	)
	return nil
}
