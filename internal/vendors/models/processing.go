package models

import (
	"time"

	"roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
)

// ProcessingStatus is the lifecycle state of a vendor-creation request.
type ProcessingStatus string

const (
	StatusPending   ProcessingStatus = "PENDING"
	StatusRunning   ProcessingStatus = "RUNNING"
	StatusConcluded ProcessingStatus = "CONCLUDED"
	StatusError     ProcessingStatus = "ERROR"
)

// ParseProcessingStatus validates a persisted status value.
func ParseProcessingStatus(s string) (ProcessingStatus, error) {
	st := ProcessingStatus(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid processing status: "+s)
	}
	return st, nil
}

func (s ProcessingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusConcluded, StatusError:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s ProcessingStatus) IsTerminal() bool {
	return s == StatusConcluded || s == StatusError
}

// CanTransitionTo encodes PENDING → RUNNING → (CONCLUDED | ERROR).
func (s ProcessingStatus) CanTransitionTo(next ProcessingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusRunning
	case StatusRunning:
		return next == StatusConcluded || next == StatusError
	}
	return false
}

func (s ProcessingStatus) String() string {
	return string(s)
}

// ProcessingRecord tracks one asynchronous vendor-creation request.
//
// Invariants:
//   - Status only moves forward; a terminal status is reached at most once
//   - VendorID is set iff Status is CONCLUDED
//   - Message is set only when Status is ERROR
type ProcessingRecord struct {
	ID         domain.ProcessingID `json:"id"`
	Status     ProcessingStatus    `json:"status"`
	VendorID   *domain.VendorID    `json:"vendor_id,omitempty"`
	Message    string              `json:"message,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
	StartedAt  *time.Time          `json:"started_at,omitempty"`
	FinishedAt *time.Time          `json:"finished_at,omitempty"`
}

// NewProcessingRecord creates a PENDING record.
func NewProcessingRecord(id domain.ProcessingID, now time.Time) (*ProcessingRecord, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "processing id cannot be nil")
	}
	return &ProcessingRecord{
		ID:        id,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *ProcessingRecord) transition(next ProcessingStatus) error {
	if !r.Status.CanTransitionTo(next) {
		return dErrors.New(dErrors.CodeInvariantViolation,
			"processing cannot move from "+r.Status.String()+" to "+next.String())
	}
	return nil
}

// MarkRunning moves a PENDING record to RUNNING.
func (r *ProcessingRecord) MarkRunning(now time.Time) error {
	if err := r.transition(StatusRunning); err != nil {
		return err
	}
	r.Status = StatusRunning
	r.StartedAt = &now
	r.UpdatedAt = now
	return nil
}

// MarkConcluded moves a RUNNING record to CONCLUDED, referencing the vendor
// it produced.
func (r *ProcessingRecord) MarkConcluded(vendorID domain.VendorID, now time.Time) error {
	if vendorID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "concluded processing requires a vendor id")
	}
	if err := r.transition(StatusConcluded); err != nil {
		return err
	}
	r.Status = StatusConcluded
	r.VendorID = &vendorID
	r.Message = ""
	r.FinishedAt = &now
	r.UpdatedAt = now
	return nil
}

// MarkError moves a RUNNING record to ERROR with a user-facing message.
func (r *ProcessingRecord) MarkError(message string, now time.Time) error {
	if err := r.transition(StatusError); err != nil {
		return err
	}
	if message == "" {
		message = "vendor creation failed"
	}
	r.Status = StatusError
	r.Message = message
	r.FinishedAt = &now
	r.UpdatedAt = now
	return nil
}

// Clone returns a deep copy, so stores never share pointers with callers.
func (r *ProcessingRecord) Clone() *ProcessingRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.VendorID != nil {
		v := *r.VendorID
		c.VendorID = &v
	}
	if r.StartedAt != nil {
		t := *r.StartedAt
		c.StartedAt = &t
	}
	if r.FinishedAt != nil {
		t := *r.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}
