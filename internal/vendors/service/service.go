// Package service accepts vendor-creation submissions and runs the creation
// pipeline that turns them into vendors.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	branchmodels "roster/internal/branch/models"
	"roster/internal/vendors/events"
	"roster/internal/vendors/metrics"
	"roster/internal/vendors/models"
	"roster/internal/vendors/worker"
	"roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/sentinel"
	"roster/pkg/requestcontext"
)

type ProcessingStore interface {
	FindByID(ctx context.Context, id domain.ProcessingID) (*models.ProcessingRecord, error)
	Save(ctx context.Context, record *models.ProcessingRecord) error
}

type VendorStore interface {
	ExistsByDocument(ctx context.Context, document string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, vendor *models.Vendor) error
	FindByID(ctx context.Context, id domain.VendorID) (*models.Vendor, error)
}

type BranchDirectory interface {
	FindByID(ctx context.Context, id domain.BranchID) (*branchmodels.Branch, error)
	IsActive(ctx context.Context, id domain.BranchID) (bool, error)
	ListActive(ctx context.Context) ([]branchmodels.Branch, error)
}

type Allocator interface {
	Next(ctx context.Context) (int64, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Dispatcher interface {
	Enqueue(ctx context.Context, job worker.Job) error
}

type Executor interface {
	Execute(ctx context.Context, id domain.ProcessingID, req models.CreateVendorRequest) error
}

type options struct {
	logger        *slog.Logger
	metrics       *metrics.Metrics
	publisher     EventPublisher
	tracer        trace.Tracer
	now           func() time.Time
	branchTimeout time.Duration
}

// Option configures a Service or Pipeline.
type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithEventPublisher(p EventPublisher) Option {
	return func(o *options) { o.publisher = p }
}

func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithClock overrides time.Now for record and vendor timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithBranchTimeout bounds each branch directory call made by the pipeline.
func WithBranchTimeout(d time.Duration) Option {
	return func(o *options) { o.branchTimeout = d }
}

const defaultBranchTimeout = 2 * time.Second

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer("roster/internal/vendors/service")
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.branchTimeout <= 0 {
		o.branchTimeout = defaultBranchTimeout
	}
	return o
}

// Service is the submission-side API: it records requests, hands them to the
// dispatcher and answers status queries.
type Service struct {
	options
	processing ProcessingStore
	vendors    VendorStore
	branches   BranchDirectory
	pipeline   Executor
	dispatcher Dispatcher
}

// New constructs a Service.
func New(processing ProcessingStore, vendors VendorStore, branches BranchDirectory,
	pipeline Executor, dispatcher Dispatcher, opts ...Option) (*Service, error) {
	switch {
	case processing == nil:
		return nil, errors.New("processing store is required")
	case vendors == nil:
		return nil, errors.New("vendor store is required")
	case branches == nil:
		return nil, errors.New("branch directory is required")
	case pipeline == nil:
		return nil, errors.New("pipeline is required")
	case dispatcher == nil:
		return nil, errors.New("dispatcher is required")
	}
	return &Service{
		options:    buildOptions(opts),
		processing: processing,
		vendors:    vendors,
		branches:   branches,
		pipeline:   pipeline,
		dispatcher: dispatcher,
	}, nil
}

// Submit records a PENDING processing record for req and queues it for the
// pipeline. Only the request shape is checked here; business rules run in
// the pipeline and surface on the record.
func (s *Service) Submit(ctx context.Context, req models.CreateVendorRequest) (*models.ProcessingRecord, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.metrics.IncSubmission("rejected")
		return nil, err
	}

	record, err := models.NewProcessingRecord(domain.NewProcessingID(), requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create processing record")
	}
	if err := s.processing.Save(ctx, record); err != nil {
		s.metrics.IncSubmission("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save processing record")
	}

	id := record.ID
	requestID := requestcontext.RequestID(ctx)
	job := worker.Job{
		ID: id.String(),
		Run: func(jobCtx context.Context) error {
			if requestID != "" {
				jobCtx = requestcontext.WithRequestID(jobCtx, requestID)
			}
			return s.pipeline.Execute(jobCtx, id, req)
		},
	}
	if err := s.dispatcher.Enqueue(ctx, job); err != nil {
		s.metrics.IncSubmission("unavailable")
		s.logger.WarnContext(ctx, "vendor submission not queued",
			"processing_id", id.String(),
			"request_id", requestID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "vendor processing is busy; try again later")
	}

	s.metrics.IncSubmission("accepted")
	s.logger.InfoContext(ctx, "vendor submission accepted",
		"processing_id", id.String(),
		"request_id", requestID,
		"contract_type", req.ContractType,
		"branch_id", req.BranchID,
	)
	return record, nil
}

// GetProcessing returns the current state of a submission.
func (s *Service) GetProcessing(ctx context.Context, id domain.ProcessingID) (*models.ProcessingRecord, error) {
	record, err := s.processing.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "processing not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load processing")
	}
	return record, nil
}

func (s *Service) GetVendor(ctx context.Context, id domain.VendorID) (*models.Vendor, error) {
	vendor, err := s.vendors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "vendor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vendor")
	}
	return vendor, nil
}

func (s *Service) ListActiveBranches(ctx context.Context) ([]branchmodels.Branch, error) {
	branches, err := s.branches.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "branch directory unavailable")
	}
	return branches, nil
}
