package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"roster/internal/vendors/events"
	"roster/internal/vendors/models"
	"roster/internal/vendors/sequence"
	vendorstore "roster/internal/vendors/store/vendors"
	"roster/pkg/document"
	"roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/sentinel"
	"roster/pkg/requestcontext"
)

const publishTimeout = 5 * time.Second

// Pipeline turns a queued submission into a vendor. The outcome is only
// observable on the processing record: once the record is RUNNING, every
// failure is written to it as ERROR and Execute returns nil.
type Pipeline struct {
	options
	processing ProcessingStore
	vendors    VendorStore
	branches   BranchDirectory
	allocator  Allocator
	tx         StoreTx
}

// NewPipeline constructs a Pipeline.
func NewPipeline(processing ProcessingStore, vendors VendorStore, branches BranchDirectory,
	allocator Allocator, storeTx StoreTx, opts ...Option) (*Pipeline, error) {
	switch {
	case processing == nil:
		return nil, errors.New("processing store is required")
	case vendors == nil:
		return nil, errors.New("vendor store is required")
	case branches == nil:
		return nil, errors.New("branch directory is required")
	case allocator == nil:
		return nil, errors.New("allocator is required")
	case storeTx == nil:
		return nil, errors.New("store transaction is required")
	}
	return &Pipeline{
		options:    buildOptions(opts),
		processing: processing,
		vendors:    vendors,
		branches:   branches,
		allocator:  allocator,
		tx:         storeTx,
	}, nil
}

// Execute processes the submission recorded under id.
//
// Errors are returned only when no record can be updated: the record does
// not exist (CodeNotFound) or could not be loaded (CodeInternal). A record
// that has already left PENDING is skipped, so redelivery is harmless.
func (p *Pipeline) Execute(ctx context.Context, id domain.ProcessingID, req models.CreateVendorRequest) error {
	ctx, span := p.tracer.Start(ctx, "vendor.pipeline.execute",
		trace.WithAttributes(attribute.String("processing.id", id.String())))
	defer span.End()
	start := time.Now()

	record, err := p.processing.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeNotFound, "processing record not found")
		} else {
			err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to load processing record")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, dErrors.PublicMessage(err))
		return err
	}
	if record.Status != models.StatusPending {
		p.logger.WarnContext(ctx, "processing already handled, skipping",
			"processing_id", id.String(),
			"status", record.Status.String(),
		)
		return nil
	}

	// From here on the record must reach a terminal state even if the caller
	// goes away.
	ctx = context.WithoutCancel(ctx)

	if err := record.MarkRunning(p.now()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to start processing")
	}
	if err := p.processing.Save(ctx, record); err != nil {
		return p.fail(ctx, span, record, start, dErrors.Wrap(err, dErrors.CodeInternal, "failed to start processing"))
	}

	req.Normalize()
	if err := p.validate(ctx, req); err != nil {
		return p.fail(ctx, span, record, start, err)
	}

	vendor, err := p.create(ctx, record, req)
	if err != nil {
		return p.fail(ctx, span, record, start, err)
	}

	span.SetAttributes(
		attribute.String("vendor.id", vendor.ID.String()),
		attribute.String("vendor.registration", vendor.Registration),
	)
	p.metrics.ObserveOutcome(string(models.StatusConcluded), "", start)
	p.logger.InfoContext(ctx, "vendor created",
		"processing_id", id.String(),
		"vendor_id", vendor.ID.String(),
		"registration", vendor.Registration,
		"request_id", requestcontext.RequestID(ctx),
	)
	p.publish(ctx, events.Event{
		Type:         events.TypeVendorCreated,
		ProcessingID: id.String(),
		VendorID:     vendor.ID.String(),
		Registration: vendor.Registration,
	})
	return nil
}

// validate applies the business rules that do not consume a registration
// number: request shape, active branch, uniqueness and document checksum.
func (p *Pipeline) validate(ctx context.Context, req models.CreateVendorRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	branchID := domain.BranchID(req.BranchID)
	active, err := p.isBranchActive(ctx, branchID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "branch directory unavailable")
	}
	if !active {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("branch %s does not exist or is inactive", branchID))
	}

	digits := document.Normalize(req.Document)
	taken, err := p.vendors.ExistsByDocument(ctx, digits)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check document")
	}
	if taken {
		return dErrors.New(dErrors.CodeConflict, "document already registered")
	}

	taken, err = p.vendors.ExistsByEmail(ctx, models.NormalizeEmail(req.Email))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check email")
	}
	if taken {
		return dErrors.New(dErrors.CodeConflict, "email already registered")
	}

	contract, err := domain.ParseContractType(req.ContractType)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, dErrors.PublicMessage(err))
	}
	if kind := contract.DocumentKind(); !document.IsValid(digits, kind) {
		return models.InvalidDocumentError(kind)
	}
	return nil
}

// create allocates a registration number and persists the vendor together
// with the CONCLUDED record. Either both writes land or neither does.
func (p *Pipeline) create(ctx context.Context, record *models.ProcessingRecord, req models.CreateVendorRequest) (*models.Vendor, error) {
	if err := p.resolveBranch(ctx, domain.BranchID(req.BranchID)); err != nil {
		return nil, err
	}

	var vendor *models.Vendor
	err := p.tx.RunInTx(ctx, func(ctx context.Context) error {
		seq, err := p.allocator.Next(ctx)
		if err != nil {
			if errors.Is(err, sequence.ErrExhausted) {
				return dErrors.Wrap(err, dErrors.CodeInternal, "registration numbers exhausted")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate registration number")
		}

		now := p.now()
		v, err := models.NewVendor(domain.NewVendorID(), seq, req, now)
		if err != nil {
			return err
		}
		if err := p.vendors.Save(ctx, v); err != nil {
			return translateSaveError(err)
		}

		next := record.Clone()
		if err := next.MarkConcluded(v.ID, now); err != nil {
			return err
		}
		if err := p.processing.Save(ctx, next); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to complete processing")
		}
		vendor = v
		return nil
	})
	if err != nil {
		var coded *dErrors.Error
		if !errors.As(err, &coded) {
			err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist vendor")
		}
		return nil, err
	}
	return vendor, nil
}

func (p *Pipeline) isBranchActive(ctx context.Context, id domain.BranchID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, p.branchTimeout)
	defer cancel()
	return p.branches.IsActive(ctx, id)
}

func (p *Pipeline) resolveBranch(ctx context.Context, id domain.BranchID) error {
	ctx, cancel := context.WithTimeout(ctx, p.branchTimeout)
	defer cancel()
	b, err := p.branches.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("branch %s not found", id))
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "branch directory unavailable")
	}
	if !b.Active {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("branch %s does not exist or is inactive", id))
	}
	return nil
}

func translateSaveError(err error) error {
	switch {
	case errors.Is(err, vendorstore.ErrDocumentTaken):
		return dErrors.Wrap(err, dErrors.CodeConflict, "document already registered")
	case errors.Is(err, vendorstore.ErrEmailTaken):
		return dErrors.Wrap(err, dErrors.CodeConflict, "email already registered")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeConflict, "vendor already registered")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save vendor")
}

// fail records cause on the processing record. The write is best-effort:
// if it fails too, the record is left RUNNING and the failure is logged.
func (p *Pipeline) fail(ctx context.Context, span trace.Span, record *models.ProcessingRecord, start time.Time, cause error) error {
	code := dErrors.CodeOf(cause)
	message := dErrors.PublicMessage(cause)
	span.RecordError(cause)
	span.SetStatus(codes.Error, message)

	attrs := []any{
		"processing_id", record.ID.String(),
		"code", string(code),
		"message", message,
		"request_id", requestcontext.RequestID(ctx),
	}
	if code == dErrors.CodeInternal || code == dErrors.CodeUnavailable {
		p.logger.ErrorContext(ctx, "vendor creation failed", append(attrs, "error", cause)...)
	} else {
		p.logger.InfoContext(ctx, "vendor creation rejected", attrs...)
	}

	if err := record.MarkError(message, p.now()); err != nil {
		p.logger.ErrorContext(ctx, "cannot mark processing as failed",
			"processing_id", record.ID.String(),
			"status", record.Status.String(),
			"error", err,
		)
		return nil
	}
	if err := p.processing.Save(ctx, record); err != nil {
		p.logger.ErrorContext(ctx, "failed to persist processing error",
			"processing_id", record.ID.String(),
			"error", err,
		)
		return nil
	}

	p.metrics.ObserveOutcome(string(models.StatusError), string(code), start)
	p.publish(ctx, events.Event{
		Type:         events.TypeVendorCreationFailed,
		ProcessingID: record.ID.String(),
		Reason:       message,
	})
	return nil
}

func (p *Pipeline) publish(ctx context.Context, e events.Event) {
	if p.publisher == nil {
		return
	}
	e.OccurredAt = p.now()
	e.RequestID = requestcontext.RequestID(ctx)
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.publisher.Publish(ctx, e); err != nil {
		p.metrics.IncEventFailed()
		p.logger.WarnContext(ctx, "failed to publish vendor event",
			"type", string(e.Type),
			"processing_id", e.ProcessingID,
			"error", err,
		)
	}
}
