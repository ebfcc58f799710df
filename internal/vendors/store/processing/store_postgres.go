package processing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"roster/internal/vendors/models"
	"roster/pkg/domain"
	"roster/pkg/platform/sentinel"
	"roster/pkg/platform/tx"
)

// PostgresStore persists processing records in PostgreSQL. Calls join the
// transaction carried by ctx, if any.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save upserts r. A record already in a terminal status is never
// overwritten; such a write fails with sentinel.ErrInvalidState.
func (s *PostgresStore) Save(ctx context.Context, r *models.ProcessingRecord) error {
	if r == nil {
		return nil
	}
	var vendorID sql.NullString
	if r.VendorID != nil {
		vendorID = sql.NullString{String: r.VendorID.String(), Valid: true}
	}
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO vendor_processing (
			id, status, vendor_id, message, created_at, updated_at, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			vendor_id = EXCLUDED.vendor_id,
			message = EXCLUDED.message,
			updated_at = EXCLUDED.updated_at,
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at
		WHERE vendor_processing.status NOT IN ('CONCLUDED', 'ERROR')`,
		r.ID.String(), string(r.Status), vendorID, r.Message,
		r.CreatedAt, r.UpdatedAt, nullTime(r.StartedAt), nullTime(r.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("save processing record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save processing record: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("save processing record %s: already finished: %w", r.ID, sentinel.ErrInvalidState)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ProcessingID) (*models.ProcessingRecord, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, status, vendor_id, message, created_at, updated_at, started_at, finished_at
		FROM vendor_processing WHERE id = $1`, id.String())

	var (
		rawID      string
		status     string
		vendorID   sql.NullString
		startedAt  sql.NullTime
		finishedAt sql.NullTime
		r          models.ProcessingRecord
	)
	err := row.Scan(&rawID, &status, &vendorID, &r.Message, &r.CreatedAt, &r.UpdatedAt, &startedAt, &finishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find processing record by id: %w", err)
	}

	parsed, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse processing id: %w", err)
	}
	r.ID = domain.ProcessingID(parsed)
	if r.Status, err = models.ParseProcessingStatus(status); err != nil {
		return nil, fmt.Errorf("find processing record by id: %w", err)
	}
	if vendorID.Valid {
		v, err := uuid.Parse(vendorID.String)
		if err != nil {
			return nil, fmt.Errorf("parse vendor id: %w", err)
		}
		vid := domain.VendorID(v)
		r.VendorID = &vid
	}
	if startedAt.Valid {
		r.StartedAt = &startedAt.Time
	}
	if finishedAt.Valid {
		r.FinishedAt = &finishedAt.Time
	}
	return &r, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
