package vendors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"roster/internal/platform/postgres"
	"roster/internal/vendors/models"
	"roster/pkg/document"
	"roster/pkg/domain"
	"roster/pkg/platform/sentinel"
	"roster/pkg/platform/tx"
)

// PostgresStore persists vendors in PostgreSQL. Calls join the transaction
// carried by ctx, if any.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var constraintErrors = map[string]error{
	"vendors_pkey":             ErrIDTaken,
	"vendors_document_key":     ErrDocumentTaken,
	"vendors_email_key":        ErrEmailTaken,
	"vendors_registration_key": ErrRegistrationTaken,
}

func (s *PostgresStore) Save(ctx context.Context, v *models.Vendor) error {
	if v == nil {
		return nil
	}
	var birthDate sql.NullTime
	if v.BirthDate != nil {
		birthDate = sql.NullTime{Time: *v.BirthDate, Valid: true}
	}
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO vendors (
			id, registration, name, document, document_kind, contract_type,
			email, branch_id, birth_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		v.ID.String(), v.Registration, v.Name, v.Document, string(v.DocumentKind),
		string(v.ContractType), v.Email, string(v.BranchID), birthDate, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := postgres.UniqueViolation(err); ok {
			if mapped, known := constraintErrors[constraint]; known {
				return mapped
			}
			return fmt.Errorf("save vendor: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("save vendor: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.VendorID) (*models.Vendor, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, registration, name, document, document_kind, contract_type,
		       email, branch_id, birth_date, created_at, updated_at
		FROM vendors WHERE id = $1`, id.String())

	var (
		rawID     string
		kind      string
		contract  string
		branchID  string
		birthDate sql.NullTime
		v         models.Vendor
	)
	err := row.Scan(&rawID, &v.Registration, &v.Name, &v.Document, &kind, &contract,
		&v.Email, &branchID, &birthDate, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find vendor by id: %w", err)
	}
	parsed, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse vendor id: %w", err)
	}
	v.ID = domain.VendorID(parsed)
	v.DocumentKind = document.Kind(kind)
	v.ContractType = domain.ContractType(contract)
	v.BranchID = domain.BranchID(branchID)
	if birthDate.Valid {
		bd := birthDate.Time.UTC().Truncate(24 * time.Hour)
		v.BirthDate = &bd
	}
	return &v, nil
}

func (s *PostgresStore) ExistsByDocument(ctx context.Context, document string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM vendors WHERE document = $1)`, document, "document")
}

func (s *PostgresStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM vendors WHERE email = $1)`, email, "email")
}

func (s *PostgresStore) exists(ctx context.Context, query, arg, field string) (bool, error) {
	var ok bool
	if err := tx.Executor(ctx, s.db).QueryRowContext(ctx, query, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("check vendor %s: %w", field, err)
	}
	return ok, nil
}
