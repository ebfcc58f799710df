package models

import (
	"fmt"
	"strings"
	"time"

	"roster/pkg/document"
	"roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
)

// Vendor is a registered sales representative.
//
// Invariants:
//   - Document holds digits only and passes the checksum for DocumentKind
//   - DocumentKind matches the contract type's required kind
//   - Registration is "<8-digit sequence>-<contract suffix>"
//   - Email is trimmed and lower-cased
type Vendor struct {
	ID           domain.VendorID     `json:"id"`
	Registration string              `json:"registration"`
	Name         string              `json:"name"`
	Document     string              `json:"document"`
	DocumentKind document.Kind       `json:"document_kind"`
	ContractType domain.ContractType `json:"contract_type"`
	Email        string              `json:"email"`
	BranchID     domain.BranchID     `json:"branch_id"`
	BirthDate    *time.Time          `json:"birth_date,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// RegistrationCode formats a sequence number and contract suffix, e.g.
// 00000001-CLT. Numbers wider than eight digits are not truncated.
func RegistrationCode(seq int64, contract domain.ContractType) string {
	return fmt.Sprintf("%08d-%s", seq, contract.Suffix())
}

// NewVendor builds a vendor from a validated request and an allocated
// sequence number. The document checksum is verified again here so no
// code path can persist an invalid document.
func NewVendor(id domain.VendorID, seq int64, req CreateVendorRequest, now time.Time) (*Vendor, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "vendor id cannot be nil")
	}
	if seq <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "registration sequence must be positive")
	}
	contract, err := domain.ParseContractType(req.ContractType)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, dErrors.PublicMessage(err))
	}
	kind := contract.DocumentKind()
	digits := document.Normalize(req.Document)
	if !document.IsValid(digits, kind) {
		return nil, InvalidDocumentError(kind)
	}
	branchID, err := domain.ParseBranchID(req.BranchID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, dErrors.PublicMessage(err))
	}
	birthDate, err := req.ParsedBirthDate()
	if err != nil {
		return nil, err
	}
	return &Vendor{
		ID:           id,
		Registration: RegistrationCode(seq, contract),
		Name:         strings.TrimSpace(req.Name),
		Document:     digits,
		DocumentKind: kind,
		ContractType: contract,
		Email:        NormalizeEmail(req.Email),
		BranchID:     branchID,
		BirthDate:    birthDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// InvalidDocumentError reports a failed checksum for kind.
func InvalidDocumentError(kind document.Kind) error {
	return dErrors.New(dErrors.CodeValidation, "invalid "+kind.String()+": checksum verification failed")
}

// NormalizeEmail trims and lower-cases an address for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
