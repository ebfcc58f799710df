package models

import (
	"net/mail"
	"strconv"
	"strings"
	"time"

	"roster/pkg/document"
	"roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
)

const (
	maxNameLength  = 200
	maxEmailLength = 254
	birthDateFmt   = "2006-01-02"
)

// CreateVendorRequest is the input of a vendor-creation submission.
type CreateVendorRequest struct {
	Name         string `json:"name"`
	Document     string `json:"document"`
	Email        string `json:"email"`
	ContractType string `json:"contract_type"`
	BranchID     string `json:"branch_id"`
	BirthDate    string `json:"birth_date,omitempty"`
}

// Normalize trims free-text fields and canonicalises the email and contract
// type. The document is kept as submitted so formatting can be echoed back.
func (r *CreateVendorRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Document = strings.TrimSpace(r.Document)
	r.Email = NormalizeEmail(r.Email)
	r.ContractType = strings.ToUpper(strings.TrimSpace(r.ContractType))
	r.BranchID = strings.TrimSpace(r.BranchID)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
}

// Validate checks the request shape: required fields, formats and the
// document length for the contract type. Checksums are verified separately.
func (r CreateVendorRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return validation("name is required")
	}
	if len(r.Name) > maxNameLength {
		return validation("name must be 200 characters or less")
	}
	email := NormalizeEmail(r.Email)
	if email == "" {
		return validation("email is required")
	}
	if len(email) > maxEmailLength {
		return validation("email is too long")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return validation("email is invalid")
	}
	contract, err := domain.ParseContractType(r.ContractType)
	if err != nil {
		return validation(dErrors.PublicMessage(err))
	}
	if _, err := domain.ParseBranchID(r.BranchID); err != nil {
		return validation(dErrors.PublicMessage(err))
	}
	digits := document.Normalize(r.Document)
	if digits == "" {
		return validation("document is required")
	}
	kind := contract.DocumentKind()
	if len(digits) != kind.Length() {
		return validation(kind.String() + " must have " + strconv.Itoa(kind.Length()) + " digits")
	}
	if _, err := r.ParsedBirthDate(); err != nil {
		return err
	}
	return nil
}

// ParsedBirthDate returns the optional birth date. Dates in the future are
// rejected.
func (r CreateVendorRequest) ParsedBirthDate() (*time.Time, error) {
	raw := strings.TrimSpace(r.BirthDate)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(birthDateFmt, raw)
	if err != nil {
		return nil, validation("birth_date must use the YYYY-MM-DD format")
	}
	if t.After(time.Now()) {
		return nil, validation("birth_date cannot be in the future")
	}
	return &t, nil
}

func validation(msg string) error {
	return dErrors.New(dErrors.CodeValidation, msg)
}
