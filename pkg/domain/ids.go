// Package domain holds the typed primitives shared across roster modules.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "roster/pkg/domain-errors"
)

// VendorID identifies a persisted vendor.
type VendorID uuid.UUID

// ProcessingID identifies a vendor-creation processing record.
type ProcessingID uuid.UUID

// BranchID identifies a branch in the external branch directory. Branch ids
// are opaque strings owned by that directory.
type BranchID string

func (id VendorID) String() string     { return uuid.UUID(id).String() }
func (id ProcessingID) String() string { return uuid.UUID(id).String() }
func (id BranchID) String() string     { return string(id) }

func (id VendorID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ProcessingID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id VendorID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id ProcessingID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *VendorID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *ProcessingID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// NewVendorID returns a random vendor id.
func NewVendorID() VendorID { return VendorID(uuid.New()) }

// NewProcessingID returns a random processing id.
func NewProcessingID() ProcessingID { return ProcessingID(uuid.New()) }

// ParseVendorID parses external input into a VendorID.
func ParseVendorID(s string) (VendorID, error) {
	u, err := parseUUID(s, "vendor")
	return VendorID(u), err
}

// ParseProcessingID parses external input into a ProcessingID.
func ParseProcessingID(s string) (ProcessingID, error) {
	u, err := parseUUID(s, "processing")
	return ProcessingID(u), err
}

// ParseBranchID trims and validates a branch id.
func ParseBranchID(s string) (BranchID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "branch id is required")
	}
	if len(s) > 64 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "branch id is too long")
	}
	return BranchID(s), nil
}

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be nil")
	}
	return u, nil
}
