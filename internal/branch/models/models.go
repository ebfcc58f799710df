package models

import (
	"time"

	"roster/pkg/domain"
)

// Kind distinguishes the head office from ordinary branches.
type Kind string

const (
	KindHeadOffice Kind = "HEAD_OFFICE"
	KindBranch     Kind = "BRANCH"
)

// Branch is a read-only view of an entry in the external branch registry.
type Branch struct {
	ID           domain.BranchID `json:"id"`
	Name         string          `json:"name"`
	CNPJ         string          `json:"cnpj"`
	City         string          `json:"city"`
	State        string          `json:"state"`
	Kind         Kind            `json:"kind"`
	Active       bool            `json:"active"`
	RegisteredAt time.Time       `json:"registered_at"`
}
