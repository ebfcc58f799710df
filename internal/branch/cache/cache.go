// Package cache stores branch lookups for a bounded time. Entries may record
// that a branch is absent so repeated misses stay cheap.
package cache

import (
	"context"
	"errors"

	"roster/internal/branch/models"
	"roster/pkg/domain"
)

// ErrMiss is returned when no fresh entry exists.
var ErrMiss = errors.New("branch cache miss")

// Lookup is a cached FindByID result. A nil Branch records that the branch
// does not exist.
type Lookup struct {
	Branch *models.Branch `json:"branch"`
}

// Store is implemented by InMemory and Redis.
type Store interface {
	GetBranch(ctx context.Context, id domain.BranchID) (Lookup, error)
	SetBranch(ctx context.Context, id domain.BranchID, lookup Lookup) error
	GetActive(ctx context.Context) ([]models.Branch, error)
	SetActive(ctx context.Context, branches []models.Branch) error
}
