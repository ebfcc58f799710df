// Package branch provides read access to the branch registry that vendors
// are attached to. The registry is external; MockDirectory stands in for it
// and CachedDirectory keeps repeated lookups off the slow path.
package branch

import (
	"context"
	"errors"
	"sort"
	"time"

	"roster/internal/branch/models"
	"roster/pkg/domain"
	"roster/pkg/platform/sentinel"
)

// Directory queries the branch registry.
// FindByID returns sentinel.ErrNotFound for unknown branches; IsActive
// reports false for them.
type Directory interface {
	FindByID(ctx context.Context, id domain.BranchID) (*models.Branch, error)
	IsActive(ctx context.Context, id domain.BranchID) (bool, error)
	ListActive(ctx context.Context) ([]models.Branch, error)
}

// Default simulated round-trip latencies.
const (
	DefaultFindLatency = 100 * time.Millisecond
	DefaultListLatency = 150 * time.Millisecond
)

// MockDirectory serves a fixed data set with simulated network latency.
type MockDirectory struct {
	FindLatency time.Duration
	ListLatency time.Duration
	branches    map[domain.BranchID]models.Branch
}

// NewMockDirectory builds a directory over branches, or over the seed data
// when none are given.
func NewMockDirectory(findLatency, listLatency time.Duration, branches ...models.Branch) *MockDirectory {
	if len(branches) == 0 {
		branches = SeedBranches()
	}
	byID := make(map[domain.BranchID]models.Branch, len(branches))
	for _, b := range branches {
		byID[b.ID] = b
	}
	return &MockDirectory{FindLatency: findLatency, ListLatency: listLatency, branches: byID}
}

// SeedBranches returns the registry's fixture data. Branch 4 is inactive.
func SeedBranches() []models.Branch {
	return []models.Branch{
		{ID: "1", Name: "Filial São Paulo", CNPJ: "11222333000101", City: "São Paulo", State: "SP",
			Kind: models.KindHeadOffice, Active: true, RegisteredAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "2", Name: "Filial Rio de Janeiro", CNPJ: "11222333000202", City: "Rio de Janeiro", State: "RJ",
			Kind: models.KindBranch, Active: true, RegisteredAt: time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)},
		{ID: "3", Name: "Filial Belo Horizonte", CNPJ: "11222333000303", City: "Belo Horizonte", State: "MG",
			Kind: models.KindBranch, Active: true, RegisteredAt: time.Date(2021, 3, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "4", Name: "Filial Inativa", CNPJ: "11222333000404", City: "Salvador", State: "BA",
			Kind: models.KindBranch, Active: false, RegisteredAt: time.Date(2019, 12, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func (d *MockDirectory) FindByID(ctx context.Context, id domain.BranchID) (*models.Branch, error) {
	if err := wait(ctx, d.FindLatency); err != nil {
		return nil, err
	}
	b, ok := d.branches[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &b, nil
}

func (d *MockDirectory) IsActive(ctx context.Context, id domain.BranchID) (bool, error) {
	return isActive(ctx, d, id)
}

func (d *MockDirectory) ListActive(ctx context.Context) ([]models.Branch, error) {
	if err := wait(ctx, d.ListLatency); err != nil {
		return nil, err
	}
	active := make([]models.Branch, 0, len(d.branches))
	for _, b := range d.branches {
		if b.Active {
			active = append(active, b)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active, nil
}

func isActive(ctx context.Context, d Directory, id domain.BranchID) (bool, error) {
	b, err := d.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return b.Active, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
