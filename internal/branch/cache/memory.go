package cache

import (
	"context"
	"sync"
	"time"

	"roster/internal/branch/models"
	"roster/pkg/domain"
)

type cachedLookup struct {
	lookup   Lookup
	storedAt time.Time
}

// InMemory is a process-local TTL cache.
type InMemory struct {
	mu       sync.RWMutex
	lookups  map[domain.BranchID]cachedLookup
	active   []models.Branch
	activeAt time.Time
	hasList  bool
	ttl      time.Duration
	now      func() time.Time
}

// NewInMemory creates an in-memory cache whose entries expire after ttl.
func NewInMemory(ttl time.Duration) *InMemory {
	return &InMemory{
		lookups: make(map[domain.BranchID]cachedLookup),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *InMemory) GetBranch(_ context.Context, id domain.BranchID) (Lookup, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cached, ok := c.lookups[id]; ok && c.fresh(cached.storedAt) {
		return cloneLookup(cached.lookup), nil
	}
	return Lookup{}, ErrMiss
}

func (c *InMemory) SetBranch(_ context.Context, id domain.BranchID, lookup Lookup) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups[id] = cachedLookup{lookup: cloneLookup(lookup), storedAt: c.now()}
	return nil
}

func (c *InMemory) GetActive(_ context.Context) ([]models.Branch, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasList || !c.fresh(c.activeAt) {
		return nil, ErrMiss
	}
	return append([]models.Branch(nil), c.active...), nil
}

func (c *InMemory) SetActive(_ context.Context, branches []models.Branch) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = append([]models.Branch(nil), branches...)
	c.activeAt = c.now()
	c.hasList = true
	return nil
}

func (c *InMemory) fresh(storedAt time.Time) bool {
	return c.now().Sub(storedAt) < c.ttl
}

func cloneLookup(l Lookup) Lookup {
	if l.Branch == nil {
		return l
	}
	b := *l.Branch
	return Lookup{Branch: &b}
}
