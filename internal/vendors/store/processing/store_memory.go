// Package processing persists vendor-creation processing records.
package processing

import (
	"context"
	"fmt"
	"sync"

	"roster/internal/vendors/models"
	"roster/pkg/domain"
	"roster/pkg/platform/sentinel"
	"roster/pkg/platform/tx"
)

// InMemory keeps processing records in process memory. Saves made inside a
// unit of work restore the previous version when it rolls back.
type InMemory struct {
	mu      sync.RWMutex
	records map[domain.ProcessingID]*models.ProcessingRecord
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[domain.ProcessingID]*models.ProcessingRecord)}
}

// Save inserts or replaces the record. A stored record in a terminal status
// is never replaced.
func (s *InMemory) Save(ctx context.Context, record *models.ProcessingRecord) error {
	if record == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.records[record.ID]
	if existed && prev.Status.IsTerminal() {
		return fmt.Errorf("save processing record %s: already finished: %w", record.ID, sentinel.ErrInvalidState)
	}
	s.records[record.ID] = record.Clone()

	id := record.ID
	tx.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existed {
			s.records[id] = prev
			return
		}
		delete(s.records, id)
	})
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ProcessingID) (*models.ProcessingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return record.Clone(), nil
}
