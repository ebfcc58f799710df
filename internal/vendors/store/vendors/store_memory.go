package vendors

import (
	"context"
	"sync"

	"roster/internal/vendors/models"
	"roster/pkg/domain"
	"roster/pkg/platform/sentinel"
	"roster/pkg/platform/tx"
)

// InMemory keeps vendors in process memory. Saves made inside a unit of
// work are undone when it rolls back.
type InMemory struct {
	mu             sync.RWMutex
	byID           map[domain.VendorID]models.Vendor
	byDocument     map[string]domain.VendorID
	byEmail        map[string]domain.VendorID
	byRegistration map[string]domain.VendorID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:           make(map[domain.VendorID]models.Vendor),
		byDocument:     make(map[string]domain.VendorID),
		byEmail:        make(map[string]domain.VendorID),
		byRegistration: make(map[string]domain.VendorID),
	}
}

func (s *InMemory) Save(ctx context.Context, v *models.Vendor) error {
	if v == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[v.ID]; ok {
		return ErrIDTaken
	}
	if _, ok := s.byDocument[v.Document]; ok {
		return ErrDocumentTaken
	}
	if _, ok := s.byEmail[v.Email]; ok {
		return ErrEmailTaken
	}
	if _, ok := s.byRegistration[v.Registration]; ok {
		return ErrRegistrationTaken
	}

	s.byID[v.ID] = copyVendor(v)
	s.byDocument[v.Document] = v.ID
	s.byEmail[v.Email] = v.ID
	s.byRegistration[v.Registration] = v.ID

	saved := copyVendor(v)
	tx.OnRollback(ctx, func() { s.remove(saved) })
	return nil
}

func (s *InMemory) remove(v models.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, v.ID)
	delete(s.byDocument, v.Document)
	delete(s.byEmail, v.Email)
	delete(s.byRegistration, v.Registration)
}

func (s *InMemory) FindByID(_ context.Context, id domain.VendorID) (*models.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := copyVendor(&v)
	return &out, nil
}

func (s *InMemory) ExistsByDocument(_ context.Context, document string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byDocument[document]
	return ok, nil
}

func (s *InMemory) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[email]
	return ok, nil
}

func copyVendor(v *models.Vendor) models.Vendor {
	c := *v
	if v.BirthDate != nil {
		bd := *v.BirthDate
		c.BirthDate = &bd
	}
	return c
}
