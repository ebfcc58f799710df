package processing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"roster/internal/vendors/models"
	"roster/pkg/domain"
	"roster/pkg/platform/sentinel"
	"roster/pkg/platform/tx"
)

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemorySuite) newRecord() *models.ProcessingRecord {
	r, err := models.NewProcessingRecord(domain.NewProcessingID(), time.Now())
	s.Require().NoError(err)
	return r
}

func (s *InMemorySuite) TestSaveAndFind() {
	r := s.newRecord()
	s.Require().NoError(s.store.Save(s.ctx, r))

	found, err := s.store.FindByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, found.Status)

	s.Run("returns copies", func() {
		found.Status = models.StatusError
		again, err := s.store.FindByID(s.ctx, r.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, again.Status)
	})

	s.Run("unknown id", func() {
		_, err := s.store.FindByID(s.ctx, domain.NewProcessingID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemorySuite) TestRollbackRestoresPreviousVersion() {
	r := s.newRecord()
	s.Require().NoError(r.MarkRunning(time.Now()))
	s.Require().NoError(s.store.Save(s.ctx, r))

	ctx, journal := tx.WithJournal(s.ctx)
	s.Require().NoError(r.MarkConcluded(domain.NewVendorID(), time.Now()))
	s.Require().NoError(s.store.Save(ctx, r))
	journal.Rollback()

	found, err := s.store.FindByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRunning, found.Status)
	s.Nil(found.VendorID)
}

func (s *InMemorySuite) TestRollbackRemovesNewRecord() {
	ctx, journal := tx.WithJournal(s.ctx)
	r := s.newRecord()
	s.Require().NoError(s.store.Save(ctx, r))
	journal.Rollback()

	_, err := s.store.FindByID(s.ctx, r.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestFinishedRecordIsNotOverwritten() {
	r := s.newRecord()
	s.Require().NoError(r.MarkRunning(time.Now()))
	s.Require().NoError(s.store.Save(s.ctx, r))

	stale := r.Clone()
	vendorID := domain.NewVendorID()
	s.Require().NoError(r.MarkConcluded(vendorID, time.Now()))
	s.Require().NoError(s.store.Save(s.ctx, r))

	s.Require().NoError(stale.MarkError("late failure", time.Now()))
	err := s.store.Save(s.ctx, stale)
	s.ErrorIs(err, sentinel.ErrInvalidState)

	found, err := s.store.FindByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusConcluded, found.Status)
	s.Equal(&vendorID, found.VendorID)
}
