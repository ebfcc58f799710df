package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
)

func TestProcessingStatus_CanTransitionTo(t *testing.T) {
	all := []ProcessingStatus{StatusPending, StatusRunning, StatusConcluded, StatusError}
	allowed := map[ProcessingStatus][]ProcessingStatus{
		StatusPending: {StatusRunning},
		StatusRunning: {StatusConcluded, StatusError},
	}
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestProcessingRecord_SuccessLifecycle(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec, err := NewProcessingRecord(domain.NewProcessingID(), t0)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, rec.Status)

	require.NoError(t, rec.MarkRunning(t0.Add(time.Second)))
	assert.Equal(t, StatusRunning, rec.Status)
	require.NotNil(t, rec.StartedAt)

	vendorID := domain.NewVendorID()
	require.NoError(t, rec.MarkConcluded(vendorID, t0.Add(2*time.Second)))
	assert.Equal(t, StatusConcluded, rec.Status)
	assert.Equal(t, vendorID, *rec.VendorID)
	assert.Equal(t, t0.Add(2*time.Second), rec.UpdatedAt)
	assert.True(t, rec.Status.IsTerminal())
}

func TestProcessingRecord_ErrorLifecycle(t *testing.T) {
	now := time.Now()
	rec, err := NewProcessingRecord(domain.NewProcessingID(), now)
	require.NoError(t, err)
	require.NoError(t, rec.MarkRunning(now))

	require.NoError(t, rec.MarkError("branch 4 is inactive", now))
	assert.Equal(t, StatusError, rec.Status)
	assert.Equal(t, "branch 4 is inactive", rec.Message)
	assert.Nil(t, rec.VendorID)
}

func TestProcessingRecord_RejectsInvalidTransitions(t *testing.T) {
	now := time.Now()

	t.Run("cannot conclude pending", func(t *testing.T) {
		rec, _ := NewProcessingRecord(domain.NewProcessingID(), now)
		err := rec.MarkConcluded(domain.NewVendorID(), now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		assert.Equal(t, StatusPending, rec.Status)
	})

	t.Run("terminal state reached once", func(t *testing.T) {
		rec, _ := NewProcessingRecord(domain.NewProcessingID(), now)
		require.NoError(t, rec.MarkRunning(now))
		require.NoError(t, rec.MarkError("boom", now))

		assert.Error(t, rec.MarkError("again", now))
		assert.Error(t, rec.MarkConcluded(domain.NewVendorID(), now))
		assert.Error(t, rec.MarkRunning(now))
		assert.Equal(t, "boom", rec.Message)
	})

	t.Run("conclude requires vendor", func(t *testing.T) {
		rec, _ := NewProcessingRecord(domain.NewProcessingID(), now)
		require.NoError(t, rec.MarkRunning(now))
		err := rec.MarkConcluded(domain.VendorID{}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		assert.Equal(t, StatusRunning, rec.Status)
	})
}

func TestNewProcessingRecord_RejectsNilID(t *testing.T) {
	_, err := NewProcessingRecord(domain.ProcessingID{}, time.Now())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestProcessingRecord_CloneIsDeep(t *testing.T) {
	now := time.Now()
	rec, _ := NewProcessingRecord(domain.NewProcessingID(), now)
	require.NoError(t, rec.MarkRunning(now))
	require.NoError(t, rec.MarkConcluded(domain.NewVendorID(), now))

	c := rec.Clone()
	*c.VendorID = domain.NewVendorID()
	*c.StartedAt = now.Add(time.Hour)

	assert.NotEqual(t, *rec.VendorID, *c.VendorID)
	assert.Equal(t, now, *rec.StartedAt)
}

func TestParseProcessingStatus(t *testing.T) {
	st, err := ParseProcessingStatus("RUNNING")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, st)

	_, err = ParseProcessingStatus("running")
	assert.Error(t, err)
}
