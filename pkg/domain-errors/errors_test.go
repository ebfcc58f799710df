package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Run("nil error stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("keeps cause reachable", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(cause, CodeInternal, "failed to save vendor")

		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "failed to save vendor: connection reset", err.Error())
		assert.Equal(t, "failed to save vendor", PublicMessage(err))
	})
}

func TestHasCode(t *testing.T) {
	err := New(CodeConflict, "document already registered")
	wrapped := fmt.Errorf("pipeline: %w", err)

	assert.True(t, HasCode(wrapped, CodeConflict))
	assert.True(t, Is(wrapped, CodeConflict))
	assert.False(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(New(CodeValidation, "bad")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestPublicMessage_UncodedErrorIsRedacted(t *testing.T) {
	assert.Equal(t, "internal error", PublicMessage(errors.New("pq: password authentication failed")))
}
