package tx

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal(t *testing.T) {
	t.Run("rollback replays undos newest first", func(t *testing.T) {
		ctx, j := WithJournal(context.Background())
		var order []int
		OnRollback(ctx, func() { order = append(order, 1) })
		OnRollback(ctx, func() { order = append(order, 2) })

		j.Rollback()

		assert.Equal(t, []int{2, 1}, order)
	})

	t.Run("commit discards undos", func(t *testing.T) {
		ctx, j := WithJournal(context.Background())
		called := false
		OnRollback(ctx, func() { called = true })

		j.Commit()
		j.Rollback()

		assert.False(t, called)
	})

	t.Run("outside a unit of work registration is ignored", func(t *testing.T) {
		assert.NotPanics(t, func() {
			OnRollback(context.Background(), func() {})
		})
	})
}

func TestFrom_WithoutTx(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)
	assert.Equal(t, context.Background(), WithTx(context.Background(), nil))
}

func TestExecutor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	assert.Same(t, db, Executor(context.Background(), db))

	mock.ExpectBegin()
	sqlTx, err := db.Begin()
	require.NoError(t, err)

	ctx := WithTx(context.Background(), sqlTx)
	assert.Same(t, sqlTx, Executor(ctx, db))
}
