package service

import (
	"context"
	"sync"
	"time"

	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/tx"
)

// StoreTx runs fn as one unit of work. Stores called with the ctx passed to
// fn join it; if fn fails every write made through that ctx is discarded.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// DefaultTxTimeout bounds a unit of work when ctx has no deadline.
const DefaultTxTimeout = 5 * time.Second

// InMemoryTx serializes units of work with a single lock and undoes
// in-memory writes through a tx.Journal on failure.
type InMemoryTx struct {
	mu      sync.Mutex
	timeout time.Duration
}

func NewInMemoryTx(timeout time.Duration) *InMemoryTx {
	return &InMemoryTx{timeout: timeout}
}

func (t *InMemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = DefaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	ctx, journal := tx.WithJournal(ctx)
	defer func() {
		if rec := recover(); rec != nil {
			journal.Rollback()
			panic(rec)
		}
	}()

	if err := fn(ctx); err != nil {
		journal.Rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		journal.Rollback()
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction timed out")
	}
	journal.Commit()
	return nil
}
