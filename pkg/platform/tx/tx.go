// Package tx carries a unit of work through context so stores can join it
// without their interfaces knowing about transactions.
//
// SQL stores look for a *sql.Tx with From. In-memory stores register undo
// actions on a Journal with OnRollback; the in-memory unit of work replays
// them in reverse order when the work fails.
package tx

import (
	"context"
	"database/sql"
	"sync"
)

type ctxKey struct{}

type journalKey struct{}

var (
	txKey      = ctxKey{}
	journalCtx = journalKey{}
)

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// DBTX is the query surface shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Executor returns the transaction in ctx, or db when there is none.
func Executor(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

// Journal collects compensating actions for in-memory writes.
type Journal struct {
	mu    sync.Mutex
	undos []func()
}

// WithJournal returns a context carrying a fresh journal.
func WithJournal(ctx context.Context) (context.Context, *Journal) {
	j := &Journal{}
	return context.WithValue(ctx, journalCtx, j), j
}

// OnRollback registers undo on the journal in ctx. It is a no-op outside a
// unit of work, so stores can call it unconditionally.
func OnRollback(ctx context.Context, undo func()) {
	j, ok := ctx.Value(journalCtx).(*Journal)
	if !ok || undo == nil {
		return
	}
	j.mu.Lock()
	j.undos = append(j.undos, undo)
	j.mu.Unlock()
}

// Rollback runs registered undos newest first and clears the journal.
func (j *Journal) Rollback() {
	j.mu.Lock()
	undos := j.undos
	j.undos = nil
	j.mu.Unlock()
	for i := len(undos) - 1; i >= 0; i-- {
		undos[i]()
	}
}

// Commit discards registered undos.
func (j *Journal) Commit() {
	j.mu.Lock()
	j.undos = nil
	j.mu.Unlock()
}
