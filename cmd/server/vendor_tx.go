package main

import (
	"context"
	"database/sql"
	"time"

	"roster/internal/vendors/service"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/tx"
)

type vendorPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newVendorPostgresTx(db *sql.DB, timeout time.Duration) *vendorPostgresTx {
	return &vendorPostgresTx{db: db, timeout: timeout}
}

var _ service.StoreTx = (*vendorPostgresTx)(nil)

func (t *vendorPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = service.DefaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}
