package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dErrors "parishbook/pkg/domain-errors"
	"parishbook/pkg/platform/tx"
)

const defaultFamilyTxTimeout = 5 * time.Second

// familyPostgresTx runs each relationship edit inside a serializable
// database transaction carried through context, so every store touched by
// the operation joins the same transaction.
type familyPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newFamilyPostgresTx(db *sql.DB) *familyPostgresTx {
	return &familyPostgresTx{db: db}
}

func (t *familyPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultFamilyTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	dbTx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return txError(err, "begin transaction failed")
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, dbTx)); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return txError(err, "commit failed")
	}
	return nil
}

func txError(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
}
