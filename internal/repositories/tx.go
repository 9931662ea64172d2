package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/knassar/mc-wallet-ledger/internal/apperrors"
	"github.com/knassar/mc-wallet-ledger/internal/logger"
)

// Postgres error codes the ledger cares about.
const (
	pgCodeLockNotAvailable = "55P03"
	pgCodeDeadlockDetected = "40P01"
	pgCodeUniqueViolation  = "23505"
)

// contextKey is an unexported type for keys in context.
type contextKey struct{}

var txKey = contextKey{}

// setTxToContext stores a transaction in the context.
func setTxToContext(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// TxFromContext retrieves the transaction from the context. Returns nil if not present.
func TxFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey).(*sqlx.Tx)
	return tx
}

// executor returns the context transaction when one is open, the pool otherwise.
func executor(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

// TxRunner runs a function inside one database transaction, the single
// atomic unit of work of a ledger operation. Wallet rows are only ever
// mutated through a context carrying such a transaction.
type TxRunner struct {
	db            *sqlx.DB
	lockTimeoutMS int
}

// NewTxRunner creates a runner. lockTimeoutMS bounds how long a statement
// may wait on a row lock; 0 disables the bound.
func NewTxRunner(db *sqlx.DB, lockTimeoutMS int) *TxRunner {
	return &TxRunner{db: db, lockTimeoutMS: lockTimeoutMS}
}

// RunInTx begins a transaction, stores it in the context, and invokes fn.
// Any error from fn rolls back the whole unit of work; lock-wait timeouts
// and deadlocks surface as retryable contention errors.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Persistence("begin transaction", err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			tx.Rollback()
			panic(rec)
		}
	}()

	if r.lockTimeoutMS > 0 {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeoutMS)); err != nil {
			tx.Rollback()
			return apperrors.Persistence("set lock timeout", err)
		}
	}

	if err := fn(setTxToContext(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Log.Errorw("rollback failed", "error", rbErr)
		}
		return mapContention(err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Persistence("commit transaction", err)
	}
	return nil
}

// mapContention converts lock-wait timeouts and deadlocks into the
// retryable contention kind; other errors pass through unchanged.
func mapContention(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeLockNotAvailable:
			return apperrors.Contention("lock wait timed out", err)
		case pgCodeDeadlockDetected:
			return apperrors.Contention("deadlock detected", err)
		}
	}
	return err
}

// isUniqueViolation reports whether err is a Postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCodeUniqueViolation
}
