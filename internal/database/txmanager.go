package database

import (
	"context"
	"database/sql"
	"errors"

	apperrors "github.com/allisson/compvault/internal/errors"
)

type txKey struct{}

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager runs a function inside a transaction carried by the context.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type sqlTxManager struct {
	db        *sql.DB
	isolation sql.IsolationLevel
}

// NewTxManager creates a TxManager using the driver's default isolation level.
func NewTxManager(db *sql.DB) TxManager {
	return NewTxManagerWithIsolation(db, sql.LevelDefault)
}

// NewTxManagerWithIsolation creates a TxManager whose transactions use isolation.
// Re-encrypting a user's records uses sql.LevelSerializable so that a record added
// concurrently cannot be left under the old password.
func NewTxManagerWithIsolation(db *sql.DB, isolation sql.IsolationLevel) TxManager {
	return &sqlTxManager{db: db, isolation: isolation}
}

// WithTx commits when fn returns nil and rolls back otherwise, including when fn
// panics. A context that already carries a transaction joins it instead of
// starting a new one.
func (m *sqlTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: m.isolation})
	if err != nil {
		return apperrors.Wrap(err, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, apperrors.Wrap(rbErr, "failed to rollback transaction"))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// GetTx returns the transaction carried by ctx, or db when there is none.
func GetTx(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}
