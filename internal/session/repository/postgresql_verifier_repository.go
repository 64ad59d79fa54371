// Package repository persists the session verifier for PostgreSQL and MySQL.
//
// The verifier lives in a single row (id 1) of the session_verifiers table.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/compvault/internal/database"
	apperrors "github.com/allisson/compvault/internal/errors"
)

const verifierRowID = 1

// PostgreSQLVerifierRepository stores the session verifier in PostgreSQL.
type PostgreSQLVerifierRepository struct {
	db *sql.DB
}

// LoadVerifier returns the stored verifier hash, or "" when none is stored.
func (p *PostgreSQLVerifierRepository) LoadVerifier(ctx context.Context) (string, error) {
	querier := database.GetTx(ctx, p.db)

	var hash string
	err := querier.QueryRowContext(ctx, `SELECT hash FROM session_verifiers WHERE id = $1`, verifierRowID).
		Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", apperrors.Wrap(err, "failed to load session verifier")
	}
	return hash, nil
}

// SaveVerifier inserts or replaces the verifier hash.
func (p *PostgreSQLVerifierRepository) SaveVerifier(ctx context.Context, hash string) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO session_verifiers (id, hash, updated_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (id) DO UPDATE SET hash = EXCLUDED.hash, updated_at = EXCLUDED.updated_at`

	if _, err := querier.ExecContext(ctx, query, verifierRowID, hash, time.Now().UTC()); err != nil {
		return apperrors.Wrap(err, "failed to save session verifier")
	}
	return nil
}

// NewPostgreSQLVerifierRepository creates a new PostgreSQL verifier repository.
func NewPostgreSQLVerifierRepository(db *sql.DB) *PostgreSQLVerifierRepository {
	return &PostgreSQLVerifierRepository{db: db}
}
