package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/compvault/internal/database"
	apperrors "github.com/allisson/compvault/internal/errors"
)

// MySQLVerifierRepository stores the session verifier in MySQL.
type MySQLVerifierRepository struct {
	db *sql.DB
}

// LoadVerifier returns the stored verifier hash, or "" when none is stored.
func (m *MySQLVerifierRepository) LoadVerifier(ctx context.Context) (string, error) {
	querier := database.GetTx(ctx, m.db)

	var hash string
	err := querier.QueryRowContext(ctx, `SELECT hash FROM session_verifiers WHERE id = ?`, verifierRowID).
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
func (m *MySQLVerifierRepository) SaveVerifier(ctx context.Context, hash string) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO session_verifiers (id, hash, updated_at)
			  VALUES (?, ?, ?)
			  ON DUPLICATE KEY UPDATE hash = VALUES(hash), updated_at = VALUES(updated_at)`

	if _, err := querier.ExecContext(ctx, query, verifierRowID, hash, time.Now().UTC()); err != nil {
		return apperrors.Wrap(err, "failed to save session verifier")
	}
	return nil
}

// NewMySQLVerifierRepository creates a new MySQL verifier repository.
func NewMySQLVerifierRepository(db *sql.DB) *MySQLVerifierRepository {
	return &MySQLVerifierRepository{db: db}
}
