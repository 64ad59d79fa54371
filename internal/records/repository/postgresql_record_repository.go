// Package repository implements record persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	"github.com/allisson/compvault/internal/database"
	apperrors "github.com/allisson/compvault/internal/errors"
	recordsDomain "github.com/allisson/compvault/internal/records/domain"
)

// PostgreSQLRecordRepository implements Record persistence for PostgreSQL databases.
type PostgreSQLRecordRepository struct {
	db *sql.DB
}

// AddRecord inserts a new record.
func (p *PostgreSQLRecordRepository) AddRecord(ctx context.Context, record *recordsDomain.Record) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO records (id, user_id, label, encrypted_data, iv, salt, algorithm, key_derivation, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.UserID,
		record.Label,
		record.Envelope.EncryptedData,
		record.Envelope.IV,
		record.Envelope.Salt,
		string(record.Envelope.Algorithm),
		string(record.Envelope.KeyDerivation),
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create record")
	}
	return nil
}

// GetRecords returns every record of a user ordered by creation time.
func (p *PostgreSQLRecordRepository) GetRecords(ctx context.Context, userID string) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, label, encrypted_data, iv, salt, algorithm, key_derivation, created_at, updated_at
			  FROM records
			  WHERE user_id = $1
			  ORDER BY created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*recordsDomain.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows.Scan, func(dest *uuid.UUID) any { return dest })
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan record")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate records")
	}
	return records, nil
}

// GetRecord retrieves a record by ID.
func (p *PostgreSQLRecordRepository) GetRecord(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, label, encrypted_data, iv, salt, algorithm, key_derivation, created_at, updated_at
			  FROM records
			  WHERE id = $1`

	record, err := scanRecord(querier.QueryRowContext(ctx, query, id).Scan, func(dest *uuid.UUID) any { return dest })
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordsDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get record")
	}
	return record, nil
}

// GetLatestRecord returns the most recently created record of any user.
func (p *PostgreSQLRecordRepository) GetLatestRecord(ctx context.Context) (*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, label, encrypted_data, iv, salt, algorithm, key_derivation, created_at, updated_at
			  FROM records
			  ORDER BY created_at DESC, id DESC
			  LIMIT 1`

	record, err := scanRecord(querier.QueryRowContext(ctx, query).Scan, func(dest *uuid.UUID) any { return dest })
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordsDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get latest record")
	}
	return record, nil
}

// UpdateEnvelope replaces the envelope of a record after re-encryption.
func (p *PostgreSQLRecordRepository) UpdateEnvelope(
	ctx context.Context,
	id uuid.UUID,
	envelope *cryptoDomain.EncryptedEnvelope,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE records
			  SET encrypted_data = $1, iv = $2, salt = $3, algorithm = $4, key_derivation = $5, updated_at = $6
			  WHERE id = $7`

	result, err := querier.ExecContext(
		ctx,
		query,
		envelope.EncryptedData,
		envelope.IV,
		envelope.Salt,
		string(envelope.Algorithm),
		string(envelope.KeyDerivation),
		updatedAt,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update record envelope")
	}
	return requireRowsAffected(result)
}

// DeleteRecord permanently removes a record.
func (p *PostgreSQLRecordRepository) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete record")
	}
	return requireRowsAffected(result)
}

// NewPostgreSQLRecordRepository creates a new PostgreSQL Record repository instance.
func NewPostgreSQLRecordRepository(db *sql.DB) *PostgreSQLRecordRepository {
	return &PostgreSQLRecordRepository{db: db}
}
