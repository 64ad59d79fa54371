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

// MySQLRecordRepository implements Record persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLRecordRepository struct {
	db *sql.DB
}

func mysqlUUIDDest(dest *uuid.UUID) any {
	return binaryUUID{dest: dest}
}

// AddRecord inserts a new record.
func (m *MySQLRecordRepository) AddRecord(ctx context.Context, record *recordsDomain.Record) error {
	querier := database.GetTx(ctx, m.db)

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}

	query := `INSERT INTO records (id, user_id, label, encrypted_data, iv, salt, algorithm, key_derivation, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLRecordRepository) GetRecords(ctx context.Context, userID string) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, label, encrypted_data, iv, salt, algorithm, key_derivation, created_at, updated_at
			  FROM records
			  WHERE user_id = ?
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
		record, err := scanRecord(rows.Scan, mysqlUUIDDest)
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
func (m *MySQLRecordRepository) GetRecord(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	rawID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal record id")
	}

	query := `SELECT id, user_id, label, encrypted_data, iv, salt, algorithm, key_derivation, created_at, updated_at
			  FROM records
			  WHERE id = ?`

	record, err := scanRecord(querier.QueryRowContext(ctx, query, rawID).Scan, mysqlUUIDDest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordsDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get record")
	}
	return record, nil
}

// GetLatestRecord returns the most recently created record of any user.
func (m *MySQLRecordRepository) GetLatestRecord(ctx context.Context) (*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, label, encrypted_data, iv, salt, algorithm, key_derivation, created_at, updated_at
			  FROM records
			  ORDER BY created_at DESC, id DESC
			  LIMIT 1`

	record, err := scanRecord(querier.QueryRowContext(ctx, query).Scan, mysqlUUIDDest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordsDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get latest record")
	}
	return record, nil
}

// UpdateEnvelope replaces the envelope of a record after re-encryption.
func (m *MySQLRecordRepository) UpdateEnvelope(
	ctx context.Context,
	id uuid.UUID,
	envelope *cryptoDomain.EncryptedEnvelope,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	rawID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}

	query := `UPDATE records
			  SET encrypted_data = ?, iv = ?, salt = ?, algorithm = ?, key_derivation = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		envelope.EncryptedData,
		envelope.IV,
		envelope.Salt,
		string(envelope.Algorithm),
		string(envelope.KeyDerivation),
		updatedAt,
		rawID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update record envelope")
	}
	return requireRowsAffected(result)
}

// DeleteRecord permanently removes a record.
func (m *MySQLRecordRepository) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	rawID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, rawID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete record")
	}
	return requireRowsAffected(result)
}

// NewMySQLRecordRepository creates a new MySQL Record repository instance.
func NewMySQLRecordRepository(db *sql.DB) *MySQLRecordRepository {
	return &MySQLRecordRepository{db: db}
}
