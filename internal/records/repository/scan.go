package repository

import (
	"database/sql"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	apperrors "github.com/allisson/compvault/internal/errors"
	recordsDomain "github.com/allisson/compvault/internal/records/domain"
)

// scanRecord reads the record column list shared by both drivers. idDest adapts how
// the driver stores UUIDs.
func scanRecord(scan func(dest ...any) error, idDest func(*uuid.UUID) any) (*recordsDomain.Record, error) {
	var (
		record        recordsDomain.Record
		algorithm     string
		keyDerivation string
	)

	err := scan(
		idDest(&record.ID),
		&record.UserID,
		&record.Label,
		&record.Envelope.EncryptedData,
		&record.Envelope.IV,
		&record.Envelope.Salt,
		&algorithm,
		&keyDerivation,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Envelope.Algorithm = cryptoDomain.Algorithm(algorithm)
	record.Envelope.KeyDerivation = cryptoDomain.KDFAlgorithm(keyDerivation)
	return &record, nil
}

// binaryUUID scans a BINARY(16) column into a uuid.UUID.
type binaryUUID struct {
	dest *uuid.UUID
}

// Scan implements sql.Scanner.
func (b binaryUUID) Scan(src any) error {
	raw, ok := src.([]byte)
	if !ok {
		return apperrors.New("uuid column is not binary")
	}
	return b.dest.UnmarshalBinary(raw)
}

func requireRowsAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return recordsDomain.ErrRecordNotFound
	}
	return nil
}
