package dto

import (
	"time"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	recordsDomain "github.com/allisson/compvault/internal/records/domain"
)

// RecordResponse represents a stored record without plaintext.
type RecordResponse struct {
	ID        string                         `json:"id"`
	UserID    string                         `json:"user_id"`
	Label     string                         `json:"label"`
	Envelope  cryptoDomain.EncryptedEnvelope `json:"envelope"`
	CreatedAt time.Time                      `json:"created_at"`
	UpdatedAt time.Time                      `json:"updated_at"`
}

// DecryptedRecordResponse is a record together with its decryption result.
type DecryptedRecordResponse struct {
	RecordResponse
	Result cryptoDomain.DecryptionResult `json:"result"`
}

// ListRecordsResponse holds decrypted records in creation order.
type ListRecordsResponse struct {
	Data []DecryptedRecordResponse `json:"data"`
}

// MapRecordToResponse converts a domain record to an API response.
func MapRecordToResponse(record *recordsDomain.Record) RecordResponse {
	return RecordResponse{
		ID:        record.ID.String(),
		UserID:    record.UserID,
		Label:     record.Label,
		Envelope:  record.Envelope,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

// MapDecryptedRecordToResponse converts a decrypted record to an API response.
func MapDecryptedRecordToResponse(record *recordsDomain.DecryptedRecord) DecryptedRecordResponse {
	return DecryptedRecordResponse{
		RecordResponse: MapRecordToResponse(record.Record),
		Result:         record.Result,
	}
}

// MapDecryptedRecordsToListResponse converts decrypted records to a list response.
func MapDecryptedRecordsToListResponse(records []*recordsDomain.DecryptedRecord) ListRecordsResponse {
	data := make([]DecryptedRecordResponse, 0, len(records))
	for _, record := range records {
		data = append(data, MapDecryptedRecordToResponse(record))
	}
	return ListRecordsResponse{Data: data}
}
