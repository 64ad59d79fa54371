package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	recordsDomain "github.com/allisson/compvault/internal/records/domain"
)

func TestCreateRecordRequest_Validate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		req := CreateRecordRequest{UserID: "user-1", Label: "salary", Plaintext: "150000"}
		assert.NoError(t, req.Validate())
	})

	t.Run("Error_BlankUserID", func(t *testing.T) {
		req := CreateRecordRequest{UserID: "   ", Plaintext: "150000"}
		assert.Error(t, req.Validate())
	})

	t.Run("Error_LabelWithWhitespace", func(t *testing.T) {
		req := CreateRecordRequest{UserID: "user-1", Label: " salary", Plaintext: "150000"}
		assert.Error(t, req.Validate())
	})

	t.Run("Error_MissingPlaintext", func(t *testing.T) {
		req := CreateRecordRequest{UserID: "user-1"}
		assert.Error(t, req.Validate())
	})

	t.Run("Error_ShortPassword", func(t *testing.T) {
		req := CreateRecordRequest{UserID: "user-1", Plaintext: "150000", Password: "short"}
		assert.Error(t, req.Validate())
	})
}

func TestAuditRecordsRequest_Validate(t *testing.T) {
	zero := 0
	negative := -1

	assert.NoError(t, (&AuditRecordsRequest{UserID: "user-1"}).Validate())
	assert.NoError(t, (&AuditRecordsRequest{UserID: "user-1", MaxFailures: &zero}).Validate())
	assert.Error(t, (&AuditRecordsRequest{UserID: "user-1", MaxFailures: &negative}).Validate())
	assert.Error(t, (&AuditRecordsRequest{}).Validate())
}

func TestChangePasswordRequest_Validate(t *testing.T) {
	assert.NoError(t, (&ChangePasswordRequest{UserID: "user-1", NewPassword: "new-password"}).Validate())
	assert.Error(t, (&ChangePasswordRequest{UserID: "user-1", NewPassword: "short"}).Validate())
	assert.Error(t, (&ChangePasswordRequest{NewPassword: "new-password"}).Validate())
}

func TestMapDecryptedRecordsToListResponse(t *testing.T) {
	now := time.Now().UTC()
	record := &recordsDomain.Record{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    "user-1",
		Label:     "salary",
		CreatedAt: now,
		UpdatedAt: now,
	}

	response := MapDecryptedRecordsToListResponse([]*recordsDomain.DecryptedRecord{
		{Record: record, Result: cryptoDomain.SucceededWith("150000")},
	})

	assert.Len(t, response.Data, 1)
	assert.Equal(t, record.ID.String(), response.Data[0].ID)
	assert.Equal(t, "salary", response.Data[0].Label)
	assert.Equal(t, "150000", response.Data[0].Result.Data)

	empty := MapDecryptedRecordsToListResponse(nil)
	assert.NotNil(t, empty.Data)
}
