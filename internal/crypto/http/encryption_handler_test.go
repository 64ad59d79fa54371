package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	"github.com/allisson/compvault/internal/crypto/http/dto"
	"github.com/allisson/compvault/internal/crypto/usecase/mocks"
	"github.com/allisson/compvault/internal/session"
)

// stubPasswords is a session that is either unlocked with a fixed password or locked.
type stubPasswords struct {
	password string
}

func (s stubPasswords) Password() (string, error) {
	if s.password == "" {
		return "", session.ErrLocked
	}
	return s.password, nil
}

func setupTestHandler(t *testing.T, sessionPassword string) (*EncryptionHandler, *mocks.MockEncryptionUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mocks.MockEncryptionUseCase{}
	t.Cleanup(func() { mockUseCase.AssertExpectations(t) })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewEncryptionHandler(mockUseCase, stubPasswords{password: sessionPassword}, nil, logger)
	return handler, mockUseCase
}

func createTestContext(method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		bodyReader = bytes.NewReader([]byte(b))
	default:
		bodyBytes, _ := json.Marshal(b)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func testEnvelope() cryptoDomain.EncryptedEnvelope {
	return cryptoDomain.EncryptedEnvelope{
		EncryptedData: "Y2lwaGVydGV4dA==",
		IV:            "aXZpdml2aXZpdml2",
		Salt:          "c2FsdHNhbHRzYWx0c2FsdA==",
		Algorithm:     cryptoDomain.AESGCM,
		KeyDerivation: cryptoDomain.Argon2id,
	}
}

func TestEncryptionHandler_EncryptHandler(t *testing.T) {
	t.Run("Success_ExplicitPassword", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t, "")
		envelope := testEnvelope()

		mockUseCase.On("EncryptData", mock.Anything, "salary:150000", "Tr0ub4dor&3", (*cryptoDomain.Options)(nil)).
			Return(&envelope, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/crypto/encrypt", dto.EncryptRequest{
			Plaintext: "salary:150000",
			Password:  "Tr0ub4dor&3",
		})
		handler.EncryptHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response cryptoDomain.EncryptedEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, envelope, response)
		assert.Contains(t, w.Body.String(), `"encryptedData"`)
		assert.Contains(t, w.Body.String(), `"keyDerivation":"Argon2id"`)
	})

	t.Run("Success_SessionPassword", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t, "session-password")
		envelope := testEnvelope()

		mockUseCase.On("EncryptData", mock.Anything, "salary:150000", "session-password", (*cryptoDomain.Options)(nil)).
			Return(&envelope, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/crypto/encrypt", dto.EncryptRequest{Plaintext: "salary:150000"})
		handler.EncryptHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_LockedSession", func(t *testing.T) {
		handler, _ := setupTestHandler(t, "")

		c, w := createTestContext(http.MethodPost, "/v1/crypto/encrypt", dto.EncryptRequest{Plaintext: "salary:150000"})
		handler.EncryptHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "session_locked")
	})

	t.Run("Error_ValidationFails", func(t *testing.T) {
		handler, _ := setupTestHandler(t, "")

		c, w := createTestContext(http.MethodPost, "/v1/crypto/encrypt", dto.EncryptRequest{Password: "Tr0ub4dor&3"})
		handler.EncryptHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		handler, _ := setupTestHandler(t, "")

		c, w := createTestContext(http.MethodPost, "/v1/crypto/encrypt", "{not json")
		handler.EncryptHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_KeyDerivationFailed", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t, "")

		mockUseCase.On("EncryptData", mock.Anything, "x", "Tr0ub4dor&3", (*cryptoDomain.Options)(nil)).
			Return(nil, cryptoDomain.ErrKeyDerivationFailed).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/crypto/encrypt", dto.EncryptRequest{
			Plaintext: "x",
			Password:  "Tr0ub4dor&3",
		})
		handler.EncryptHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestEncryptionHandler_DecryptHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t, "")
		envelope := testEnvelope()

		mockUseCase.On("DecryptData", mock.Anything, &envelope, "Tr0ub4dor&3", (*cryptoDomain.Options)(nil)).
			Return(cryptoDomain.SucceededWith("salary:150000")).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/crypto/decrypt", dto.DecryptRequest{
			Envelope: envelope,
			Password: "Tr0ub4dor&3",
		})
		handler.DecryptHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response cryptoDomain.DecryptionResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.Success)
		assert.Equal(t, "salary:150000", response.Data)
	})

	t.Run("WrongPassword_Returns200WithFailure", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t, "")
		envelope := testEnvelope()

		mockUseCase.On("DecryptData", mock.Anything, &envelope, "wrongpass1", (*cryptoDomain.Options)(nil)).
			Return(cryptoDomain.FailedWith(cryptoDomain.ReasonDecryptionFailed, "")).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/crypto/decrypt", dto.DecryptRequest{
			Envelope: envelope,
			Password: "wrongpass1",
		})
		handler.DecryptHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response cryptoDomain.DecryptionResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.False(t, response.Success)
		assert.Equal(t, cryptoDomain.GenericDecryptionError, response.Error)
		assert.Empty(t, response.Data)
	})
}

func TestEncryptionHandler_BatchDecryptHandler(t *testing.T) {
	t.Run("Success_OrderPreserved", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t, "session-password")
		first := testEnvelope()
		second := testEnvelope()
		second.IV = "b3RoZXJpdm90aGVy"

		mockUseCase.On(
			"BatchDecryptData",
			mock.Anything,
			[]*cryptoDomain.EncryptedEnvelope{&first, &second},
			"session-password",
			(*cryptoDomain.Options)(nil),
		).Return([]cryptoDomain.DecryptionResult{
			cryptoDomain.SucceededWith("a"),
			cryptoDomain.FailedWith(cryptoDomain.ReasonDecryptionFailed, ""),
		}).Once()

		c, w := createTestContext(http.MethodPost, "/v1/crypto/decrypt/batch", dto.BatchDecryptRequest{
			Envelopes: []cryptoDomain.EncryptedEnvelope{first, second},
		})
		handler.BatchDecryptHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.BatchDecryptResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Results, 2)
		assert.True(t, response.Results[0].Success)
		assert.False(t, response.Results[1].Success)
		assert.Equal(t, 1, response.Succeeded)
		assert.Equal(t, 1, response.Failed)
	})

	t.Run("Error_EmptyBatch", func(t *testing.T) {
		handler, _ := setupTestHandler(t, "session-password")

		c, w := createTestContext(http.MethodPost, "/v1/crypto/decrypt/batch", dto.BatchDecryptRequest{})
		handler.BatchDecryptHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestEncryptionHandler_ChangePasswordHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t, "")
		envelope := testEnvelope()
		updated := testEnvelope()
		updated.Salt = "bmV3c2FsdG5ld3NhbHRuZXdzYWx0"

		mockUseCase.On("ChangePassword", mock.Anything, &envelope, "old-password", "new-password", (*cryptoDomain.Options)(nil)).
			Return(&updated, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/crypto/change-password", dto.ChangePasswordRequest{
			Envelope:    envelope,
			OldPassword: "old-password",
			NewPassword: "new-password",
		})
		handler.ChangePasswordHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response cryptoDomain.EncryptedEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, updated, response)
	})

	t.Run("Error_WrongOldPassword", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t, "")
		envelope := testEnvelope()

		mockUseCase.On("ChangePassword", mock.Anything, &envelope, "wrong-password", "new-password", (*cryptoDomain.Options)(nil)).
			Return(nil, cryptoDomain.ErrDecryptionFailed).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/crypto/change-password", dto.ChangePasswordRequest{
			Envelope:    envelope,
			OldPassword: "wrong-password",
			NewPassword: "new-password",
		})
		handler.ChangePasswordHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_WeakNewPassword", func(t *testing.T) {
		handler, _ := setupTestHandler(t, "")

		c, w := createTestContext(http.MethodPost, "/v1/crypto/change-password", dto.ChangePasswordRequest{
			Envelope:    testEnvelope(),
			OldPassword: "old-password",
			NewPassword: "short",
		})
		handler.ChangePasswordHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestEncryptionHandler_ValidatePasswordHandler(t *testing.T) {
	handler, mockUseCase := setupTestHandler(t, "")
	strength := cryptoDomain.PasswordStrength{IsValid: true, Score: 3, Feedback: []string{}}

	mockUseCase.On("ValidatePassword", "Tr0ub4dor&3").Return(strength).Once()

	c, w := createTestContext(http.MethodPost, "/v1/crypto/validate-password", dto.ValidatePasswordRequest{
		Password: "Tr0ub4dor&3",
	})
	handler.ValidatePasswordHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response cryptoDomain.PasswordStrength
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, strength, response)
}
