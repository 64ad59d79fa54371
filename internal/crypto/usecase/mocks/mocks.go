// Package mocks provides mock implementations of the encryption use case and its
// collaborators for testing.
package mocks

import (
	"bytes"
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

// MockEncryptionUseCase is a mock implementation of EncryptionUseCase.
type MockEncryptionUseCase struct {
	mock.Mock
}

// EncryptData mocks the EncryptData method.
func (m *MockEncryptionUseCase) EncryptData(
	ctx context.Context,
	plaintext, password string,
	opts *cryptoDomain.Options,
) (*cryptoDomain.EncryptedEnvelope, error) {
	args := m.Called(ctx, plaintext, password, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.EncryptedEnvelope), args.Error(1)
}

// DecryptData mocks the DecryptData method.
func (m *MockEncryptionUseCase) DecryptData(
	ctx context.Context,
	envelope *cryptoDomain.EncryptedEnvelope,
	password string,
	opts *cryptoDomain.Options,
) cryptoDomain.DecryptionResult {
	args := m.Called(ctx, envelope, password, opts)
	return args.Get(0).(cryptoDomain.DecryptionResult)
}

// ChangePassword mocks the ChangePassword method.
func (m *MockEncryptionUseCase) ChangePassword(
	ctx context.Context,
	envelope *cryptoDomain.EncryptedEnvelope,
	oldPassword, newPassword string,
	opts *cryptoDomain.Options,
) (*cryptoDomain.EncryptedEnvelope, error) {
	args := m.Called(ctx, envelope, oldPassword, newPassword, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.EncryptedEnvelope), args.Error(1)
}

// BatchDecryptData mocks the BatchDecryptData method.
func (m *MockEncryptionUseCase) BatchDecryptData(
	ctx context.Context,
	envelopes []*cryptoDomain.EncryptedEnvelope,
	password string,
	opts *cryptoDomain.Options,
) []cryptoDomain.DecryptionResult {
	args := m.Called(ctx, envelopes, password, opts)
	return args.Get(0).([]cryptoDomain.DecryptionResult)
}

// ValidatePassword mocks the ValidatePassword method.
func (m *MockEncryptionUseCase) ValidatePassword(password string) cryptoDomain.PasswordStrength {
	args := m.Called(password)
	return args.Get(0).(cryptoDomain.PasswordStrength)
}

// AuditAndCleanupCorruptedRecords mocks the AuditAndCleanupCorruptedRecords method.
func (m *MockEncryptionUseCase) AuditAndCleanupCorruptedRecords(
	ctx context.Context,
	records []cryptoDomain.StoredEnvelope,
	password string,
	opts cryptoDomain.AuditOptions,
) (*cryptoDomain.AuditReport, error) {
	args := m.Called(ctx, records, password, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.AuditReport), args.Error(1)
}

// MockRecordDeleter is a mock implementation of RecordDeleter.
type MockRecordDeleter struct {
	mock.Mock
}

// DeleteRecord mocks the DeleteRecord method.
func (m *MockRecordDeleter) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockKeyCache is a mock implementation of KeyCache.
type MockKeyCache struct {
	mock.Mock
}

// GetOrDeriveKey mocks the GetOrDeriveKey method. The configured key is cloned on every
// call because callers zero what they receive.
func (m *MockKeyCache) GetOrDeriveKey(
	ctx context.Context,
	password, salt []byte,
	params cryptoDomain.KDFParams,
) ([]byte, error) {
	args := m.Called(ctx, password, salt, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return bytes.Clone(args.Get(0).([]byte)), args.Error(1)
}

// DeriveKeys mocks the DeriveKeys method. The configured map is returned as is so tests
// can check that the caller zeroed the keys.
func (m *MockKeyCache) DeriveKeys(
	ctx context.Context,
	password []byte,
	salts [][]byte,
	params cryptoDomain.KDFParams,
) map[string]cryptoDomain.DerivedKey {
	args := m.Called(ctx, password, salts, params)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(map[string]cryptoDomain.DerivedKey)
}

// InvalidateAll mocks the InvalidateAll method.
func (m *MockKeyCache) InvalidateAll() {
	m.Called()
}
