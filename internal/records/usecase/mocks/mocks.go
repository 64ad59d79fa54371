// Package mocks provides mock implementations of the record use case and repository
// for testing.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
	recordsDomain "github.com/allisson/compvault/internal/records/domain"
)

// MockRecordRepository is a mock implementation of RecordRepository.
type MockRecordRepository struct {
	mock.Mock
}

// AddRecord mocks the AddRecord method.
func (m *MockRecordRepository) AddRecord(ctx context.Context, record *recordsDomain.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// GetRecords mocks the GetRecords method.
func (m *MockRecordRepository) GetRecords(ctx context.Context, userID string) ([]*recordsDomain.Record, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recordsDomain.Record), args.Error(1)
}

// GetRecord mocks the GetRecord method.
func (m *MockRecordRepository) GetRecord(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.Record), args.Error(1)
}

// GetLatestRecord mocks the GetLatestRecord method.
func (m *MockRecordRepository) GetLatestRecord(ctx context.Context) (*recordsDomain.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.Record), args.Error(1)
}

// UpdateEnvelope mocks the UpdateEnvelope method.
func (m *MockRecordRepository) UpdateEnvelope(
	ctx context.Context,
	id uuid.UUID,
	envelope *cryptoDomain.EncryptedEnvelope,
	updatedAt time.Time,
) error {
	args := m.Called(ctx, id, envelope, updatedAt)
	return args.Error(0)
}

// DeleteRecord mocks the DeleteRecord method.
func (m *MockRecordRepository) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRecordUseCase is a mock implementation of RecordUseCase.
type MockRecordUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockRecordUseCase) Create(
	ctx context.Context,
	input *recordsDomain.CreateRecordInput,
) (*recordsDomain.Record, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.Record), args.Error(1)
}

// Get mocks the Get method.
func (m *MockRecordUseCase) Get(
	ctx context.Context,
	id uuid.UUID,
	password string,
) (*recordsDomain.DecryptedRecord, error) {
	args := m.Called(ctx, id, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.DecryptedRecord), args.Error(1)
}

// List mocks the List method.
func (m *MockRecordUseCase) List(
	ctx context.Context,
	userID, password string,
) ([]*recordsDomain.DecryptedRecord, error) {
	args := m.Called(ctx, userID, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*recordsDomain.DecryptedRecord), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockRecordUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Audit mocks the Audit method.
func (m *MockRecordUseCase) Audit(
	ctx context.Context,
	userID, password string,
	opts cryptoDomain.AuditOptions,
) (*cryptoDomain.AuditReport, error) {
	args := m.Called(ctx, userID, password, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.AuditReport), args.Error(1)
}

// CheckPassword mocks the CheckPassword method.
func (m *MockRecordUseCase) CheckPassword(ctx context.Context, password string) error {
	args := m.Called(ctx, password)
	return args.Error(0)
}

// ChangePassword mocks the ChangePassword method.
func (m *MockRecordUseCase) ChangePassword(
	ctx context.Context,
	userID, oldPassword, newPassword string,
) (*recordsDomain.ChangePasswordOutput, error) {
	args := m.Called(ctx, userID, oldPassword, newPassword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recordsDomain.ChangePasswordOutput), args.Error(1)
}
