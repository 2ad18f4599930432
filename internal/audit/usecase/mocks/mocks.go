// Package mocks provides mock implementations for testing audit consumers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
)

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mock.Mock
}

// LastEntry mocks the LastEntry method.
func (m *MockAuditRepository) LastEntry(
	ctx context.Context,
	resourceType, resourceID string,
) (*auditDomain.AuditEntry, error) {
	args := m.Called(ctx, resourceType, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditEntry), args.Error(1)
}

// Create mocks the Create method.
func (m *MockAuditRepository) Create(ctx context.Context, entry *auditDomain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// ListByResource mocks the ListByResource method.
func (m *MockAuditRepository) ListByResource(
	ctx context.Context,
	resourceType, resourceID string,
	offset, limit int,
) ([]*auditDomain.AuditEntry, error) {
	args := m.Called(ctx, resourceType, resourceID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditEntry), args.Error(1)
}

// ListResources mocks the ListResources method.
func (m *MockAuditRepository) ListResources(ctx context.Context) ([]auditDomain.ResourceRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]auditDomain.ResourceRef), args.Error(1)
}

// MockAuditUseCase is a mock implementation of AuditUseCase.
type MockAuditUseCase struct {
	mock.Mock
}

// Append mocks the Append method.
func (m *MockAuditUseCase) Append(
	ctx context.Context,
	input *auditDomain.AppendInput,
) (*auditDomain.AuditEntry, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditEntry), args.Error(1)
}

// List mocks the List method.
func (m *MockAuditUseCase) List(
	ctx context.Context,
	resourceType, resourceID string,
	offset, limit int,
) ([]*auditDomain.AuditEntry, error) {
	args := m.Called(ctx, resourceType, resourceID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditEntry), args.Error(1)
}

// Verify mocks the Verify method.
func (m *MockAuditUseCase) Verify(
	ctx context.Context,
	resourceType, resourceID string,
) (*auditDomain.ChainReport, error) {
	args := m.Called(ctx, resourceType, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.ChainReport), args.Error(1)
}

// VerifyAll mocks the VerifyAll method.
func (m *MockAuditUseCase) VerifyAll(ctx context.Context) ([]*auditDomain.ChainReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.ChainReport), args.Error(1)
}

// MockReadAuthorizer is a mock implementation of ReadAuthorizer.
type MockReadAuthorizer struct {
	mock.Mock
}

// CanReadAudit mocks the CanReadAudit method.
func (m *MockReadAuthorizer) CanReadAudit(ctx context.Context, actorID, resourceType, resourceID string) error {
	args := m.Called(ctx, actorID, resourceType, resourceID)
	return args.Error(0)
}
