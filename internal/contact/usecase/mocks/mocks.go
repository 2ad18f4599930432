// Package mocks provides mock implementations for testing contact consumers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
)

// MockContactRepository is a mock implementation of ContactRepository.
type MockContactRepository struct {
	mock.Mock
}

// Upsert mocks the Upsert method.
func (m *MockContactRepository) Upsert(ctx context.Context, vault *contactDomain.ContactVault) error {
	args := m.Called(ctx, vault)
	return args.Error(0)
}

// GetByProviderID mocks the GetByProviderID method.
func (m *MockContactRepository) GetByProviderID(
	ctx context.Context,
	providerID string,
) (*contactDomain.ContactVault, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contactDomain.ContactVault), args.Error(1)
}

// MockContactUseCase is a mock implementation of ContactUseCase.
type MockContactUseCase struct {
	mock.Mock
}

// SetContact mocks the SetContact method.
func (m *MockContactUseCase) SetContact(
	ctx context.Context,
	providerID string,
	record *contactDomain.ContactRecord,
) (*contactDomain.ContactVault, error) {
	args := m.Called(ctx, providerID, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contactDomain.ContactVault), args.Error(1)
}

// GetContactHash mocks the GetContactHash method.
func (m *MockContactUseCase) GetContactHash(ctx context.Context, providerID string) (string, error) {
	args := m.Called(ctx, providerID)
	return args.String(0), args.Error(1)
}

// Open mocks the Open method.
func (m *MockContactUseCase) Open(ctx context.Context, providerID string) (*contactDomain.ContactRecord, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contactDomain.ContactRecord), args.Error(1)
}

// CanReadAudit mocks the CanReadAudit method.
func (m *MockContactUseCase) CanReadAudit(ctx context.Context, actorID, resourceType, resourceID string) error {
	args := m.Called(ctx, actorID, resourceType, resourceID)
	return args.Error(0)
}
