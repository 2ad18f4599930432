// Package mocks provides mock implementations for testing reveal consumers.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
	outboxDomain "github.com/xambitlan/disclosure/internal/outbox/domain"
	revealDomain "github.com/xambitlan/disclosure/internal/reveal/domain"
)

// MockRevealRequestRepository is a mock implementation of RevealRequestRepository.
type MockRevealRequestRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockRevealRequestRepository) Create(ctx context.Context, request *revealDomain.RevealRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

// GetByID mocks the GetByID method.
func (m *MockRevealRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*revealDomain.RevealRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*revealDomain.RevealRequest), args.Error(1)
}

// Update mocks the Update method.
func (m *MockRevealRequestRepository) Update(
	ctx context.Context,
	request *revealDomain.RevealRequest,
	expectedVersion int64,
) error {
	args := m.Called(ctx, request, expectedVersion)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockRevealRequestRepository) List(
	ctx context.Context,
	participantID string,
	filter *revealDomain.ListFilter,
) ([]*revealDomain.RevealRequest, error) {
	args := m.Called(ctx, participantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*revealDomain.RevealRequest), args.Error(1)
}

// ListStale mocks the ListStale method.
func (m *MockRevealRequestRepository) ListStale(
	ctx context.Context,
	filter *revealDomain.StaleFilter,
) ([]*revealDomain.RevealRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*revealDomain.RevealRequest), args.Error(1)
}

// MockServiceDirectory is a mock implementation of ServiceDirectory.
type MockServiceDirectory struct {
	mock.Mock
}

// GetService mocks the GetService method.
func (m *MockServiceDirectory) GetService(ctx context.Context, serviceID string) (*revealDomain.Service, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*revealDomain.Service), args.Error(1)
}

// MockPaymentVerifier is a mock implementation of PaymentVerifier.
type MockPaymentVerifier struct {
	mock.Mock
}

// VerifyPayment mocks the VerifyPayment method.
func (m *MockPaymentVerifier) VerifyPayment(ctx context.Context, paymentRef, clientID, serviceID string) (bool, error) {
	args := m.Called(ctx, paymentRef, clientID, serviceID)
	return args.Bool(0), args.Error(1)
}

// MockOutboxEventRepository is a mock implementation of OutboxEventRepository.
type MockOutboxEventRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockOutboxEventRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockRevealUseCase is a mock implementation of RevealUseCase.
type MockRevealUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockRevealUseCase) Create(
	ctx context.Context,
	actorID string,
	input *revealDomain.CreateInput,
) (*revealDomain.RevealRequest, error) {
	args := m.Called(ctx, actorID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*revealDomain.RevealRequest), args.Error(1)
}

// Consent mocks the Consent method.
func (m *MockRevealUseCase) Consent(
	ctx context.Context,
	actorID string,
	requestID uuid.UUID,
	input *revealDomain.ConsentInput,
) (*revealDomain.RevealRequest, error) {
	args := m.Called(ctx, actorID, requestID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*revealDomain.RevealRequest), args.Error(1)
}

// ResolveContact mocks the ResolveContact method.
func (m *MockRevealUseCase) ResolveContact(
	ctx context.Context,
	actorID string,
	requestID uuid.UUID,
	token string,
) (*contactDomain.ContactRecord, error) {
	args := m.Called(ctx, actorID, requestID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contactDomain.ContactRecord), args.Error(1)
}

// Get mocks the Get method.
func (m *MockRevealUseCase) Get(
	ctx context.Context,
	actorID string,
	requestID uuid.UUID,
) (*revealDomain.RevealRequest, error) {
	args := m.Called(ctx, actorID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*revealDomain.RevealRequest), args.Error(1)
}

// List mocks the List method.
func (m *MockRevealUseCase) List(
	ctx context.Context,
	actorID string,
	filter *revealDomain.ListFilter,
) ([]*revealDomain.RevealRequest, error) {
	args := m.Called(ctx, actorID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*revealDomain.RevealRequest), args.Error(1)
}

// ExpireStale mocks the ExpireStale method.
func (m *MockRevealUseCase) ExpireStale(ctx context.Context, limit int, dryRun bool) (int, error) {
	args := m.Called(ctx, limit, dryRun)
	return args.Int(0), args.Error(1)
}

// CanReadAudit mocks the CanReadAudit method.
func (m *MockRevealUseCase) CanReadAudit(ctx context.Context, actorID, resourceType, resourceID string) error {
	args := m.Called(ctx, actorID, resourceType, resourceID)
	return args.Error(0)
}
