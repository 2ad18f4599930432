// Package mocks provides mock implementations for testing identity consumers.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	identityDomain "github.com/xambitlan/disclosure/internal/identity/domain"
)

// MockChallengeRepository is a mock implementation of ChallengeRepository.
type MockChallengeRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockChallengeRepository) Create(ctx context.Context, challenge *identityDomain.Challenge) error {
	args := m.Called(ctx, challenge)
	return args.Error(0)
}

// GetByNonceHash mocks the GetByNonceHash method.
func (m *MockChallengeRepository) GetByNonceHash(
	ctx context.Context,
	nonceHash string,
) (*identityDomain.Challenge, error) {
	args := m.Called(ctx, nonceHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Challenge), args.Error(1)
}

// Consume mocks the Consume method.
func (m *MockChallengeRepository) Consume(ctx context.Context, challengeID uuid.UUID, consumedAt time.Time) error {
	args := m.Called(ctx, challengeID, consumedAt)
	return args.Error(0)
}

// CountExpired mocks the CountExpired method.
func (m *MockChallengeRepository) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// DeleteExpired mocks the DeleteExpired method.
func (m *MockChallengeRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockSessionRepository is a mock implementation of SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockSessionRepository) Create(ctx context.Context, session *identityDomain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// GetByTokenHash mocks the GetByTokenHash method.
func (m *MockSessionRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*identityDomain.Session, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Session), args.Error(1)
}

// CountExpired mocks the CountExpired method.
func (m *MockSessionRepository) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// DeleteExpired mocks the DeleteExpired method.
func (m *MockSessionRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockIdentityUseCase is a mock implementation of IdentityUseCase.
type MockIdentityUseCase struct {
	mock.Mock
}

// IssueChallenge mocks the IssueChallenge method.
func (m *MockIdentityUseCase) IssueChallenge(ctx context.Context) (*identityDomain.IssueChallengeOutput, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.IssueChallengeOutput), args.Error(1)
}

// EstablishSession mocks the EstablishSession method.
func (m *MockIdentityUseCase) EstablishSession(
	ctx context.Context,
	input *identityDomain.EstablishSessionInput,
) (*identityDomain.EstablishSessionOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.EstablishSessionOutput), args.Error(1)
}

// Authenticate mocks the Authenticate method.
func (m *MockIdentityUseCase) Authenticate(ctx context.Context, tokenHash string) (*identityDomain.Identity, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.Identity), args.Error(1)
}

// CleanupExpired mocks the CleanupExpired method.
func (m *MockIdentityUseCase) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}
