package usecase_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
	auditRepository "github.com/xambitlan/disclosure/internal/audit/repository"
	auditUsecase "github.com/xambitlan/disclosure/internal/audit/usecase"
	auditMocks "github.com/xambitlan/disclosure/internal/audit/usecase/mocks"
	"github.com/xambitlan/disclosure/internal/config"
	"github.com/xambitlan/disclosure/internal/database"
	identityDomain "github.com/xambitlan/disclosure/internal/identity/domain"
	identityRepository "github.com/xambitlan/disclosure/internal/identity/repository"
	identityService "github.com/xambitlan/disclosure/internal/identity/service"
	"github.com/xambitlan/disclosure/internal/identity/usecase"
	usecaseMocks "github.com/xambitlan/disclosure/internal/identity/usecase/mocks"
)

const (
	gatewaySecret = "gateway-secret"
	nullifier     = "0xABCDEF0000000000000000000000000000000000000000000000000000000001"
)

type identityFixture struct {
	challengeRepo *usecaseMocks.MockChallengeRepository
	sessionRepo   *usecaseMocks.MockSessionRepository
	auditTrail    *auditMocks.MockAuditUseCase
	nonces        identityService.NonceService
	tokens        identityService.TokenService
	useCase       usecase.IdentityUseCase
}

func newIdentityFixture(t *testing.T) *identityFixture {
	t.Helper()

	verifier, err := identityService.NewHMACAssertionVerifier(gatewaySecret)
	require.NoError(t, err)

	f := &identityFixture{
		challengeRepo: &usecaseMocks.MockChallengeRepository{},
		sessionRepo:   &usecaseMocks.MockSessionRepository{},
		auditTrail:    &auditMocks.MockAuditUseCase{},
		nonces:        identityService.NewNonceService(),
		tokens:        identityService.NewTokenService(),
	}
	f.useCase = usecase.NewIdentityUseCase(
		&config.Config{ChallengeTTL: 5 * time.Minute, SessionTTL: 4 * time.Hour},
		database.NewLocalTxManager(),
		f.challengeRepo,
		f.sessionRepo,
		f.auditTrail,
		f.nonces,
		f.tokens,
		verifier,
	)
	return f
}

func TestIdentityUseCase_IssueChallenge(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()

	var stored *identityDomain.Challenge
	f.challengeRepo.On("Create", ctx, mock.AnythingOfType("*domain.Challenge")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*identityDomain.Challenge) }).
		Return(nil).Once()

	output, err := f.useCase.IssueChallenge(ctx)
	require.NoError(t, err)

	assert.Len(t, output.Nonce, 64)
	assert.Equal(t, stored.ID, output.ID)
	assert.Equal(t, f.nonces.Hash(output.Nonce), stored.NonceHash)
	assert.NotContains(t, stored.NonceHash, output.Nonce)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), output.ExpiresAt, 5*time.Second)
	assert.Nil(t, stored.ConsumedAt)
	f.challengeRepo.AssertExpectations(t)
}

func TestIdentityUseCase_EstablishSession(t *testing.T) {
	nonce := strings.Repeat("ab", 32)

	validInput := func() *identityDomain.EstablishSessionInput {
		return &identityDomain.EstablishSessionInput{
			NullifierHash: nullifier,
			Nonce:         nonce,
			Assertion:     identityService.SignAssertion(gatewaySecret, nullifier, nonce),
		}
	}
	openChallenge := func() *identityDomain.Challenge {
		return &identityDomain.Challenge{
			ID:        uuid.Must(uuid.NewV7()),
			NonceHash: identityService.NewNonceService().Hash(nonce),
			ExpiresAt: time.Now().Add(time.Minute),
		}
	}

	t.Run("Success_IssuesSessionAndAudits", func(t *testing.T) {
		f := newIdentityFixture(t)
		challenge := openChallenge()

		var session *identityDomain.Session
		f.challengeRepo.On("GetByNonceHash", mock.Anything, challenge.NonceHash).Return(challenge, nil).Once()
		f.challengeRepo.On("Consume", mock.Anything, challenge.ID, mock.AnythingOfType("time.Time")).
			Return(nil).Once()
		f.sessionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Session")).
			Run(func(args mock.Arguments) { session = args.Get(1).(*identityDomain.Session) }).
			Return(nil).Once()
		f.auditTrail.On("Append", mock.Anything, mock.MatchedBy(func(in *auditDomain.AppendInput) bool {
			return in.Action == auditDomain.ActionUserVerify &&
				in.ResourceType == auditDomain.ResourceIdentity &&
				in.ResourceID == strings.ToLower(nullifier)
		})).Return(&auditDomain.AuditEntry{}, nil).Once()

		output, err := f.useCase.EstablishSession(context.Background(), validInput())
		require.NoError(t, err)

		assert.Equal(t, strings.ToLower(nullifier), output.IdentityID)
		assert.Equal(t, f.tokens.HashToken(output.Token), session.TokenHash)
		assert.Equal(t, output.IdentityID, session.IdentityID)
		assert.Equal(t, session.ExpiresAt, output.ExpiresAt)
		f.challengeRepo.AssertExpectations(t)
		f.sessionRepo.AssertExpectations(t)
		f.auditTrail.AssertExpectations(t)
	})

	t.Run("Error_UnknownNonce", func(t *testing.T) {
		f := newIdentityFixture(t)
		f.challengeRepo.On("GetByNonceHash", mock.Anything, mock.Anything).
			Return(nil, identityDomain.ErrChallengeNotFound).Once()

		_, err := f.useCase.EstablishSession(context.Background(), validInput())
		assert.ErrorIs(t, err, identityDomain.ErrChallengeNotFound)
		f.sessionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error_Replay", func(t *testing.T) {
		f := newIdentityFixture(t)
		challenge := openChallenge()
		consumedAt := time.Now().Add(-time.Second)
		challenge.ConsumedAt = &consumedAt
		f.challengeRepo.On("GetByNonceHash", mock.Anything, challenge.NonceHash).Return(challenge, nil).Once()

		_, err := f.useCase.EstablishSession(context.Background(), validInput())
		assert.ErrorIs(t, err, identityDomain.ErrChallengeConsumed)
		f.challengeRepo.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_Expired", func(t *testing.T) {
		f := newIdentityFixture(t)
		challenge := openChallenge()
		challenge.ExpiresAt = time.Now().Add(-time.Second)
		f.challengeRepo.On("GetByNonceHash", mock.Anything, challenge.NonceHash).Return(challenge, nil).Once()

		_, err := f.useCase.EstablishSession(context.Background(), validInput())
		assert.ErrorIs(t, err, identityDomain.ErrChallengeExpired)
	})

	t.Run("Error_AssertionForOtherSignal", func(t *testing.T) {
		f := newIdentityFixture(t)
		challenge := openChallenge()
		f.challengeRepo.On("GetByNonceHash", mock.Anything, challenge.NonceHash).Return(challenge, nil).Once()

		input := validInput()
		input.Assertion = identityService.SignAssertion(gatewaySecret, nullifier, "some-other-nonce")

		_, err := f.useCase.EstablishSession(context.Background(), input)
		assert.ErrorIs(t, err, identityDomain.ErrInvalidAssertion)
		f.challengeRepo.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_LostConsumeRace", func(t *testing.T) {
		f := newIdentityFixture(t)
		challenge := openChallenge()
		f.challengeRepo.On("GetByNonceHash", mock.Anything, challenge.NonceHash).Return(challenge, nil).Once()
		f.challengeRepo.On("Consume", mock.Anything, challenge.ID, mock.Anything).
			Return(identityDomain.ErrChallengeConsumed).Once()

		_, err := f.useCase.EstablishSession(context.Background(), validInput())
		assert.ErrorIs(t, err, identityDomain.ErrChallengeConsumed)
		f.sessionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestIdentityUseCase_EstablishSession_ConcurrentRedemption(t *testing.T) {
	verifier, err := identityService.NewHMACAssertionVerifier(gatewaySecret)
	require.NoError(t, err)

	uc := usecase.NewIdentityUseCase(
		&config.Config{ChallengeTTL: time.Minute, SessionTTL: time.Hour},
		database.NewLocalTxManager(),
		identityRepository.NewMemoryChallengeRepository(),
		identityRepository.NewMemorySessionRepository(),
		auditUsecase.NewAuditUseCase(auditRepository.NewMemoryAuditRepository()),
		identityService.NewNonceService(),
		identityService.NewTokenService(),
		verifier,
	)

	ctx := context.Background()
	challenge, err := uc.IssueChallenge(ctx)
	require.NoError(t, err)

	input := &identityDomain.EstablishSessionInput{
		NullifierHash: nullifier,
		Nonce:         challenge.Nonce,
		Assertion:     identityService.SignAssertion(gatewaySecret, nullifier, challenge.Nonce),
	}

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		replays   int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.EstablishSession(ctx, input)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, identityDomain.ErrChallengeConsumed):
				replays++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, replays)
}

func TestIdentityUseCase_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newIdentityFixture(t)
		session := &identityDomain.Session{
			ID:         uuid.Must(uuid.NewV7()),
			IdentityID: "0xabc",
			ExpiresAt:  time.Now().Add(time.Hour),
		}
		f.sessionRepo.On("GetByTokenHash", ctx, "hash").Return(session, nil).Once()

		identity, err := f.useCase.Authenticate(ctx, "hash")
		require.NoError(t, err)
		assert.Equal(t, "0xabc", identity.ID)
		assert.Equal(t, session.ID, identity.SessionID)
	})

	t.Run("Error_Unknown", func(t *testing.T) {
		f := newIdentityFixture(t)
		f.sessionRepo.On("GetByTokenHash", ctx, "hash").Return(nil, identityDomain.ErrSessionNotFound).Once()

		_, err := f.useCase.Authenticate(ctx, "hash")
		assert.ErrorIs(t, err, identityDomain.ErrSessionNotFound)
	})

	t.Run("Error_Expired", func(t *testing.T) {
		f := newIdentityFixture(t)
		f.sessionRepo.On("GetByTokenHash", ctx, "hash").Return(&identityDomain.Session{
			IdentityID: "0xabc",
			ExpiresAt:  time.Now().Add(-time.Second),
		}, nil).Once()

		_, err := f.useCase.Authenticate(ctx, "hash")
		assert.ErrorIs(t, err, identityDomain.ErrSessionExpired)
	})
}

func TestIdentityUseCase_CleanupExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("Error_NegativeDays", func(t *testing.T) {
		f := newIdentityFixture(t)
		_, err := f.useCase.CleanupExpired(ctx, -1, false)
		assert.Error(t, err)
	})

	t.Run("DryRun_Counts", func(t *testing.T) {
		f := newIdentityFixture(t)
		f.sessionRepo.On("CountExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(3), nil).Once()
		f.challengeRepo.On("CountExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(4), nil).Once()

		count, err := f.useCase.CleanupExpired(ctx, 7, true)
		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
		f.sessionRepo.AssertNotCalled(t, "DeleteExpired", mock.Anything, mock.Anything)
	})

	t.Run("Delete", func(t *testing.T) {
		f := newIdentityFixture(t)
		f.sessionRepo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(2), nil).Once()
		f.challengeRepo.On("DeleteExpired", ctx, mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()

		count, err := f.useCase.CleanupExpired(ctx, 0, false)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
