package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
	"github.com/xambitlan/disclosure/internal/config"
	"github.com/xambitlan/disclosure/internal/database"
	apperrors "github.com/xambitlan/disclosure/internal/errors"
	identityDomain "github.com/xambitlan/disclosure/internal/identity/domain"
	identityService "github.com/xambitlan/disclosure/internal/identity/service"
)

// identityUseCase implements IdentityUseCase.
type identityUseCase struct {
	config            *config.Config
	txManager         database.TxManager
	challengeRepo     ChallengeRepository
	sessionRepo       SessionRepository
	auditTrail        AuditAppender
	nonceService      identityService.NonceService
	tokenService      identityService.TokenService
	assertionVerifier identityService.AssertionVerifier
	now               func() time.Time
}

// IssueChallenge generates a nonce and persists only its Keccak-256 hash.
func (i *identityUseCase) IssueChallenge(ctx context.Context) (*identityDomain.IssueChallengeOutput, error) {
	nonce, err := i.nonceService.Generate()
	if err != nil {
		return nil, err
	}

	now := i.now().UTC()
	challenge := &identityDomain.Challenge{
		ID:        uuid.Must(uuid.NewV7()),
		NonceHash: i.nonceService.Hash(nonce),
		ExpiresAt: now.Add(i.config.ChallengeTTL),
		CreatedAt: now,
	}
	if err := i.challengeRepo.Create(ctx, challenge); err != nil {
		return nil, err
	}

	return &identityDomain.IssueChallengeOutput{
		ID:        challenge.ID,
		Nonce:     nonce,
		ExpiresAt: challenge.ExpiresAt,
	}, nil
}

// EstablishSession runs the reveal half of commit-then-reveal.
//
// The challenge is looked up by nonce hash, checked for expiry and reuse, and the
// gateway assertion is verified with the nonce as signal. Only then is the challenge
// consumed, with a conditional update so two concurrent redemptions cannot both
// succeed. A failed assertion leaves the challenge usable.
func (i *identityUseCase) EstablishSession(
	ctx context.Context,
	input *identityDomain.EstablishSessionInput,
) (*identityDomain.EstablishSessionOutput, error) {
	var output *identityDomain.EstablishSessionOutput

	err := i.txManager.WithTx(ctx, func(ctx context.Context) error {
		challenge, err := i.challengeRepo.GetByNonceHash(ctx, i.nonceService.Hash(input.Nonce))
		if err != nil {
			return err
		}

		now := i.now().UTC()
		if challenge.ConsumedAt != nil {
			return identityDomain.ErrChallengeConsumed
		}
		if !challenge.IsUsable(now) {
			return identityDomain.ErrChallengeExpired
		}

		if err := i.assertionVerifier.Verify(ctx, input.NullifierHash, input.Nonce, input.Assertion); err != nil {
			return err
		}

		if err := i.challengeRepo.Consume(ctx, challenge.ID, now); err != nil {
			return err
		}

		plainToken, tokenHash, err := i.tokenService.GenerateToken()
		if err != nil {
			return err
		}

		identityID := strings.ToLower(input.NullifierHash)
		session := &identityDomain.Session{
			ID:         uuid.Must(uuid.NewV7()),
			IdentityID: identityID,
			TokenHash:  tokenHash,
			ExpiresAt:  now.Add(i.config.SessionTTL),
			CreatedAt:  now,
		}
		if err := i.sessionRepo.Create(ctx, session); err != nil {
			return err
		}

		if _, err := i.auditTrail.Append(ctx, &auditDomain.AppendInput{
			UserID:       identityID,
			Action:       auditDomain.ActionUserVerify,
			ResourceType: auditDomain.ResourceIdentity,
			ResourceID:   identityID,
			Details: map[string]string{
				"challenge_id": challenge.ID.String(),
				"session_id":   session.ID.String(),
			},
		}); err != nil {
			return err
		}

		output = &identityDomain.EstablishSessionOutput{
			IdentityID: identityID,
			Token:      plainToken,
			ExpiresAt:  session.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// Authenticate returns ErrSessionNotFound or ErrSessionExpired for unusable tokens.
func (i *identityUseCase) Authenticate(ctx context.Context, tokenHash string) (*identityDomain.Identity, error) {
	session, err := i.sessionRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}

	if !i.now().UTC().Before(session.ExpiresAt) {
		return nil, identityDomain.ErrSessionExpired
	}

	return &identityDomain.Identity{
		ID:        session.IdentityID,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (i *identityUseCase) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.New("days must be non-negative")
	}

	cutoff := i.now().UTC().AddDate(0, 0, -days)

	if dryRun {
		sessions, err := i.sessionRepo.CountExpired(ctx, cutoff)
		if err != nil {
			return 0, err
		}
		challenges, err := i.challengeRepo.CountExpired(ctx, cutoff)
		if err != nil {
			return 0, err
		}
		return sessions + challenges, nil
	}

	sessions, err := i.sessionRepo.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	challenges, err := i.challengeRepo.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	return sessions + challenges, nil
}

// NewIdentityUseCase creates a new IdentityUseCase with the provided dependencies.
func NewIdentityUseCase(
	config *config.Config,
	txManager database.TxManager,
	challengeRepo ChallengeRepository,
	sessionRepo SessionRepository,
	auditTrail AuditAppender,
	nonceService identityService.NonceService,
	tokenService identityService.TokenService,
	assertionVerifier identityService.AssertionVerifier,
) IdentityUseCase {
	return &identityUseCase{
		config:            config,
		txManager:         txManager,
		challengeRepo:     challengeRepo,
		sessionRepo:       sessionRepo,
		auditTrail:        auditTrail,
		nonceService:      nonceService,
		tokenService:      tokenService,
		assertionVerifier: assertionVerifier,
		now:               time.Now,
	}
}
