// Package usecase implements identity establishment and session authentication.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
	identityDomain "github.com/xambitlan/disclosure/internal/identity/domain"
)

// ChallengeRepository persists challenge commitments.
type ChallengeRepository interface {
	Create(ctx context.Context, challenge *identityDomain.Challenge) error

	// GetByNonceHash returns ErrChallengeNotFound for an unknown hash.
	GetByNonceHash(ctx context.Context, nonceHash string) (*identityDomain.Challenge, error)

	// Consume marks the challenge used only if it is still unused.
	// Returns ErrChallengeConsumed when another caller redeemed it first.
	Consume(ctx context.Context, challengeID uuid.UUID, consumedAt time.Time) error

	CountExpired(ctx context.Context, olderThan time.Time) (int64, error)
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// SessionRepository persists session token hashes.
type SessionRepository interface {
	Create(ctx context.Context, session *identityDomain.Session) error

	// GetByTokenHash returns ErrSessionNotFound for an unknown hash.
	GetByTokenHash(ctx context.Context, tokenHash string) (*identityDomain.Session, error)

	CountExpired(ctx context.Context, olderThan time.Time) (int64, error)
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// AuditAppender is the slice of the audit trail identity needs.
type AuditAppender interface {
	Append(ctx context.Context, input *auditDomain.AppendInput) (*auditDomain.AuditEntry, error)
}

// IdentityUseCase establishes and resolves request identities.
type IdentityUseCase interface {
	// IssueChallenge stores a nonce commitment and returns the nonce once.
	IssueChallenge(ctx context.Context) (*identityDomain.IssueChallengeOutput, error)

	// EstablishSession redeems a challenge with a gateway assertion and issues a bearer token.
	EstablishSession(
		ctx context.Context,
		input *identityDomain.EstablishSessionInput,
	) (*identityDomain.EstablishSessionOutput, error)

	// Authenticate resolves a bearer token hash to the identity behind it.
	Authenticate(ctx context.Context, tokenHash string) (*identityDomain.Identity, error)

	// CleanupExpired removes sessions and challenges that expired more than days ago.
	// With dryRun it only counts them.
	CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error)
}
