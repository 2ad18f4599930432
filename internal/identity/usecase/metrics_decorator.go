package usecase

import (
	"context"
	"time"

	identityDomain "github.com/xambitlan/disclosure/internal/identity/domain"
	"github.com/xambitlan/disclosure/internal/metrics"
)

// identityUseCaseWithMetrics decorates IdentityUseCase with metrics instrumentation.
type identityUseCaseWithMetrics struct {
	next    IdentityUseCase
	metrics metrics.BusinessMetrics
}

// NewIdentityUseCaseWithMetrics wraps an IdentityUseCase with metrics recording.
func NewIdentityUseCaseWithMetrics(useCase IdentityUseCase, m metrics.BusinessMetrics) IdentityUseCase {
	return &identityUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (i *identityUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	i.metrics.RecordOperation(ctx, metrics.DomainIdentity, operation, status)
	i.metrics.RecordDuration(ctx, metrics.DomainIdentity, operation, time.Since(start), status)
}

// IssueChallenge records metrics for challenge issuance.
func (i *identityUseCaseWithMetrics) IssueChallenge(
	ctx context.Context,
) (*identityDomain.IssueChallengeOutput, error) {
	start := time.Now()
	output, err := i.next.IssueChallenge(ctx)
	i.record(ctx, "challenge_issue", start, err)
	return output, err
}

// EstablishSession records metrics for session establishment.
func (i *identityUseCaseWithMetrics) EstablishSession(
	ctx context.Context,
	input *identityDomain.EstablishSessionInput,
) (*identityDomain.EstablishSessionOutput, error) {
	start := time.Now()
	output, err := i.next.EstablishSession(ctx, input)
	i.record(ctx, "session_establish", start, err)
	return output, err
}

// Authenticate records metrics for bearer token authentication.
func (i *identityUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	tokenHash string,
) (*identityDomain.Identity, error) {
	start := time.Now()
	identity, err := i.next.Authenticate(ctx, tokenHash)
	i.record(ctx, "authenticate", start, err)
	return identity, err
}

// CleanupExpired records metrics for expired session cleanup.
func (i *identityUseCaseWithMetrics) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := i.next.CleanupExpired(ctx, days, dryRun)
	i.record(ctx, "cleanup_expired", start, err)
	return count, err
}
