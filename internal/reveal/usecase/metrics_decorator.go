package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
	"github.com/xambitlan/disclosure/internal/metrics"
	revealDomain "github.com/xambitlan/disclosure/internal/reveal/domain"
	tokenDomain "github.com/xambitlan/disclosure/internal/token/domain"
)

// revealUseCaseWithMetrics decorates RevealUseCase with metrics instrumentation.
type revealUseCaseWithMetrics struct {
	next    RevealUseCase
	metrics metrics.BusinessMetrics
}

// NewRevealUseCaseWithMetrics wraps a RevealUseCase with metrics recording.
func NewRevealUseCaseWithMetrics(useCase RevealUseCase, m metrics.BusinessMetrics) RevealUseCase {
	return &revealUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *revealUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	r.recordStatus(ctx, operation, start, metrics.StatusOf(err))
}

func (r *revealUseCaseWithMetrics) recordStatus(ctx context.Context, operation string, start time.Time, status string) {
	r.metrics.RecordOperation(ctx, metrics.DomainReveal, operation, status)
	r.metrics.RecordDuration(ctx, metrics.DomainReveal, operation, time.Since(start), status)
}

// resolveStatus labels token rejections so forged attempts stand out from expiry.
func resolveStatus(err error) string {
	switch {
	case errors.Is(err, tokenDomain.ErrInvalidTokenSignature):
		return "forged"
	case errors.Is(err, tokenDomain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, tokenDomain.ErrInvalidTokenFormat):
		return "malformed"
	default:
		return metrics.StatusOf(err)
	}
}

// Create records metrics for reveal request creation.
func (r *revealUseCaseWithMetrics) Create(
	ctx context.Context,
	actorID string,
	input *revealDomain.CreateInput,
) (*revealDomain.RevealRequest, error) {
	start := time.Now()
	request, err := r.next.Create(ctx, actorID, input)
	r.record(ctx, "create", start, err)
	return request, err
}

// Consent records metrics for consent decisions, split by outcome.
func (r *revealUseCaseWithMetrics) Consent(
	ctx context.Context,
	actorID string,
	requestID uuid.UUID,
	input *revealDomain.ConsentInput,
) (*revealDomain.RevealRequest, error) {
	start := time.Now()
	request, err := r.next.Consent(ctx, actorID, requestID, input)
	operation := "deny"
	if input.Approve {
		operation = "approve"
	}
	r.record(ctx, operation, start, err)
	return request, err
}

// ResolveContact records metrics for contact resolution, labelled by token outcome.
func (r *revealUseCaseWithMetrics) ResolveContact(
	ctx context.Context,
	actorID string,
	requestID uuid.UUID,
	token string,
) (*contactDomain.ContactRecord, error) {
	start := time.Now()
	record, err := r.next.ResolveContact(ctx, actorID, requestID, token)
	r.recordStatus(ctx, "resolve_contact", start, resolveStatus(err))
	return record, err
}

// Get records metrics for request lookups.
func (r *revealUseCaseWithMetrics) Get(
	ctx context.Context,
	actorID string,
	requestID uuid.UUID,
) (*revealDomain.RevealRequest, error) {
	start := time.Now()
	request, err := r.next.Get(ctx, actorID, requestID)
	r.record(ctx, "get", start, err)
	return request, err
}

// List records metrics for request listings.
func (r *revealUseCaseWithMetrics) List(
	ctx context.Context,
	actorID string,
	filter *revealDomain.ListFilter,
) ([]*revealDomain.RevealRequest, error) {
	start := time.Now()
	requests, err := r.next.List(ctx, actorID, filter)
	r.record(ctx, "list", start, err)
	return requests, err
}

// ExpireStale records metrics for expiry sweeps.
func (r *revealUseCaseWithMetrics) ExpireStale(ctx context.Context, limit int, dryRun bool) (int, error) {
	start := time.Now()
	count, err := r.next.ExpireStale(ctx, limit, dryRun)
	r.record(ctx, "expire_stale", start, err)
	return count, err
}

// CanReadAudit is a pure authorization check and is not measured.
func (r *revealUseCaseWithMetrics) CanReadAudit(ctx context.Context, actorID, resourceType, resourceID string) error {
	return r.next.CanReadAudit(ctx, actorID, resourceType, resourceID)
}
