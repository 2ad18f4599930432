package usecase

import (
	"context"
	"time"

	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
	"github.com/xambitlan/disclosure/internal/metrics"
)

// contactUseCaseWithMetrics decorates ContactUseCase with metrics instrumentation.
type contactUseCaseWithMetrics struct {
	next    ContactUseCase
	metrics metrics.BusinessMetrics
}

// NewContactUseCaseWithMetrics wraps a ContactUseCase with metrics recording.
func NewContactUseCaseWithMetrics(useCase ContactUseCase, m metrics.BusinessMetrics) ContactUseCase {
	return &contactUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *contactUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	c.metrics.RecordOperation(ctx, metrics.DomainContact, operation, status)
	c.metrics.RecordDuration(ctx, metrics.DomainContact, operation, time.Since(start), status)
}

// SetContact records metrics for contact updates.
func (c *contactUseCaseWithMetrics) SetContact(
	ctx context.Context,
	providerID string,
	record *contactDomain.ContactRecord,
) (*contactDomain.ContactVault, error) {
	start := time.Now()
	vault, err := c.next.SetContact(ctx, providerID, record)
	c.record(ctx, "set", start, err)
	return vault, err
}

// GetContactHash records metrics for hash lookups.
func (c *contactUseCaseWithMetrics) GetContactHash(ctx context.Context, providerID string) (string, error) {
	start := time.Now()
	hash, err := c.next.GetContactHash(ctx, providerID)
	c.record(ctx, "get_hash", start, err)
	return hash, err
}

// Open records metrics for contact decryption.
func (c *contactUseCaseWithMetrics) Open(
	ctx context.Context,
	providerID string,
) (*contactDomain.ContactRecord, error) {
	start := time.Now()
	record, err := c.next.Open(ctx, providerID)
	c.record(ctx, "open", start, err)
	return record, err
}

// CanReadAudit is a pure authorization check and is not measured.
func (c *contactUseCaseWithMetrics) CanReadAudit(ctx context.Context, actorID, resourceType, resourceID string) error {
	return c.next.CanReadAudit(ctx, actorID, resourceType, resourceID)
}
