package usecase

import (
	"context"
	"time"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
	"github.com/xambitlan/disclosure/internal/metrics"
)

// auditUseCaseWithMetrics decorates AuditUseCase with metrics instrumentation.
type auditUseCaseWithMetrics struct {
	next    AuditUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditUseCaseWithMetrics wraps an AuditUseCase with metrics recording.
func NewAuditUseCaseWithMetrics(useCase AuditUseCase, m metrics.BusinessMetrics) AuditUseCase {
	return &auditUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *auditUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusOf(err)
	a.metrics.RecordOperation(ctx, metrics.DomainAudit, operation, status)
	a.metrics.RecordDuration(ctx, metrics.DomainAudit, operation, time.Since(start), status)
}

// Append records metrics for audit append operations.
func (a *auditUseCaseWithMetrics) Append(
	ctx context.Context,
	input *auditDomain.AppendInput,
) (*auditDomain.AuditEntry, error) {
	start := time.Now()
	entry, err := a.next.Append(ctx, input)
	a.record(ctx, "append", start, err)
	return entry, err
}

// List records metrics for audit list operations.
func (a *auditUseCaseWithMetrics) List(
	ctx context.Context,
	resourceType, resourceID string,
	offset, limit int,
) ([]*auditDomain.AuditEntry, error) {
	start := time.Now()
	entries, err := a.next.List(ctx, resourceType, resourceID, offset, limit)
	a.record(ctx, "list", start, err)
	return entries, err
}

// Verify records metrics for chain verification. A broken chain counts as "tampered".
func (a *auditUseCaseWithMetrics) Verify(
	ctx context.Context,
	resourceType, resourceID string,
) (*auditDomain.ChainReport, error) {
	start := time.Now()
	report, err := a.next.Verify(ctx, resourceType, resourceID)

	status := metrics.StatusOf(err)
	if err == nil && !report.Valid {
		status = "tampered"
	}
	a.metrics.RecordOperation(ctx, metrics.DomainAudit, "verify", status)
	a.metrics.RecordDuration(ctx, metrics.DomainAudit, "verify", time.Since(start), status)

	return report, err
}

// VerifyAll records metrics for full-store verification.
func (a *auditUseCaseWithMetrics) VerifyAll(ctx context.Context) ([]*auditDomain.ChainReport, error) {
	start := time.Now()
	reports, err := a.next.VerifyAll(ctx)
	a.record(ctx, "verify_all", start, err)
	return reports, err
}
