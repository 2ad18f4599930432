package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
	apperrors "github.com/xambitlan/disclosure/internal/errors"
)

const (
	maxAppendAttempts = 5
	verifyPageSize    = 500
)

// auditUseCase implements AuditUseCase.
type auditUseCase struct {
	auditRepo AuditRepository
	now       func() time.Time
}

// Append reads the chain head, seals the entry after it and inserts it.
// A lost sequence race is retried against the new head.
func (a *auditUseCase) Append(
	ctx context.Context,
	input *auditDomain.AppendInput,
) (*auditDomain.AuditEntry, error) {
	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		prev, err := a.auditRepo.LastEntry(ctx, input.ResourceType, input.ResourceID)
		if err != nil && !errors.Is(err, auditDomain.ErrChainNotFound) {
			return nil, apperrors.Wrap(err, "failed to read audit chain head")
		}

		entry := &auditDomain.AuditEntry{
			ID:           uuid.Must(uuid.NewV7()),
			UserID:       input.UserID,
			Action:       input.Action,
			ResourceType: input.ResourceType,
			ResourceID:   input.ResourceID,
			Details:      input.Details,
			Timestamp:    a.now().UTC().Truncate(time.Microsecond),
		}
		if err := entry.Seal(prev); err != nil {
			return nil, apperrors.Wrap(err, "failed to seal audit entry")
		}

		err = a.auditRepo.Create(ctx, entry)
		if errors.Is(err, auditDomain.ErrSequenceConflict) {
			continue
		}
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to append audit entry")
		}
		return entry, nil
	}
	return nil, auditDomain.ErrAppendContention
}

// List returns a page of the chain. An unknown resource yields an empty slice.
func (a *auditUseCase) List(
	ctx context.Context,
	resourceType, resourceID string,
	offset, limit int,
) ([]*auditDomain.AuditEntry, error) {
	entries, err := a.auditRepo.ListByResource(ctx, resourceType, resourceID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	return entries, nil
}

// Verify recomputes one chain. Returns ErrChainNotFound for a resource without entries.
func (a *auditUseCase) Verify(
	ctx context.Context,
	resourceType, resourceID string,
) (*auditDomain.ChainReport, error) {
	var entries []*auditDomain.AuditEntry
	for offset := 0; ; offset += verifyPageSize {
		page, err := a.auditRepo.ListByResource(ctx, resourceType, resourceID, offset, verifyPageSize)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to load audit chain")
		}
		entries = append(entries, page...)
		if len(page) < verifyPageSize {
			break
		}
	}

	if len(entries) == 0 {
		return nil, auditDomain.ErrChainNotFound
	}

	report := auditDomain.VerifyChain(entries)
	return &report, nil
}

// VerifyAll verifies each chain in turn and returns one report per chain.
func (a *auditUseCase) VerifyAll(ctx context.Context) ([]*auditDomain.ChainReport, error) {
	refs, err := a.auditRepo.ListResources(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit chains")
	}

	reports := make([]*auditDomain.ChainReport, 0, len(refs))
	for _, ref := range refs {
		report, err := a.Verify(ctx, ref.ResourceType, ref.ResourceID)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// NewAuditUseCase creates a new AuditUseCase.
func NewAuditUseCase(auditRepo AuditRepository) AuditUseCase {
	return &auditUseCase{
		auditRepo: auditRepo,
		now:       time.Now,
	}
}
