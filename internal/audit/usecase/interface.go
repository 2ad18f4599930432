// Package usecase implements the audit trail business logic.
package usecase

import (
	"context"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
)

// AuditRepository persists audit chains.
// Implementations must support transaction-aware operations via context propagation.
type AuditRepository interface {
	// LastEntry returns the highest-sequence entry of a chain, or ErrChainNotFound.
	// SQL implementations read with a row lock so the value is current inside a transaction.
	LastEntry(ctx context.Context, resourceType, resourceID string) (*auditDomain.AuditEntry, error)

	// Create inserts a sealed entry. Returns ErrSequenceConflict when the
	// (resource type, resource id, sequence) slot is already taken.
	Create(ctx context.Context, entry *auditDomain.AuditEntry) error

	// ListByResource returns a chain ordered by sequence ascending.
	ListByResource(
		ctx context.Context,
		resourceType, resourceID string,
		offset, limit int,
	) ([]*auditDomain.AuditEntry, error)

	// ListResources returns every (resource type, resource id) pair that owns a chain.
	ListResources(ctx context.Context) ([]auditDomain.ResourceRef, error)
}

// ReadAuthorizer decides whether an identity may read a resource's chain.
// It returns nil when allowed and an ErrForbidden or ErrNotFound wrapper otherwise.
type ReadAuthorizer interface {
	CanReadAudit(ctx context.Context, actorID, resourceType, resourceID string) error
}

// AuditUseCase defines the audit trail operations.
type AuditUseCase interface {
	// Append links a new entry to its resource chain and stores it. Call it with
	// the transaction of the state change it records.
	Append(ctx context.Context, input *auditDomain.AppendInput) (*auditDomain.AuditEntry, error)

	// List returns a page of a resource chain ordered by sequence.
	List(ctx context.Context, resourceType, resourceID string, offset, limit int) ([]*auditDomain.AuditEntry, error)

	// Verify loads the whole chain of a resource and recomputes it.
	Verify(ctx context.Context, resourceType, resourceID string) (*auditDomain.ChainReport, error)

	// VerifyAll verifies every chain in the store.
	VerifyAll(ctx context.Context) ([]*auditDomain.ChainReport, error)
}
