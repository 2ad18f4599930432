// Package usecase implements provider contact storage on top of envelope encryption.
package usecase

import (
	"context"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
)

// ContactRepository persists one vault entry per provider.
type ContactRepository interface {
	// Upsert inserts or replaces the provider's envelope and hash.
	Upsert(ctx context.Context, vault *contactDomain.ContactVault) error

	// GetByProviderID returns ErrContactNotFound when the provider has no entry.
	GetByProviderID(ctx context.Context, providerID string) (*contactDomain.ContactVault, error)
}

// AuditAppender is the slice of the audit trail contact needs.
type AuditAppender interface {
	Append(ctx context.Context, input *auditDomain.AppendInput) (*auditDomain.AuditEntry, error)
}

// ContactUseCase manages encrypted provider contact records.
type ContactUseCase interface {
	// SetContact encrypts and stores the provider's record and audits the change.
	SetContact(
		ctx context.Context,
		providerID string,
		record *contactDomain.ContactRecord,
	) (*contactDomain.ContactVault, error)

	// GetContactHash returns the digest stored next to the provider's envelope.
	GetContactHash(ctx context.Context, providerID string) (string, error)

	// Open decrypts the provider's record. It has no HTTP route of its own;
	// plaintext leaves the service only through an approved reveal request.
	Open(ctx context.Context, providerID string) (*contactDomain.ContactRecord, error)

	// CanReadAudit allows a provider to read the audit chain of their own contact.
	CanReadAudit(ctx context.Context, actorID, resourceType, resourceID string) error
}
