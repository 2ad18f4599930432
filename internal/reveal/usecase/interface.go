// Package usecase implements the reveal request state machine.
package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
	outboxDomain "github.com/xambitlan/disclosure/internal/outbox/domain"
	revealDomain "github.com/xambitlan/disclosure/internal/reveal/domain"
)

// RevealRequestRepository persists reveal requests.
// Implementations must support transaction-aware operations via context propagation.
type RevealRequestRepository interface {
	// Create inserts a PENDING request. Returns ErrDuplicateRequest when the
	// (service, client) pair already has a PENDING request.
	Create(ctx context.Context, request *revealDomain.RevealRequest) error

	// GetByID returns ErrRevealRequestNotFound for unknown ids.
	GetByID(ctx context.Context, id uuid.UUID) (*revealDomain.RevealRequest, error)

	// Update writes request only if the stored version is still expectedVersion,
	// otherwise it returns ErrVersionConflict.
	Update(ctx context.Context, request *revealDomain.RevealRequest, expectedVersion int64) error

	// List returns one side of participantID's requests, newest first.
	List(
		ctx context.Context,
		participantID string,
		filter *revealDomain.ListFilter,
	) ([]*revealDomain.RevealRequest, error)

	// ListStale returns PENDING or APPROVED requests with ExpiresAt before filter.Now.
	ListStale(ctx context.Context, filter *revealDomain.StaleFilter) ([]*revealDomain.RevealRequest, error)
}

// ServiceDirectory resolves a service to the provider who owns it.
type ServiceDirectory interface {
	// GetService returns ErrServiceNotFound for unknown services.
	GetService(ctx context.Context, serviceID string) (*revealDomain.Service, error)
}

// PaymentVerifier asks the payment collaborator whether paymentRef is a
// confirmed payment by clientID for serviceID.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, paymentRef, clientID, serviceID string) (bool, error)
}

// OutboxEventRepository is where transitions leave their notifications.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// AuditAppender is the slice of the audit trail the state machine needs.
type AuditAppender interface {
	Append(ctx context.Context, input *auditDomain.AppendInput) (*auditDomain.AuditEntry, error)
}

// ContactOpener decrypts a provider's stored contact record.
type ContactOpener interface {
	Open(ctx context.Context, providerID string) (*contactDomain.ContactRecord, error)
}

// RevealUseCase drives reveal requests through their lifecycle. Every call
// takes the acting identity explicitly.
type RevealUseCase interface {
	// Create opens a PENDING request after the payment is verified.
	Create(
		ctx context.Context,
		actorID string,
		input *revealDomain.CreateInput,
	) (*revealDomain.RevealRequest, error)

	// Consent records the provider's decision. Approval mints the access token.
	Consent(
		ctx context.Context,
		actorID string,
		requestID uuid.UUID,
		input *revealDomain.ConsentInput,
	) (*revealDomain.RevealRequest, error)

	// ResolveContact returns the provider's plaintext contact for a valid token.
	// It is the only operation that returns contact plaintext.
	ResolveContact(
		ctx context.Context,
		actorID string,
		requestID uuid.UUID,
		token string,
	) (*contactDomain.ContactRecord, error)

	// Get returns a request visible to actorID, applying lazy expiry.
	Get(ctx context.Context, actorID string, requestID uuid.UUID) (*revealDomain.RevealRequest, error)

	// List returns actorID's requests on one side, applying lazy expiry first.
	List(
		ctx context.Context,
		actorID string,
		filter *revealDomain.ListFilter,
	) ([]*revealDomain.RevealRequest, error)

	// ExpireStale moves up to limit overdue requests to EXPIRED and returns how
	// many it moved. With dryRun it only counts them.
	ExpireStale(ctx context.Context, limit int, dryRun bool) (int, error)

	// CanReadAudit allows the client and the provider to read a request's chain.
	CanReadAudit(ctx context.Context, actorID, resourceType, resourceID string) error
}
