package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
	"github.com/xambitlan/disclosure/internal/config"
	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
	"github.com/xambitlan/disclosure/internal/database"
	apperrors "github.com/xambitlan/disclosure/internal/errors"
	outboxDomain "github.com/xambitlan/disclosure/internal/outbox/domain"
	revealDomain "github.com/xambitlan/disclosure/internal/reveal/domain"
	tokenDomain "github.com/xambitlan/disclosure/internal/token/domain"
	tokenService "github.com/xambitlan/disclosure/internal/token/service"
)

// staleBatchSize bounds how many overdue requests one read path expires.
const staleBatchSize = 100

// revealUseCase implements RevealUseCase.
type revealUseCase struct {
	config      *config.Config
	txManager   database.TxManager
	requestRepo RevealRequestRepository
	outboxRepo  OutboxEventRepository
	auditTrail  AuditAppender
	payments    PaymentVerifier
	directory   ServiceDirectory
	tokens      tokenService.AccessTokenService
	contacts    ContactOpener
	now         func() time.Time
}

// Option configures a RevealUseCase.
type Option func(*revealUseCase)

// WithClock replaces time.Now for expiry decisions and timestamps.
func WithClock(now func() time.Time) Option {
	return func(u *revealUseCase) {
		u.now = now
	}
}

// transition describes the audit entry and outbox event written with a state change.
type transition struct {
	actorID string
	action  auditDomain.Action
	details map[string]string
	event   string
}

// Create verifies the payment, expires any overdue PENDING request of the pair
// and inserts the new request. The pending-pair unique index turns a concurrent
// second insert into ErrDuplicateRequest, and the payment reference index makes
// each payment fund one request only (ErrPaymentAlreadyUsed), so a denied or
// approved request cannot be followed by another on the same payment.
func (u *revealUseCase) Create(
	ctx context.Context,
	actorID string,
	input *revealDomain.CreateInput,
) (*revealDomain.RevealRequest, error) {
	service, err := u.directory.GetService(ctx, input.ServiceID)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(service.ProviderID, actorID) {
		return nil, revealDomain.ErrSelfRequest
	}

	verified, err := u.payments.VerifyPayment(ctx, input.PaymentRef, actorID, service.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to verify payment")
	}
	if !verified {
		return nil, revealDomain.ErrPaymentNotVerified
	}

	now := u.now().UTC().Truncate(time.Microsecond)
	if _, err := u.expireStale(ctx, &revealDomain.StaleFilter{
		ServiceID: service.ID,
		ClientID:  actorID,
		Now:       now,
		Limit:     staleBatchSize,
	}); err != nil {
		return nil, err
	}

	request := &revealDomain.RevealRequest{
		ID:         uuid.Must(uuid.NewV7()),
		ServiceID:  service.ID,
		ClientID:   actorID,
		ProviderID: service.ProviderID,
		Status:     revealDomain.StatusPending,
		PaymentRef: input.PaymentRef,
		Message:    input.Message,
		ExpiresAt:  now.Add(u.config.RevealRequestTTL),
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
	}

	err = u.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := u.requestRepo.Create(ctx, request); err != nil {
			return err
		}
		return u.record(ctx, request, "", transition{
			actorID: actorID,
			action:  auditDomain.ActionRevealRequest,
			details: map[string]string{"service_id": service.ID, "payment_ref": input.PaymentRef},
			event:   revealDomain.EventRevealRequestCreated,
		})
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

// Consent applies the provider's decision with a version compare-and-swap, so of
// two concurrent decisions exactly one is stored and the other gets ErrInvalidState.
func (u *revealUseCase) Consent(
	ctx context.Context,
	actorID string,
	requestID uuid.UUID,
	input *revealDomain.ConsentInput,
) (*revealDomain.RevealRequest, error) {
	request, err := u.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.IsProvider(actorID) {
		return nil, revealDomain.ErrUnauthorizedActor
	}
	if request.Status != revealDomain.StatusPending {
		return nil, revealDomain.ErrInvalidState
	}

	now := u.now().UTC()
	var decided *revealDomain.RevealRequest

	err = u.txManager.WithTx(ctx, func(ctx context.Context) error {
		if !input.Approve {
			var err error
			decided, err = u.transition(ctx, request, transition{
				actorID: actorID,
				action:  auditDomain.ActionRevealDeny,
				details: map[string]string{"decision": "denied"},
				event:   revealDomain.EventRevealRequestRefundRequested,
			}, func(next *revealDomain.RevealRequest) {
				next.Status = revealDomain.StatusDenied
				next.ConsentSignature = input.Signature
				next.ConsentMessage = input.SignedMessage
			})
			return err
		}

		expiresAt := now.Add(u.config.AccessTokenTTL).Truncate(time.Millisecond)
		token, err := u.tokens.Issue(request.ID.String(), request.ClientID, request.ProviderID, expiresAt)
		if err != nil {
			return err
		}

		decided, err = u.transition(ctx, request, transition{
			actorID: actorID,
			action:  auditDomain.ActionRevealConsent,
			details: map[string]string{"decision": "approved"},
			event:   revealDomain.EventRevealRequestApproved,
		}, func(next *revealDomain.RevealRequest) {
			next.Status = revealDomain.StatusApproved
			next.ConsentSignature = input.Signature
			next.ConsentMessage = input.SignedMessage
			next.AccessToken = token
			next.ExpiresAt = expiresAt
		})
		return err
	})
	if errors.Is(err, revealDomain.ErrVersionConflict) {
		return nil, revealDomain.ErrInvalidState
	}
	if err != nil {
		return nil, err
	}

	return decided.ViewFor(actorID), nil
}

// ResolveContact checks the token before touching storage. A forged token is
// audited as suspicious; an expired one is not. Repeated calls return the same
// record for the lifetime of the token.
func (u *revealUseCase) ResolveContact(
	ctx context.Context,
	actorID string,
	requestID uuid.UUID,
	token string,
) (*contactDomain.ContactRecord, error) {
	result := u.tokens.Verify(token)
	if result.Reason == tokenDomain.ReasonInvalidSignature {
		if err := u.recordSuspicious(ctx, actorID, requestID); err != nil {
			return nil, err
		}
		return nil, tokenDomain.ErrInvalidTokenSignature
	}
	if !result.Valid {
		return nil, result.Err()
	}
	if result.Payload.RequestID != requestID.String() {
		return nil, revealDomain.ErrInvalidState
	}

	request, err := u.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.IsClient(actorID) {
		return nil, revealDomain.ErrUnauthorizedActor
	}
	if request.Status != revealDomain.StatusApproved ||
		!request.IsClient(result.Payload.ClientID) ||
		!request.IsProvider(result.Payload.ProviderID) {
		return nil, revealDomain.ErrInvalidState
	}

	record, err := u.contacts.Open(ctx, request.ProviderID)
	if err != nil {
		return nil, err
	}

	err = u.txManager.WithTx(ctx, func(ctx context.Context) error {
		_, err := u.auditTrail.Append(ctx, &auditDomain.AppendInput{
			UserID:       actorID,
			Action:       auditDomain.ActionRevealAccess,
			ResourceType: auditDomain.ResourceRevealRequest,
			ResourceID:   request.ID.String(),
			Details:      map[string]string{"status": string(request.Status)},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (u *revealUseCase) Get(
	ctx context.Context,
	actorID string,
	requestID uuid.UUID,
) (*revealDomain.RevealRequest, error) {
	request, err := u.load(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.IsParticipant(actorID) {
		return nil, revealDomain.ErrRevealRequestNotFound
	}
	return request.ViewFor(actorID), nil
}

func (u *revealUseCase) List(
	ctx context.Context,
	actorID string,
	filter *revealDomain.ListFilter,
) ([]*revealDomain.RevealRequest, error) {
	if filter.Role != revealDomain.RoleClient && filter.Role != revealDomain.RoleProvider {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "role must be client or provider")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "unknown status")
	}

	if _, err := u.expireStale(ctx, &revealDomain.StaleFilter{
		ParticipantID: actorID,
		Role:          filter.Role,
		Now:           u.now().UTC(),
		Limit:         staleBatchSize,
	}); err != nil {
		return nil, err
	}

	requests, err := u.requestRepo.List(ctx, actorID, filter)
	if err != nil {
		return nil, err
	}

	views := make([]*revealDomain.RevealRequest, 0, len(requests))
	for _, request := range requests {
		views = append(views, request.ViewFor(actorID))
	}
	return views, nil
}

func (u *revealUseCase) ExpireStale(ctx context.Context, limit int, dryRun bool) (int, error) {
	filter := &revealDomain.StaleFilter{Now: u.now().UTC(), Limit: limit}
	if dryRun {
		stale, err := u.requestRepo.ListStale(ctx, filter)
		if err != nil {
			return 0, err
		}
		return len(stale), nil
	}
	return u.expireStale(ctx, filter)
}

func (u *revealUseCase) CanReadAudit(ctx context.Context, actorID, resourceType, resourceID string) error {
	if resourceType != auditDomain.ResourceRevealRequest {
		return apperrors.Wrap(apperrors.ErrForbidden, "not a reveal request chain")
	}
	id, err := uuid.Parse(resourceID)
	if err != nil {
		return revealDomain.ErrRevealRequestNotFound
	}

	request, err := u.requestRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !request.IsParticipant(actorID) {
		return revealDomain.ErrRevealRequestNotFound
	}
	return nil
}

// load reads a request and applies lazy expiry.
func (u *revealUseCase) load(ctx context.Context, id uuid.UUID) (*revealDomain.RevealRequest, error) {
	request, err := u.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.ShouldExpire(u.now()) {
		return u.expire(ctx, request)
	}
	return request, nil
}

// expire moves request to EXPIRED in its own transaction. Losing the version
// race means another transition already happened; the stored row is returned.
func (u *revealUseCase) expire(
	ctx context.Context,
	request *revealDomain.RevealRequest,
) (*revealDomain.RevealRequest, error) {
	var expired *revealDomain.RevealRequest

	err := u.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		expired, err = u.transition(ctx, request, transition{
			action: auditDomain.ActionRevealExpire,
			event:  revealDomain.EventRevealRequestExpired,
		}, func(next *revealDomain.RevealRequest) {
			next.Status = revealDomain.StatusExpired
		})
		return err
	})
	if errors.Is(err, revealDomain.ErrVersionConflict) {
		return u.requestRepo.GetByID(ctx, request.ID)
	}
	if err != nil {
		return nil, err
	}
	return expired, nil
}

func (u *revealUseCase) expireStale(ctx context.Context, filter *revealDomain.StaleFilter) (int, error) {
	stale, err := u.requestRepo.ListStale(ctx, filter)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, request := range stale {
		expired, err := u.expire(ctx, request)
		if err != nil {
			return count, err
		}
		if expired.Status == revealDomain.StatusExpired {
			count++
		}
	}
	return count, nil
}

// transition applies mutate to a copy of current, stores it if current.Version
// is still the stored version, and records the audit entry and outbox event.
func (u *revealUseCase) transition(
	ctx context.Context,
	current *revealDomain.RevealRequest,
	t transition,
	mutate func(next *revealDomain.RevealRequest),
) (*revealDomain.RevealRequest, error) {
	next := *current
	mutate(&next)
	next.Version = current.Version + 1
	next.UpdatedAt = u.now().UTC().Truncate(time.Microsecond)

	if err := u.requestRepo.Update(ctx, &next, current.Version); err != nil {
		return nil, err
	}
	if err := u.record(ctx, &next, current.Status, t); err != nil {
		return nil, err
	}
	return &next, nil
}

// record appends the transition's audit entry and queues its outbox event.
func (u *revealUseCase) record(
	ctx context.Context,
	request *revealDomain.RevealRequest,
	previous revealDomain.Status,
	t transition,
) error {
	details := map[string]string{"status": string(request.Status)}
	if previous != "" {
		details["previous_status"] = string(previous)
	}
	for k, v := range t.details {
		details[k] = v
	}

	if _, err := u.auditTrail.Append(ctx, &auditDomain.AppendInput{
		UserID:       t.actorID,
		Action:       t.action,
		ResourceType: auditDomain.ResourceRevealRequest,
		ResourceID:   request.ID.String(),
		Details:      details,
	}); err != nil {
		return err
	}

	if t.event == "" {
		return nil
	}
	event, err := outboxDomain.NewOutboxEvent(t.event, revealDomain.NewEventPayload(request, previous), request.UpdatedAt)
	if err != nil {
		return err
	}
	return u.outboxRepo.Create(ctx, event)
}

// recordSuspicious audits a forged token presented for requestID. Attempts on
// an id that matches no request go to the actor's identity chain, so callers
// cannot open audit chains for arbitrary resource ids.
func (u *revealUseCase) recordSuspicious(ctx context.Context, actorID string, requestID uuid.UUID) error {
	input := &auditDomain.AppendInput{
		UserID:       actorID,
		Action:       auditDomain.ActionRevealAccessSuspicious,
		ResourceType: auditDomain.ResourceRevealRequest,
		ResourceID:   requestID.String(),
		Details:      map[string]string{"reason": string(tokenDomain.ReasonInvalidSignature)},
	}

	_, err := u.requestRepo.GetByID(ctx, requestID)
	switch {
	case errors.Is(err, revealDomain.ErrRevealRequestNotFound):
		input.ResourceType = auditDomain.ResourceIdentity
		input.ResourceID = actorID
		input.Details["request_id"] = requestID.String()
	case err != nil:
		return err
	}

	return u.txManager.WithTx(ctx, func(ctx context.Context) error {
		_, err := u.auditTrail.Append(ctx, input)
		return err
	})
}

// NewRevealUseCase creates a new RevealUseCase.
func NewRevealUseCase(
	config *config.Config,
	txManager database.TxManager,
	requestRepo RevealRequestRepository,
	outboxRepo OutboxEventRepository,
	auditTrail AuditAppender,
	payments PaymentVerifier,
	directory ServiceDirectory,
	tokens tokenService.AccessTokenService,
	contacts ContactOpener,
	opts ...Option,
) RevealUseCase {
	u := &revealUseCase{
		config:      config,
		txManager:   txManager,
		requestRepo: requestRepo,
		outboxRepo:  outboxRepo,
		auditTrail:  auditTrail,
		payments:    payments,
		directory:   directory,
		tokens:      tokens,
		contacts:    contacts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}
