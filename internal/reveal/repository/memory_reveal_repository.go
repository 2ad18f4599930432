package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/xambitlan/disclosure/internal/database"
	revealDomain "github.com/xambitlan/disclosure/internal/reveal/domain"
)

type pairKey struct {
	serviceID string
	clientID  string
}

// MemoryRevealRequestRepository keeps reveal requests in process memory. It
// enforces the same pending-pair and payment-reference uniqueness and version
// checks as the SQL stores.
type MemoryRevealRequestRepository struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*revealDomain.RevealRequest
	pending  map[pairKey]uuid.UUID
	payments map[string]uuid.UUID
}

// NewMemoryRevealRequestRepository creates an empty in-memory repository.
func NewMemoryRevealRequestRepository() *MemoryRevealRequestRepository {
	return &MemoryRevealRequestRepository{
		requests: make(map[uuid.UUID]*revealDomain.RevealRequest),
		pending:  make(map[pairKey]uuid.UUID),
		payments: make(map[string]uuid.UUID),
	}
}

func keyOf(request *revealDomain.RevealRequest) pairKey {
	return pairKey{serviceID: request.ServiceID, clientID: request.ClientID}
}

func (m *MemoryRevealRequestRepository) Create(ctx context.Context, request *revealDomain.RevealRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.requests[request.ID]; ok {
		return revealDomain.ErrDuplicateRequest
	}
	pending := request.Status == revealDomain.StatusPending
	if _, ok := m.pending[keyOf(request)]; ok && pending {
		return revealDomain.ErrDuplicateRequest
	}
	if _, ok := m.payments[request.PaymentRef]; ok {
		return revealDomain.ErrPaymentAlreadyUsed
	}

	if pending {
		m.pending[keyOf(request)] = request.ID
	}
	m.payments[request.PaymentRef] = request.ID

	r := *request
	m.requests[request.ID] = &r

	database.OnRollback(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.requests, r.ID)
		delete(m.payments, r.PaymentRef)
		if m.pending[keyOf(&r)] == r.ID {
			delete(m.pending, keyOf(&r))
		}
	})
	return nil
}

func (m *MemoryRevealRequestRepository) GetByID(
	_ context.Context,
	id uuid.UUID,
) (*revealDomain.RevealRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.requests[id]
	if !ok {
		return nil, revealDomain.ErrRevealRequestNotFound
	}
	out := *r
	return &out, nil
}

func (m *MemoryRevealRequestRepository) Update(
	ctx context.Context,
	request *revealDomain.RevealRequest,
	expectedVersion int64,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.requests[request.ID]
	if !ok || stored.Version != expectedVersion {
		return revealDomain.ErrVersionConflict
	}

	wasPending := stored.Status == revealDomain.StatusPending && m.pending[keyOf(stored)] == stored.ID
	if wasPending && request.Status != revealDomain.StatusPending {
		delete(m.pending, keyOf(stored))
	}

	r := *request
	m.requests[request.ID] = &r

	database.OnRollback(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.requests[stored.ID] = stored
		if wasPending {
			m.pending[keyOf(stored)] = stored.ID
		}
	})
	return nil
}

func (m *MemoryRevealRequestRepository) List(
	_ context.Context,
	participantID string,
	filter *revealDomain.ListFilter,
) ([]*revealDomain.RevealRequest, error) {
	m.mu.RLock()
	matches := make([]*revealDomain.RevealRequest, 0)
	for _, r := range m.requests {
		owner := r.ClientID
		if filter.Role == revealDomain.RoleProvider {
			owner = r.ProviderID
		}
		if owner != participantID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out := *r
		matches = append(matches, &out)
	}
	m.mu.RUnlock()

	slices.SortFunc(matches, func(a, b *revealDomain.RevealRequest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID.String(), a.ID.String())
	})

	if filter.Offset >= len(matches) {
		return []*revealDomain.RevealRequest{}, nil
	}
	end := len(matches)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return matches[filter.Offset:end], nil
}

func (m *MemoryRevealRequestRepository) ListStale(
	_ context.Context,
	filter *revealDomain.StaleFilter,
) ([]*revealDomain.RevealRequest, error) {
	m.mu.RLock()
	stale := make([]*revealDomain.RevealRequest, 0)
	for _, r := range m.requests {
		if r.Status != revealDomain.StatusPending && r.Status != revealDomain.StatusApproved {
			continue
		}
		if !r.ExpiresAt.Before(filter.Now) {
			continue
		}
		if filter.ServiceID != "" && (r.ServiceID != filter.ServiceID || r.ClientID != filter.ClientID) {
			continue
		}
		if filter.ParticipantID != "" {
			owner := r.ClientID
			if filter.Role == revealDomain.RoleProvider {
				owner = r.ProviderID
			}
			if owner != filter.ParticipantID {
				continue
			}
		}
		out := *r
		stale = append(stale, &out)
	}
	m.mu.RUnlock()

	slices.SortFunc(stale, func(a, b *revealDomain.RevealRequest) int {
		return a.ExpiresAt.Compare(b.ExpiresAt)
	})
	if filter.Limit > 0 && len(stale) > filter.Limit {
		stale = stale[:filter.Limit]
	}
	return stale, nil
}

// MemoryServiceDirectory is a ServiceDirectory for the memory driver and tests.
type MemoryServiceDirectory struct {
	mu       sync.RWMutex
	services map[string]revealDomain.Service
}

// NewMemoryServiceDirectory creates an empty directory.
func NewMemoryServiceDirectory() *MemoryServiceDirectory {
	return &MemoryServiceDirectory{services: make(map[string]revealDomain.Service)}
}

// Register adds or replaces a service.
func (m *MemoryServiceDirectory) Register(service revealDomain.Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[service.ID] = service
}

func (m *MemoryServiceDirectory) GetService(_ context.Context, serviceID string) (*revealDomain.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	service, ok := m.services[serviceID]
	if !ok {
		return nil, revealDomain.ErrServiceNotFound
	}
	return &service, nil
}

type paymentKey struct {
	reference string
	clientID  string
	serviceID string
}

// MemoryPaymentLedger is a PaymentVerifier for the memory driver and tests.
type MemoryPaymentLedger struct {
	mu        sync.RWMutex
	confirmed map[paymentKey]struct{}
}

// NewMemoryPaymentLedger creates a ledger with no confirmed payments.
func NewMemoryPaymentLedger() *MemoryPaymentLedger {
	return &MemoryPaymentLedger{confirmed: make(map[paymentKey]struct{})}
}

// Confirm records paymentRef as paid by clientID for serviceID.
func (m *MemoryPaymentLedger) Confirm(paymentRef, clientID, serviceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmed[paymentKey{paymentRef, clientID, serviceID}] = struct{}{}
}

func (m *MemoryPaymentLedger) VerifyPayment(_ context.Context, paymentRef, clientID, serviceID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.confirmed[paymentKey{paymentRef, clientID, serviceID}]
	return ok, nil
}
