package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/xambitlan/disclosure/internal/database"
	apperrors "github.com/xambitlan/disclosure/internal/errors"
	"github.com/xambitlan/disclosure/internal/outbox/domain"
)

// MemoryOutboxEventRepository keeps outbox events in process memory, in insertion order.
type MemoryOutboxEventRepository struct {
	mu     sync.Mutex
	order  []uuid.UUID
	events map[uuid.UUID]*domain.OutboxEvent
}

// NewMemoryOutboxEventRepository creates an empty in-memory outbox.
func NewMemoryOutboxEventRepository() *MemoryOutboxEventRepository {
	return &MemoryOutboxEventRepository{events: make(map[uuid.UUID]*domain.OutboxEvent)}
}

func (r *MemoryOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[event.ID]; ok {
		return apperrors.Wrap(apperrors.ErrConflict, "outbox event already exists")
	}
	e := *event
	r.events[event.ID] = &e
	r.order = append(r.order, event.ID)

	database.OnRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.events, e.ID)
		r.order = slices.DeleteFunc(r.order, func(id uuid.UUID) bool { return id == e.ID })
	})
	return nil
}

func (r *MemoryOutboxEventRepository) GetPendingEvents(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]*domain.OutboxEvent, 0)
	for _, id := range r.order {
		if len(events) == limit {
			break
		}
		stored := r.events[id]
		if stored.Status != domain.OutboxEventStatusPending {
			continue
		}
		e := *stored
		events = append(events, &e)
	}
	return events, nil
}

func (r *MemoryOutboxEventRepository) Update(_ context.Context, event *domain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[event.ID]; !ok {
		return nil
	}
	e := *event
	r.events[event.ID] = &e
	return nil
}
