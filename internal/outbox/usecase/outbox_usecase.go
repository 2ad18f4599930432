// Package usecase implements the outbox worker that delivers events written by
// reveal request transitions.
package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/xambitlan/disclosure/internal/database"
	"github.com/xambitlan/disclosure/internal/outbox/domain"
)

// Config tunes the worker loop.
type Config struct {
	// Interval between polls.
	Interval time.Duration
	// BatchSize caps the events claimed per poll.
	BatchSize int
	// MaxRetries is the number of failed deliveries after which an event is marked failed.
	MaxRetries int
}

// OutboxEventRepository stores events. Reveal transitions Create them inside
// their own transaction; the worker claims and updates them.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	// GetPendingEvents returns up to limit pending events, oldest first. SQL
	// implementations lock the rows for the surrounding transaction.
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
}

// EventProcessor delivers one event. A returned error counts as a failed attempt.
type EventProcessor interface {
	Process(ctx context.Context, event *domain.OutboxEvent) error
}

// UseCase is the worker surface used by the server command.
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// OutboxUseCase claims pending events in batches and hands them to an EventProcessor.
type OutboxUseCase struct {
	config         Config
	txManager      database.TxManager
	outboxRepo     OutboxEventRepository
	eventProcessor EventProcessor
	logger         *slog.Logger
	now            func() time.Time
}

// NewOutboxUseCase creates the worker. A nil logger discards output.
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	eventProcessor EventProcessor,
	logger *slog.Logger,
) *OutboxUseCase {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &OutboxUseCase{
		config:         config,
		txManager:      txManager,
		outboxRepo:     outboxRepo,
		eventProcessor: eventProcessor,
		logger:         logger,
		now:            time.Now,
	}
}

// Start polls every Interval until ctx is cancelled, then returns ctx.Err().
// A failed batch is logged and retried on the next tick.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	uc.logger.Info("starting outbox worker",
		slog.Duration("interval", uc.config.Interval),
		slog.Int("batch_size", uc.config.BatchSize),
		slog.Int("max_retries", uc.config.MaxRetries),
	)

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("stopping outbox worker")
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				uc.logger.Error("outbox batch failed", slog.Any("error", err))
			}
		}
	}
}

// ProcessEvents delivers one batch inside a transaction so claimed rows stay
// locked until their new status is written. Delivery failures are recorded on
// the event; storage failures abort the batch and roll back the claim.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}

		delivered := 0
		for _, event := range events {
			if uc.deliver(ctx, event) {
				delivered++
			}
			if err := uc.outboxRepo.Update(ctx, event); err != nil {
				return err
			}
		}

		if len(events) > 0 {
			uc.logger.Debug("outbox batch done",
				slog.Int("claimed", len(events)),
				slog.Int("delivered", delivered),
			)
		}
		return nil
	})
}

// deliver runs the processor and records the outcome on event.
func (uc *OutboxUseCase) deliver(ctx context.Context, event *domain.OutboxEvent) bool {
	now := uc.now().UTC()

	err := uc.eventProcessor.Process(ctx, event)
	if err == nil {
		event.MarkProcessed(now)
		return true
	}

	event.MarkFailed(err, uc.config.MaxRetries, now)
	uc.logger.Warn("outbox delivery failed",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.EventType),
		slog.Int("retries", event.Retries),
		slog.String("status", string(event.Status)),
		slog.Any("error", err),
	)
	return false
}
