// Package service provides outbox event processors: a RabbitMQ publisher and a
// logging processor for deployments without a broker.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/xambitlan/disclosure/internal/outbox/domain"
	revealDomain "github.com/xambitlan/disclosure/internal/reveal/domain"
)

// LoggingProcessor writes each event to the log instead of delivering it.
type LoggingProcessor struct {
	logger *slog.Logger
}

// NewLoggingProcessor creates a new LoggingProcessor.
func NewLoggingProcessor(logger *slog.Logger) *LoggingProcessor {
	return &LoggingProcessor{logger: logger}
}

// Process logs who the event is addressed to. Unknown event types are logged
// and acknowledged.
func (p *LoggingProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	var payload revealDomain.EventPayload
	if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", event.EventType, err)
	}

	attrs := []slog.Attr{
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.EventType),
		slog.String("request_id", payload.RequestID),
	}

	switch event.EventType {
	case revealDomain.EventRevealRequestCreated:
		attrs = append(attrs, slog.String("notify", payload.ProviderID))
		p.log(ctx, slog.LevelInfo, "reveal request awaiting provider consent", attrs)
	case revealDomain.EventRevealRequestApproved:
		attrs = append(attrs, slog.String("notify", payload.ClientID))
		p.log(ctx, slog.LevelInfo, "reveal request approved", attrs)
	case revealDomain.EventRevealRequestRefundRequested:
		attrs = append(attrs, slog.String("payment_ref", payload.PaymentRef))
		p.log(ctx, slog.LevelInfo, "refund requested for denied reveal request", attrs)
	case revealDomain.EventRevealRequestExpired:
		attrs = append(attrs, slog.String("previous_status", string(payload.PreviousStatus)))
		p.log(ctx, slog.LevelInfo, "reveal request expired", attrs)
	default:
		p.log(ctx, slog.LevelWarn, "unknown event type", attrs)
	}
	return nil
}

func (p *LoggingProcessor) log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if p.logger == nil {
		return
	}
	p.logger.LogAttrs(ctx, level, msg, attrs...)
}
