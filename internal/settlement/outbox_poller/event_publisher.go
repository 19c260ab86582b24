// Package outbox_poller drains the settlement outbox into Kafka. The outbox
// row is written in the settlement's own transaction; this package is the
// bridge that turns committed rows into published events.
package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cosmetic-storefront/internal/domain/outbox"
	"github.com/cosmetic-storefront/internal/domain/shared"
	"github.com/cosmetic-storefront/internal/platform/messaging/producers"
)

// EventPublisher publishes outbox messages to the settlement topic
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl implements EventPublisher
type EventPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent decodes the outbox payload, publishes it keyed by user (so a
// user's events stay ordered within their partition), and marks the outbox
// row processed. A payload that cannot decode is parked as
// FAILED_TO_PUBLISH immediately; retrying it can never succeed.
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.GetSettlementEvent()
	if err != nil {
		p.logger.Error("Failed to decode settlement event from outbox payload",
			"outbox_id", message.ID, "event_id", message.EventID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to park undecodable outbox message", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("decode payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	if err := p.producer.Publish(ctx, event.UserID.String(), event); err != nil {
		logger.Error("Failed to publish settlement event",
			"outbox_id", message.ID, "event_id", event.EventID, "error", err,
		)
		return fmt.Errorf("failed to publish settlement event %s: %w", event.EventID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to mark outbox message as PROCESSED",
			"outbox_id", message.ID, "event_id", event.EventID, "error", err,
		)
		// The event is on the topic; the consumer's idempotent archive
		// absorbs the duplicate this leaves behind.
		return fmt.Errorf("event %s published, but failed to mark outbox %d as PROCESSED: %w", event.EventID, message.ID, err)
	}

	logger.Info("Outbox message published and marked as PROCESSED", "outbox_id", message.ID, "event_id", event.EventID)
	return nil
}
