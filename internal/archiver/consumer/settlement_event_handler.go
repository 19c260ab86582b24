// Package consumer handles settlement events arriving from Kafka and feeds
// them to the archive service. Undecodable messages go to the dead letter
// queue instead of blocking the partition.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cosmetic-storefront/internal/archiver/service"
	"github.com/cosmetic-storefront/internal/domain/shared"
	"github.com/cosmetic-storefront/internal/platform/messaging/producers"
)

// SettlementEventHandler handles incoming settlement event messages from Kafka
type SettlementEventHandler struct {
	archiveService service.ArchiveService
	producer       producers.DeadLetterPublisher
	logger         *slog.Logger
}

// NewSettlementEventHandler creates a new handler
func NewSettlementEventHandler(
	logger *slog.Logger,
	archiveService service.ArchiveService,
	producer producers.DeadLetterPublisher,
) *SettlementEventHandler {
	return &SettlementEventHandler{
		archiveService: archiveService,
		producer:       producer,
		logger:         logger,
	}
}

// HandleMessage processes one Kafka message. A nil return commits the
// offset; an error leaves the message for redelivery.
func (h *SettlementEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.SettlementEvent
	if err := json.Unmarshal(value, &event); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal settlement event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka redelivery
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received settlement event for archiving",
		"event_id", event.EventID.String(),
		"user_id", event.UserID.String(),
		"kind", event.Kind,
		"amount", event.Amount,
	)

	if err := h.archiveService.ArchiveEvent(ctx, &event); err != nil {
		logger.Error("Failed to archive settlement event",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return fmt.Errorf("archiving settlement event %s failed: %w", event.EventID.String(), err)
	}

	return nil
}
