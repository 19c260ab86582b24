package shared

import (
	"time"

	"github.com/google/uuid"
)

// SettlementEvent is the message emitted after a purchase or return has been
// committed. It is written to the outbox inside the settlement's own database
// transaction and published to Kafka afterwards, so a consumer never sees an
// event for a settlement that did not happen.
type SettlementEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	UserID        uuid.UUID `json:"user_id"`
	Kind          EntryType `json:"kind"`
	CosmeticID    string    `json:"cosmetic_id"`
	Amount        int64     `json:"amount"` // Signed balance delta in credits
	BalanceAfter  int64     `json:"balance_after"`
	GrantedIDs    []string  `json:"granted_ids,omitempty"` // Bundle companions granted at zero cost
	OccurredAt    time.Time `json:"occurred_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}
