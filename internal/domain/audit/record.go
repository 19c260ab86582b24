// Package audit defines the settlement audit archive: an append-only copy
// of every settlement event, kept in document storage for offline review.
// The archive is downstream of the ledger and never participates in
// settlement decisions.
package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cosmetic-storefront/internal/domain/shared"
)

// Record is an archived settlement event
type Record struct {
	EventID       uuid.UUID        `json:"event_id" bson:"event_id"`
	UserID        uuid.UUID        `json:"user_id" bson:"user_id"`
	Kind          shared.EntryType `json:"kind" bson:"kind"`
	CosmeticID    string           `json:"cosmetic_id" bson:"cosmetic_id"`
	Amount        int64            `json:"amount" bson:"amount"`
	BalanceAfter  int64            `json:"balance_after" bson:"balance_after"`
	GrantedIDs    []string         `json:"granted_ids,omitempty" bson:"granted_ids,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at" bson:"occurred_at"`
	CorrelationID string           `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	ArchivedAt    time.Time        `json:"archived_at" bson:"archived_at"`
}

// FromEvent builds an archive record from a settlement event
func FromEvent(event *shared.SettlementEvent) *Record {
	return &Record{
		EventID:       event.EventID,
		UserID:        event.UserID,
		Kind:          event.Kind,
		CosmeticID:    event.CosmeticID,
		Amount:        event.Amount,
		BalanceAfter:  event.BalanceAfter,
		GrantedIDs:    event.GrantedIDs,
		OccurredAt:    event.OccurredAt,
		CorrelationID: event.CorrelationID,
		ArchivedAt:    time.Now().UTC(),
	}
}

// ErrRecordNotFound is returned when no archive record exists for an event
type ErrRecordNotFound struct {
	EventID uuid.UUID
}

func (e ErrRecordNotFound) Error() string {
	return fmt.Sprintf("audit record not found for event: %s", e.EventID)
}

// Is implements error matching for errors.Is
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	return t.EventID == uuid.Nil || t.EventID == e.EventID
}
