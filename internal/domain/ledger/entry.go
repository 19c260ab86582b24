package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/cosmetic-storefront/internal/domain/shared"
)

// Entry is one row of the append-only transaction log. Every balance
// mutation writes exactly one entry in the same database transaction, so the
// log replays to the current balance. Entries are never updated or deleted.
type Entry struct {
	ID         uuid.UUID        `json:"id" bson:"entry_id"`
	UserID     uuid.UUID        `json:"user_id" bson:"user_id"`
	Type       shared.EntryType `json:"type" bson:"type"`
	Amount     int64            `json:"amount" bson:"amount"` // Signed: negative debits, positive credits, zero allowed
	CosmeticID string           `json:"cosmetic_id,omitempty" bson:"cosmetic_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at" bson:"created_at"`
}

// NewEntry creates a log entry for a balance-affecting event
func NewEntry(userID uuid.UUID, entryType shared.EntryType, amount int64, cosmeticID string, at time.Time) *Entry {
	return &Entry{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       entryType,
		Amount:     amount,
		CosmeticID: cosmeticID,
		CreatedAt:  at,
	}
}
