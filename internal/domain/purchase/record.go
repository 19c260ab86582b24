package purchase

import (
	"time"

	"github.com/google/uuid"
)

// Record links a user to a cosmetic at the price paid. A record with no
// return timestamp is an open record and defines "currently owned"; closing
// it (setting ReturnedAt) is the only mutation ever applied. Closed records
// are kept forever for audit, so a (user, cosmetic) pair can accumulate any
// number of closed records but at most one open one.
type Record struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	CosmeticID string     `json:"cosmetic_id"`
	Price      int64      `json:"price"` // Captured at purchase time, immutable
	CreatedAt  time.Time  `json:"created_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// NewRecord creates an open purchase record
func NewRecord(userID uuid.UUID, cosmeticID string, price int64, at time.Time) *Record {
	return &Record{
		ID:         uuid.New(),
		UserID:     userID,
		CosmeticID: cosmeticID,
		Price:      price,
		CreatedAt:  at,
	}
}

// Open reports whether the record still represents ownership
func (r *Record) Open() bool {
	return r.ReturnedAt == nil
}

// Receipt is returned to the caller after a successful purchase settlement.
// Granted lists cosmetics unlocked alongside the purchase through its bundle.
type Receipt struct {
	PurchaseID uuid.UUID `json:"id"`
	CosmeticID string    `json:"cosmetic_id"`
	Price      int64     `json:"price"`
	Granted    []string  `json:"granted,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReturnReceipt is returned to the caller after a successful return settlement
type ReturnReceipt struct {
	PurchaseID uuid.UUID `json:"id"`
	CosmeticID string    `json:"cosmetic_id"`
	Refunded   int64     `json:"refunded"`
	ReturnedAt time.Time `json:"returned_at"`
}

// HistoryItem is a purchase record joined with catalog display fields,
// open and returned rows alike
type HistoryItem struct {
	PurchaseID   uuid.UUID  `json:"id"`
	CosmeticID   string     `json:"cosmetic_id"`
	CosmeticName string     `json:"cosmetic_name"`
	ImageURL     string     `json:"image_url,omitempty"`
	Price        int64      `json:"price"`
	CreatedAt    time.Time  `json:"created_at"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
}

// OwnedItem is an open purchase record projected for public profile display
type OwnedItem struct {
	CosmeticID string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Rarity     string `json:"rarity"`
	ImageURL   string `json:"image_url,omitempty"`
}
