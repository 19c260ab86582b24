package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Filter narrows catalog listings. Zero values mean "no constraint".
type Filter struct {
	Name        string
	Type        string
	Rarity      string
	IsNew       *bool
	OnSale      *bool
	OnPromotion bool
	BundleID    string
	FromDate    string
	ToDate      string
}

// Repository manages cosmetic catalog persistence. The write methods are
// used by the sync job only; the ledger side reads.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Cosmetic, error)
	ListByBundle(ctx context.Context, bundleID string) ([]*Cosmetic, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Cosmetic, error)
	Count(ctx context.Context, filter Filter) (int64, error)

	Upsert(ctx context.Context, cosmetic *Cosmetic) error
	ClearNewFlags(ctx context.Context) error
	MarkNew(ctx context.Context, ids []string) error
	MarkOnSale(ctx context.Context, id string, basePrice, salePrice *int64) error
	ListUnpriced(ctx context.Context) ([]*Cosmetic, error)
	SetBasePrice(ctx context.Context, id string, price int64) error

	WithTx(tx pgx.Tx) Repository
}

// SyncLogRepository records the outcome of catalog sync runs
type SyncLogRepository interface {
	Append(ctx context.Context, record *SyncRecord) error
	Latest(ctx context.Context) (*SyncRecord, error)
}

// SyncRecord summarizes one sync run
type SyncRecord struct {
	ID         uuid.UUID `json:"id"`
	RanAt      time.Time `json:"ran_at"`
	Upserted   int       `json:"upserted"`
	NewMarked  int       `json:"new_marked"`
	SaleMarked int       `json:"sale_marked"`
	Error      string    `json:"error,omitempty"`
}

// ErrCosmeticNotFound indicates missing catalog row
type ErrCosmeticNotFound struct {
	CosmeticID string
}

func (e ErrCosmeticNotFound) Error() string {
	return "cosmetic not found: " + e.CosmeticID
}

// Is implements the errors.Is interface for ErrCosmeticNotFound
func (e ErrCosmeticNotFound) Is(target error) bool {
	t, ok := target.(ErrCosmeticNotFound)
	if !ok {
		return false
	}
	if t.CosmeticID == "" {
		return true
	}
	return e.CosmeticID == t.CosmeticID
}
