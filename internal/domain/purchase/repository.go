package purchase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages purchase record persistence. Records are inserted open,
// closed at most once, and never deleted.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	GetOpen(ctx context.Context, userID uuid.UUID, cosmeticID string) (*Record, error)
	HasOpen(ctx context.Context, userID uuid.UUID, cosmeticID string) (bool, error)

	// Close stamps ReturnedAt on an open record. Returns ErrNotOwned if the
	// record was already closed underneath us.
	Close(ctx context.Context, id uuid.UUID, at time.Time) error

	ListHistory(ctx context.Context, userID uuid.UUID) ([]*HistoryItem, error)
	ListOwned(ctx context.Context, userID uuid.UUID) ([]*OwnedItem, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrAlreadyOwned indicates an open record already exists for the pair.
// Callers must not blindly retry a purchase that failed this way.
type ErrAlreadyOwned struct {
	UserID     uuid.UUID
	CosmeticID string
}

func (e ErrAlreadyOwned) Error() string {
	return "cosmetic already owned: user " + e.UserID.String() + ", cosmetic " + e.CosmeticID
}

// Is implements the errors.Is interface for ErrAlreadyOwned
func (e ErrAlreadyOwned) Is(target error) bool {
	t, ok := target.(ErrAlreadyOwned)
	if !ok {
		return false
	}
	if t.UserID == uuid.Nil && t.CosmeticID == "" {
		return true
	}
	return e.UserID == t.UserID && e.CosmeticID == t.CosmeticID
}

// ErrNotOwned covers both "never bought" and "already returned"; the two
// are indistinguishable to the caller
type ErrNotOwned struct {
	UserID     uuid.UUID
	CosmeticID string
}

func (e ErrNotOwned) Error() string {
	return "cosmetic not owned or already returned: user " + e.UserID.String() + ", cosmetic " + e.CosmeticID
}

// Is implements the errors.Is interface for ErrNotOwned
func (e ErrNotOwned) Is(target error) bool {
	t, ok := target.(ErrNotOwned)
	if !ok {
		return false
	}
	if t.UserID == uuid.Nil && t.CosmeticID == "" {
		return true
	}
	return e.UserID == t.UserID && e.CosmeticID == t.CosmeticID
}
