package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages transaction log persistence. Append and read only;
// there is deliberately no update or delete.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrEntryNotFound indicates missing transaction log entry
type ErrEntryNotFound struct {
	EntryID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "transaction entry not found: " + e.EntryID.String()
}

// Is implements the errors.Is interface for ErrEntryNotFound
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	if t.EntryID == uuid.Nil {
		return true
	}
	return e.EntryID == t.EntryID
}
