package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines account persistence operations
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context, limit, offset int) ([]*Account, error)
	Count(ctx context.Context) (int64, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error

	// AdjustBalance applies a signed delta to the balance. Must only be
	// called on a repository bound to an open transaction that already
	// holds the account row lock.
	AdjustBalance(ctx context.Context, id uuid.UUID, delta int64) error

	// LockForUpdate acquires a row lock on the account for the duration of
	// the surrounding transaction, serializing settlements per user
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID.String()
}

// Is implements the errors.Is interface for ErrAccountNotFound
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.AccountID == uuid.Nil {
		return true
	}
	return e.AccountID == t.AccountID
}

// ErrDuplicateEmail indicates email uniqueness violation
type ErrDuplicateEmail struct {
	Email string
}

func (e ErrDuplicateEmail) Error() string {
	return "account with email already exists: " + e.Email
}

// ErrNegativeBalance indicates the balance check constraint rejected a debit.
// Surfacing it as a distinct kind lets the settlement engine translate it to
// an insufficient-credits failure instead of a generic store error.
type ErrNegativeBalance struct {
	AccountID uuid.UUID
}

func (e ErrNegativeBalance) Error() string {
	return "balance would go negative for account: " + e.AccountID.String()
}
