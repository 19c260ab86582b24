package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/cosmetic-storefront/internal/domain/account"
	"github.com/cosmetic-storefront/internal/domain/catalog"
	"github.com/cosmetic-storefront/internal/domain/ledger"
	"github.com/cosmetic-storefront/internal/domain/purchase"
)

// AuthService defines the interface for account registration and login
type AuthService interface {
	// Register creates an account with the configured signup credits.
	// Returns ErrDuplicateEmail if the email is already taken.
	Register(ctx context.Context, email, password string) (*account.Account, string, error)

	// Login verifies credentials and issues a signed token.
	// Returns ErrInvalidCredentials for an unknown email or wrong password.
	Login(ctx context.Context, email, password string) (*account.Account, string, error)

	// ChangePassword verifies the current password before setting a new one
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
}

// CatalogService defines the interface for catalog reads
type CatalogService interface {
	// ListCosmetics retrieves a filtered catalog page and the total match count
	ListCosmetics(ctx context.Context, filter catalog.Filter, page, perPage int) ([]*catalog.Cosmetic, int64, error)

	// GetCosmetic retrieves one cosmetic plus whether the given user owns it.
	// Ownership is always false for uuid.Nil (anonymous callers).
	GetCosmetic(ctx context.Context, id string, userID uuid.UUID) (*catalog.Cosmetic, bool, error)

	// LastSync reports the most recent catalog sync run, nil if none yet
	LastSync(ctx context.Context) (*catalog.SyncRecord, error)

	// TriggerSync runs a catalog sync immediately
	TriggerSync(ctx context.Context) (*catalog.SyncRecord, error)
}

// StoreService defines the interface for purchase and return settlement
type StoreService interface {
	// Purchase settles a purchase for the user at the current effective price
	Purchase(ctx context.Context, userID uuid.UUID, cosmeticID, correlationID string) (*purchase.Receipt, error)

	// Return settles a return, refunding the captured purchase price
	Return(ctx context.Context, userID uuid.UUID, cosmeticID, correlationID string) (*purchase.ReturnReceipt, error)
}

// UserService defines the interface for profile and history reads
type UserService interface {
	// GetAccount retrieves the account, ErrAccountNotFound if missing
	GetAccount(ctx context.Context, userID uuid.UUID) (*account.Account, error)

	// ListAccounts retrieves a page of the account directory plus the
	// total account count
	ListAccounts(ctx context.Context, page, perPage int) ([]*account.Account, int64, error)

	// GetTransactions retrieves a page of the user's transaction log plus
	// the total entry count
	GetTransactions(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*ledger.Entry, int64, error)

	// GetOwned retrieves the user's currently owned cosmetics
	GetOwned(ctx context.Context, userID uuid.UUID) ([]*purchase.OwnedItem, error)

	// GetHistory retrieves the user's full purchase history, returns included
	GetHistory(ctx context.Context, userID uuid.UUID) ([]*purchase.HistoryItem, error)
}
