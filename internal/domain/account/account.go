package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrEmptyPasswordHash   = errors.New("password hash cannot be empty")
)

// Account represents a storefront user and their credit balance.
// Credits are the only currency in the system and the balance never goes
// negative; both settlement engines enforce this before committing.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Balance      int64     `json:"balance"` // Credits, whole units
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewAccount creates an account with the given starting credit balance
func NewAccount(email string, passwordHash string, startingCredits int64) (*Account, error) {
	if email == "" {
		return nil, ErrEmptyEmail
	}
	if passwordHash == "" {
		return nil, ErrEmptyPasswordHash
	}
	if startingCredits < 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	return &Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Balance:      startingCredits,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Debit subtracts the amount from the balance. A zero amount is a valid
// no-op debit (free purchases still settle through the same path).
func (a *Account) Debit(amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if a.Balance < amount {
		return ErrInsufficientCredits
	}

	a.Balance -= amount
	a.UpdatedAt = time.Now()
	return nil
}

// Credit adds the amount to the balance
func (a *Account) Credit(amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}

	a.Balance += amount
	a.UpdatedAt = time.Now()
	return nil
}

// CanAfford reports whether the balance covers the given price
func (a *Account) CanAfford(price int64) bool {
	return a.Balance >= price
}
