package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/cosmetic-storefront/internal/domain/account"
	"github.com/cosmetic-storefront/internal/domain/ledger"
	"github.com/cosmetic-storefront/internal/domain/purchase"
)

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	accountRepo  account.Repository
	ledgerRepo   ledger.Repository
	purchaseRepo purchase.Repository
}

// NewUserService creates a new user service
func NewUserService(accountRepo account.Repository, ledgerRepo ledger.Repository, purchaseRepo purchase.Repository) UserService {
	return &UserServiceImpl{
		accountRepo:  accountRepo,
		ledgerRepo:   ledgerRepo,
		purchaseRepo: purchaseRepo,
	}
}

// GetAccount retrieves the account, ErrAccountNotFound if missing
func (s *UserServiceImpl) GetAccount(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	return s.accountRepo.GetByID(ctx, userID)
}

// ListAccounts retrieves a page of the account directory
func (s *UserServiceImpl) ListAccounts(ctx context.Context, page, perPage int) ([]*account.Account, int64, error) {
	offset := (page - 1) * perPage
	accounts, err := s.accountRepo.List(ctx, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.accountRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// GetTransactions retrieves a page of the user's transaction log
func (s *UserServiceImpl) GetTransactions(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*ledger.Entry, int64, error) {
	offset := (page - 1) * perPage
	entries, err := s.ledgerRepo.ListByUser(ctx, userID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.ledgerRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// GetOwned retrieves the user's currently owned cosmetics
func (s *UserServiceImpl) GetOwned(ctx context.Context, userID uuid.UUID) ([]*purchase.OwnedItem, error) {
	return s.purchaseRepo.ListOwned(ctx, userID)
}

// GetHistory retrieves the user's full purchase history
func (s *UserServiceImpl) GetHistory(ctx context.Context, userID uuid.UUID) ([]*purchase.HistoryItem, error) {
	return s.purchaseRepo.ListHistory(ctx, userID)
}
