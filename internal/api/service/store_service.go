package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cosmetic-storefront/internal/domain/account"
	"github.com/cosmetic-storefront/internal/domain/catalog"
	"github.com/cosmetic-storefront/internal/domain/purchase"
	"github.com/cosmetic-storefront/internal/settlement"
)

// SettlementEngine is the settlement surface the store service delegates
// to, satisfied by *settlement.Engine
type SettlementEngine interface {
	Purchase(ctx context.Context, req *settlement.Request) (*purchase.Receipt, error)
	Return(ctx context.Context, req *settlement.Request) (*purchase.ReturnReceipt, error)
}

// StoreServiceImpl implements the StoreService interface by delegating to
// the settlement engine. Business failures pass through untouched; anything
// unexpected maps to ErrStoreUnavailable so handlers never leak internals.
type StoreServiceImpl struct {
	engine SettlementEngine
	logger *slog.Logger
}

// NewStoreService creates a new store service
func NewStoreService(engine SettlementEngine, logger *slog.Logger) StoreService {
	return &StoreServiceImpl{
		engine: engine,
		logger: logger,
	}
}

// Purchase settles a purchase for the user at the current effective price
func (s *StoreServiceImpl) Purchase(ctx context.Context, userID uuid.UUID, cosmeticID, correlationID string) (*purchase.Receipt, error) {
	receipt, err := s.engine.Purchase(ctx, &settlement.Request{
		UserID:        userID,
		CosmeticID:    cosmeticID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, s.mapError(err, "purchase", userID, cosmeticID)
	}
	return receipt, nil
}

// Return settles a return, refunding the captured purchase price
func (s *StoreServiceImpl) Return(ctx context.Context, userID uuid.UUID, cosmeticID, correlationID string) (*purchase.ReturnReceipt, error) {
	receipt, err := s.engine.Return(ctx, &settlement.Request{
		UserID:        userID,
		CosmeticID:    cosmeticID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, s.mapError(err, "return", userID, cosmeticID)
	}
	return receipt, nil
}

func (s *StoreServiceImpl) mapError(err error, op string, userID uuid.UUID, cosmeticID string) error {
	switch {
	case errors.Is(err, catalog.ErrCosmeticNotFound{}),
		errors.Is(err, purchase.ErrAlreadyOwned{}),
		errors.Is(err, purchase.ErrNotOwned{}),
		errors.Is(err, account.ErrInsufficientCredits),
		errors.Is(err, settlement.ErrTransactionConflict):
		return err
	}

	s.logger.Error("Settlement failed",
		"operation", op,
		"user_id", userID.String(),
		"cosmetic_id", cosmeticID,
		"error", err,
	)
	return settlement.ErrStoreUnavailable
}
