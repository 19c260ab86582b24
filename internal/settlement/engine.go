// Package settlement implements purchase and return processing. Every
// settlement runs in a single database transaction that moves credits,
// changes ownership, and appends the transaction log together; partial
// writes are never visible. The account row lock serializes settlements
// per user, so concurrent requests settle one at a time in some order.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cosmetic-storefront/internal/domain/account"
	"github.com/cosmetic-storefront/internal/domain/catalog"
	"github.com/cosmetic-storefront/internal/domain/ledger"
	"github.com/cosmetic-storefront/internal/domain/outbox"
	"github.com/cosmetic-storefront/internal/domain/purchase"
	"github.com/cosmetic-storefront/internal/domain/shared"
	"github.com/cosmetic-storefront/internal/platform/persistence"
)

// maxConflictRetries bounds how many times a settlement is retried after
// the database aborts it with a serialization or deadlock failure
const maxConflictRetries = 3

var (
	// ErrTransactionConflict is returned when a settlement keeps losing
	// write conflicts after retries. The caller may safely retry.
	ErrTransactionConflict = errors.New("settlement aborted after repeated write conflicts")

	// ErrStoreUnavailable is returned when the settlement store cannot be
	// reached or fails for reasons unrelated to the request
	ErrStoreUnavailable = errors.New("settlement store unavailable")
)

// Request identifies the subject of a settlement
type Request struct {
	UserID        uuid.UUID
	CosmeticID    string
	CorrelationID string
}

// txRunner runs a function inside a database transaction. Satisfied by
// *persistence.PostgresDB.
type txRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Engine executes purchase and return settlements
type Engine struct {
	db        txRunner
	accounts  account.Repository
	catalog   catalog.Repository
	purchases purchase.Repository
	ledger    ledger.Repository
	outbox    outbox.Repository
	logger    *slog.Logger
}

// NewEngine creates a settlement engine
func NewEngine(
	pgDB *persistence.PostgresDB,
	accounts account.Repository,
	catalogRepo catalog.Repository,
	purchases purchase.Repository,
	ledgerRepo ledger.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		db:        pgDB,
		accounts:  accounts,
		catalog:   catalogRepo,
		purchases: purchases,
		ledger:    ledgerRepo,
		outbox:    outboxRepo,
		logger:    logger,
	}
}

// Purchase settles a purchase: it charges the effective price, opens an
// ownership record, appends a debit entry to the transaction log, and grants
// the remaining cosmetics of the bundle (if any) at zero cost. Cosmetics the
// user already owns are never charged again; a second purchase of an owned
// cosmetic fails with purchase.ErrAlreadyOwned instead of double charging.
func (e *Engine) Purchase(ctx context.Context, req *Request) (*purchase.Receipt, error) {
	logger := e.requestLogger(req)

	cosmetic, err := e.catalog.GetByID(ctx, req.CosmeticID)
	if err != nil {
		if errors.Is(err, catalog.ErrCosmeticNotFound{}) {
			return nil, err
		}
		logger.Error("Failed to load cosmetic for purchase", "error", err)
		return nil, fmt.Errorf("failed to load cosmetic for purchase: %w", err)
	}

	var receipt *purchase.Receipt
	err = e.withConflictRetry(ctx, logger, func(tx pgx.Tx) error {
		var txErr error
		receipt, txErr = e.settlePurchase(ctx, tx, req, cosmetic, logger)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Purchase settled",
		"purchase_id", receipt.PurchaseID.String(),
		"price", receipt.Price,
		"granted", len(receipt.Granted))
	return receipt, nil
}

func (e *Engine) settlePurchase(ctx context.Context, tx pgx.Tx, req *Request, cosmetic *catalog.Cosmetic, logger *slog.Logger) (*purchase.Receipt, error) {
	accounts := e.accounts.WithTx(tx)
	purchases := e.purchases.WithTx(tx)
	ledgerRepo := e.ledger.WithTx(tx)

	acc, err := accounts.LockForUpdate(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	owned, err := purchases.HasOpen(ctx, req.UserID, req.CosmeticID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, purchase.ErrAlreadyOwned{UserID: req.UserID, CosmeticID: req.CosmeticID}
	}

	price := cosmetic.EffectivePrice()
	if !acc.CanAfford(price) {
		return nil, account.ErrInsufficientCredits
	}

	now := time.Now().UTC()
	rec := purchase.NewRecord(req.UserID, req.CosmeticID, price, now)
	if err := purchases.Create(ctx, rec); err != nil {
		return nil, err
	}

	if err := accounts.AdjustBalance(ctx, req.UserID, -price); err != nil {
		return nil, err
	}
	balanceAfter := acc.Balance - price

	entry := ledger.NewEntry(req.UserID, shared.EntryTypePurchase, -price, req.CosmeticID, now)
	if err := ledgerRepo.Append(ctx, entry); err != nil {
		return nil, err
	}

	granted, err := e.grantBundleCompanions(ctx, tx, req, cosmetic, now, logger)
	if err != nil {
		return nil, err
	}

	event := &shared.SettlementEvent{
		EventID:       uuid.New(),
		UserID:        req.UserID,
		Kind:          shared.EntryTypePurchase,
		CosmeticID:    req.CosmeticID,
		Amount:        -price,
		BalanceAfter:  balanceAfter,
		GrantedIDs:    granted,
		OccurredAt:    now,
		CorrelationID: req.CorrelationID,
	}
	if err := e.writeOutboxEvent(ctx, tx, event); err != nil {
		return nil, err
	}

	return &purchase.Receipt{
		PurchaseID: rec.ID,
		CosmeticID: rec.CosmeticID,
		Price:      rec.Price,
		Granted:    granted,
		CreatedAt:  rec.CreatedAt,
	}, nil
}

// grantBundleCompanions opens zero-cost ownership records for the other
// cosmetics of the purchased cosmetic's bundle. Companions the user already
// owns keep their original record and price untouched.
func (e *Engine) grantBundleCompanions(ctx context.Context, tx pgx.Tx, req *Request, cosmetic *catalog.Cosmetic, now time.Time, logger *slog.Logger) ([]string, error) {
	if cosmetic.BundleID == nil || *cosmetic.BundleID == "" {
		return nil, nil
	}

	catalogRepo := e.catalog.WithTx(tx)
	purchases := e.purchases.WithTx(tx)
	ledgerRepo := e.ledger.WithTx(tx)

	companions, err := catalogRepo.ListByBundle(ctx, *cosmetic.BundleID)
	if err != nil {
		return nil, err
	}

	var granted []string
	for _, companion := range companions {
		if companion.ID == cosmetic.ID {
			continue
		}

		owned, err := purchases.HasOpen(ctx, req.UserID, companion.ID)
		if err != nil {
			return nil, err
		}
		if owned {
			continue
		}

		rec := purchase.NewRecord(req.UserID, companion.ID, 0, now)
		if err := purchases.Create(ctx, rec); err != nil {
			return nil, err
		}

		// Zero-amount entry keeps the grant visible in the transaction log
		entry := ledger.NewEntry(req.UserID, shared.EntryTypePurchase, 0, companion.ID, now)
		if err := ledgerRepo.Append(ctx, entry); err != nil {
			return nil, err
		}

		granted = append(granted, companion.ID)
	}

	if len(granted) > 0 {
		logger.Info("Bundle companions granted", "bundle_id", *cosmetic.BundleID, "count", len(granted))
	}

	return granted, nil
}

// Return settles a return: it closes the open ownership record, refunds the
// price captured at purchase time, and appends a credit entry. The refund is
// always the captured price, never the current catalog price, so bundle
// companions granted at zero cost return zero credits. A zero refund still
// appends its log entry.
func (e *Engine) Return(ctx context.Context, req *Request) (*purchase.ReturnReceipt, error) {
	logger := e.requestLogger(req)

	var receipt *purchase.ReturnReceipt
	err := e.withConflictRetry(ctx, logger, func(tx pgx.Tx) error {
		var txErr error
		receipt, txErr = e.settleReturn(ctx, tx, req)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Return settled",
		"purchase_id", receipt.PurchaseID.String(),
		"refunded", receipt.Refunded)
	return receipt, nil
}

func (e *Engine) settleReturn(ctx context.Context, tx pgx.Tx, req *Request) (*purchase.ReturnReceipt, error) {
	accounts := e.accounts.WithTx(tx)
	purchases := e.purchases.WithTx(tx)
	ledgerRepo := e.ledger.WithTx(tx)

	acc, err := accounts.LockForUpdate(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	rec, err := purchases.GetOpen(ctx, req.UserID, req.CosmeticID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := purchases.Close(ctx, rec.ID, now); err != nil {
		return nil, err
	}

	refund := rec.Price
	if refund > 0 {
		if err := accounts.AdjustBalance(ctx, req.UserID, refund); err != nil {
			return nil, err
		}
	}

	entry := ledger.NewEntry(req.UserID, shared.EntryTypeReturn, refund, req.CosmeticID, now)
	if err := ledgerRepo.Append(ctx, entry); err != nil {
		return nil, err
	}

	event := &shared.SettlementEvent{
		EventID:       uuid.New(),
		UserID:        req.UserID,
		Kind:          shared.EntryTypeReturn,
		CosmeticID:    req.CosmeticID,
		Amount:        refund,
		BalanceAfter:  acc.Balance + refund,
		OccurredAt:    now,
		CorrelationID: req.CorrelationID,
	}
	if err := e.writeOutboxEvent(ctx, tx, event); err != nil {
		return nil, err
	}

	return &purchase.ReturnReceipt{
		PurchaseID: rec.ID,
		CosmeticID: rec.CosmeticID,
		Refunded:   refund,
		ReturnedAt: now,
	}, nil
}

func (e *Engine) writeOutboxEvent(ctx context.Context, tx pgx.Tx, event *shared.SettlementEvent) error {
	msg, err := outbox.NewMessage(event)
	if err != nil {
		return fmt.Errorf("failed to build outbox message: %w", err)
	}
	return e.outbox.WithTx(tx).Create(ctx, msg)
}

// withConflictRetry runs fn in a transaction, retrying a bounded number of
// times when the database aborts the transaction with a serialization or
// deadlock failure. Any other error ends the settlement immediately.
func (e *Engine) withConflictRetry(ctx context.Context, logger *slog.Logger, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		err = e.db.ExecuteTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !persistence.IsSerializationFailure(err) {
			return err
		}
		logger.Warn("Settlement aborted by write conflict, retrying", "attempt", attempt)
	}

	logger.Error("Settlement exhausted conflict retries", "error", err)
	return ErrTransactionConflict
}

func (e *Engine) requestLogger(req *Request) *slog.Logger {
	logger := e.logger.With("user_id", req.UserID.String(), "cosmetic_id", req.CosmeticID)
	if req.CorrelationID != "" {
		logger = logger.With("correlation_id", req.CorrelationID)
	}
	return logger
}
