package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/cosmetic-storefront/internal/domain/account"
	"github.com/cosmetic-storefront/internal/domain/catalog"
	"github.com/cosmetic-storefront/internal/domain/ledger"
	"github.com/cosmetic-storefront/internal/domain/purchase"
	"github.com/cosmetic-storefront/internal/settlement"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// MockAccountRepository is a mock implementation of account.Repository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if acc, ok := args.Get(0).(*account.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	args := m.Called(ctx, email)
	if acc, ok := args.Get(0).(*account.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*account.Account, error) {
	args := m.Called(ctx, limit, offset)
	if accs, ok := args.Get(0).([]*account.Account); ok {
		return accs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta int64) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockAccountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if acc, ok := args.Get(0).(*account.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) WithTx(tx pgx.Tx) account.Repository {
	m.Called(tx)
	return m
}

// MockCatalogRepository is a mock implementation of catalog.Repository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) GetByID(ctx context.Context, id string) (*catalog.Cosmetic, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*catalog.Cosmetic); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogRepository) ListByBundle(ctx context.Context, bundleID string) ([]*catalog.Cosmetic, error) {
	args := m.Called(ctx, bundleID)
	if cs, ok := args.Get(0).([]*catalog.Cosmetic); ok {
		return cs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogRepository) List(ctx context.Context, filter catalog.Filter, limit, offset int) ([]*catalog.Cosmetic, error) {
	args := m.Called(ctx, filter, limit, offset)
	if cs, ok := args.Get(0).([]*catalog.Cosmetic); ok {
		return cs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogRepository) Count(ctx context.Context, filter catalog.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogRepository) Upsert(ctx context.Context, cosmetic *catalog.Cosmetic) error {
	args := m.Called(ctx, cosmetic)
	return args.Error(0)
}

func (m *MockCatalogRepository) ClearNewFlags(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCatalogRepository) MarkNew(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockCatalogRepository) MarkOnSale(ctx context.Context, id string, basePrice, salePrice *int64) error {
	args := m.Called(ctx, id, basePrice, salePrice)
	return args.Error(0)
}

func (m *MockCatalogRepository) ListUnpriced(ctx context.Context) ([]*catalog.Cosmetic, error) {
	args := m.Called(ctx)
	if cs, ok := args.Get(0).([]*catalog.Cosmetic); ok {
		return cs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogRepository) SetBasePrice(ctx context.Context, id string, price int64) error {
	args := m.Called(ctx, id, price)
	return args.Error(0)
}

func (m *MockCatalogRepository) WithTx(tx pgx.Tx) catalog.Repository {
	m.Called(tx)
	return m
}

// MockSyncLogRepository is a mock implementation of catalog.SyncLogRepository
type MockSyncLogRepository struct {
	mock.Mock
}

func (m *MockSyncLogRepository) Append(ctx context.Context, record *catalog.SyncRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSyncLogRepository) Latest(ctx context.Context) (*catalog.SyncRecord, error) {
	args := m.Called(ctx)
	if r, ok := args.Get(0).(*catalog.SyncRecord); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPurchaseRepository is a mock implementation of purchase.Repository
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) Create(ctx context.Context, record *purchase.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPurchaseRepository) GetOpen(ctx context.Context, userID uuid.UUID, cosmeticID string) (*purchase.Record, error) {
	args := m.Called(ctx, userID, cosmeticID)
	if rec, ok := args.Get(0).(*purchase.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPurchaseRepository) HasOpen(ctx context.Context, userID uuid.UUID, cosmeticID string) (bool, error) {
	args := m.Called(ctx, userID, cosmeticID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseRepository) Close(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockPurchaseRepository) ListHistory(ctx context.Context, userID uuid.UUID) ([]*purchase.HistoryItem, error) {
	args := m.Called(ctx, userID)
	if items, ok := args.Get(0).([]*purchase.HistoryItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPurchaseRepository) ListOwned(ctx context.Context, userID uuid.UUID) ([]*purchase.OwnedItem, error) {
	args := m.Called(ctx, userID)
	if items, ok := args.Get(0).([]*purchase.OwnedItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPurchaseRepository) WithTx(tx pgx.Tx) purchase.Repository {
	m.Called(tx)
	return m
}

// MockLedgerRepository is a mock implementation of ledger.Repository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, userID, limit, offset)
	if entries, ok := args.Get(0).([]*ledger.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLedgerRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	m.Called(tx)
	return m
}

// MockSettlementEngine is a mock implementation of SettlementEngine
type MockSettlementEngine struct {
	mock.Mock
}

func (m *MockSettlementEngine) Purchase(ctx context.Context, req *settlement.Request) (*purchase.Receipt, error) {
	args := m.Called(ctx, req)
	if receipt, ok := args.Get(0).(*purchase.Receipt); ok {
		return receipt, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSettlementEngine) Return(ctx context.Context, req *settlement.Request) (*purchase.ReturnReceipt, error) {
	args := m.Called(ctx, req)
	if receipt, ok := args.Get(0).(*purchase.ReturnReceipt); ok {
		return receipt, args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeSyncRunner stubs the sync trigger
type fakeSyncRunner struct {
	err   error
	calls int
}

func (f *fakeSyncRunner) RunOnce(ctx context.Context) error {
	f.calls++
	return f.err
}
