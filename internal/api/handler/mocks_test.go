package handler

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/cosmetic-storefront/internal/domain/account"
	"github.com/cosmetic-storefront/internal/domain/catalog"
	"github.com/cosmetic-storefront/internal/domain/ledger"
	"github.com/cosmetic-storefront/internal/domain/purchase"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// MockAuthService is a mock implementation of service.AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password string) (*account.Account, string, error) {
	args := m.Called(ctx, email, password)
	if acc, ok := args.Get(0).(*account.Account); ok {
		return acc, args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*account.Account, string, error) {
	args := m.Called(ctx, email, password)
	if acc, ok := args.Get(0).(*account.Account); ok {
		return acc, args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	args := m.Called(ctx, userID, currentPassword, newPassword)
	return args.Error(0)
}

// MockCatalogService is a mock implementation of service.CatalogService
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListCosmetics(ctx context.Context, filter catalog.Filter, page, perPage int) ([]*catalog.Cosmetic, int64, error) {
	args := m.Called(ctx, filter, page, perPage)
	if cs, ok := args.Get(0).([]*catalog.Cosmetic); ok {
		return cs, args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

func (m *MockCatalogService) GetCosmetic(ctx context.Context, id string, userID uuid.UUID) (*catalog.Cosmetic, bool, error) {
	args := m.Called(ctx, id, userID)
	if c, ok := args.Get(0).(*catalog.Cosmetic); ok {
		return c, args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *MockCatalogService) LastSync(ctx context.Context) (*catalog.SyncRecord, error) {
	args := m.Called(ctx)
	if r, ok := args.Get(0).(*catalog.SyncRecord); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) TriggerSync(ctx context.Context) (*catalog.SyncRecord, error) {
	args := m.Called(ctx)
	if r, ok := args.Get(0).(*catalog.SyncRecord); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockStoreService is a mock implementation of service.StoreService
type MockStoreService struct {
	mock.Mock
}

func (m *MockStoreService) Purchase(ctx context.Context, userID uuid.UUID, cosmeticID, correlationID string) (*purchase.Receipt, error) {
	args := m.Called(ctx, userID, cosmeticID, correlationID)
	if receipt, ok := args.Get(0).(*purchase.Receipt); ok {
		return receipt, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStoreService) Return(ctx context.Context, userID uuid.UUID, cosmeticID, correlationID string) (*purchase.ReturnReceipt, error) {
	args := m.Called(ctx, userID, cosmeticID, correlationID)
	if receipt, ok := args.Get(0).(*purchase.ReturnReceipt); ok {
		return receipt, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserService is a mock implementation of service.UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetAccount(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, userID)
	if acc, ok := args.Get(0).(*account.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) ListAccounts(ctx context.Context, page, perPage int) ([]*account.Account, int64, error) {
	args := m.Called(ctx, page, perPage)
	if accs, ok := args.Get(0).([]*account.Account); ok {
		return accs, args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) GetTransactions(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*ledger.Entry, int64, error) {
	args := m.Called(ctx, userID, page, perPage)
	if entries, ok := args.Get(0).([]*ledger.Entry); ok {
		return entries, args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) GetOwned(ctx context.Context, userID uuid.UUID) ([]*purchase.OwnedItem, error) {
	args := m.Called(ctx, userID)
	if items, ok := args.Get(0).([]*purchase.OwnedItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) GetHistory(ctx context.Context, userID uuid.UUID) ([]*purchase.HistoryItem, error) {
	args := m.Called(ctx, userID)
	if items, ok := args.Get(0).([]*purchase.HistoryItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}
