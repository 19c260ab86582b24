package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmetic-storefront/internal/domain/catalog"
)

func newCatalogService(catalogRepo *MockCatalogRepository, purchaseRepo *MockPurchaseRepository, syncLogRepo *MockSyncLogRepository, syncer SyncRunner) CatalogService {
	return NewCatalogService(catalogRepo, purchaseRepo, syncLogRepo, syncer, nil, time.Minute, newTestLogger())
}

func TestCatalogService_ListCosmetics(t *testing.T) {
	ctx := context.Background()

	t.Run("returns page and total", func(t *testing.T) {
		filter := catalog.Filter{Type: "outfit"}
		cosmetics := []*catalog.Cosmetic{{ID: "skin-1"}, {ID: "skin-2"}}

		catalogRepo := new(MockCatalogRepository)
		catalogRepo.On("List", ctx, filter, 20, 20).Return(cosmetics, nil)
		catalogRepo.On("Count", ctx, filter).Return(int64(42), nil)

		svc := newCatalogService(catalogRepo, new(MockPurchaseRepository), new(MockSyncLogRepository), nil)
		got, total, err := svc.ListCosmetics(ctx, filter, 2, 20)

		require.NoError(t, err)
		assert.Equal(t, cosmetics, got)
		assert.Equal(t, int64(42), total)
		catalogRepo.AssertExpectations(t)
	})

	t.Run("list failure propagates", func(t *testing.T) {
		catalogRepo := new(MockCatalogRepository)
		catalogRepo.On("List", ctx, catalog.Filter{}, 20, 0).Return(nil, errors.New("database error"))

		svc := newCatalogService(catalogRepo, new(MockPurchaseRepository), new(MockSyncLogRepository), nil)
		_, _, err := svc.ListCosmetics(ctx, catalog.Filter{}, 1, 20)

		assert.Error(t, err)
	})
}

func TestCatalogService_GetCosmetic(t *testing.T) {
	ctx := context.Background()
	cosmetic := &catalog.Cosmetic{ID: "skin-1", Name: "Skin"}

	t.Run("authenticated caller gets ownership", func(t *testing.T) {
		userID := uuid.New()

		catalogRepo := new(MockCatalogRepository)
		catalogRepo.On("GetByID", ctx, "skin-1").Return(cosmetic, nil)
		purchaseRepo := new(MockPurchaseRepository)
		purchaseRepo.On("HasOpen", ctx, userID, "skin-1").Return(true, nil)

		svc := newCatalogService(catalogRepo, purchaseRepo, new(MockSyncLogRepository), nil)
		got, owned, err := svc.GetCosmetic(ctx, "skin-1", userID)

		require.NoError(t, err)
		assert.Equal(t, cosmetic, got)
		assert.True(t, owned)
	})

	t.Run("anonymous caller never owns", func(t *testing.T) {
		catalogRepo := new(MockCatalogRepository)
		catalogRepo.On("GetByID", ctx, "skin-1").Return(cosmetic, nil)
		purchaseRepo := new(MockPurchaseRepository)

		svc := newCatalogService(catalogRepo, purchaseRepo, new(MockSyncLogRepository), nil)
		_, owned, err := svc.GetCosmetic(ctx, "skin-1", uuid.Nil)

		require.NoError(t, err)
		assert.False(t, owned)
		purchaseRepo.AssertNotCalled(t, "HasOpen", ctx, uuid.Nil, "skin-1")
	})

	t.Run("unknown cosmetic passes through", func(t *testing.T) {
		catalogRepo := new(MockCatalogRepository)
		catalogRepo.On("GetByID", ctx, "ghost").
			Return(nil, catalog.ErrCosmeticNotFound{CosmeticID: "ghost"})

		svc := newCatalogService(catalogRepo, new(MockPurchaseRepository), new(MockSyncLogRepository), nil)
		_, _, err := svc.GetCosmetic(ctx, "ghost", uuid.Nil)

		assert.ErrorIs(t, err, catalog.ErrCosmeticNotFound{})
	})
}

func TestCatalogService_TriggerSync(t *testing.T) {
	ctx := context.Background()

	t.Run("runs sync and returns latest record", func(t *testing.T) {
		record := &catalog.SyncRecord{ID: uuid.New(), RanAt: time.Now().UTC(), Upserted: 100}
		syncLogRepo := new(MockSyncLogRepository)
		syncLogRepo.On("Latest", ctx).Return(record, nil)
		runner := &fakeSyncRunner{}

		svc := newCatalogService(new(MockCatalogRepository), new(MockPurchaseRepository), syncLogRepo, runner)
		got, err := svc.TriggerSync(ctx)

		require.NoError(t, err)
		assert.Equal(t, record, got)
		assert.Equal(t, 1, runner.calls)
	})

	t.Run("sync failure propagates", func(t *testing.T) {
		runner := &fakeSyncRunner{err: errors.New("upstream down")}

		svc := newCatalogService(new(MockCatalogRepository), new(MockPurchaseRepository), new(MockSyncLogRepository), runner)
		_, err := svc.TriggerSync(ctx)

		assert.Error(t, err)
	})
}

func TestCatalogService_LastSync(t *testing.T) {
	ctx := context.Background()

	t.Run("nil when no sync has run", func(t *testing.T) {
		syncLogRepo := new(MockSyncLogRepository)
		syncLogRepo.On("Latest", ctx).Return(nil, nil)

		svc := newCatalogService(new(MockCatalogRepository), new(MockPurchaseRepository), syncLogRepo, nil)
		record, err := svc.LastSync(ctx)

		require.NoError(t, err)
		assert.Nil(t, record)
	})
}
