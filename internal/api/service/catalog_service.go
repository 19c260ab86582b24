package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/cosmetic-storefront/internal/domain/catalog"
	"github.com/cosmetic-storefront/internal/domain/purchase"
)

// SyncRunner triggers an immediate catalog sync run
type SyncRunner interface {
	RunOnce(ctx context.Context) error
}

// cachedPage is the serialized form of one cached catalog listing
type cachedPage struct {
	Cosmetics []*catalog.Cosmetic `json:"cosmetics"`
	Total     int64               `json:"total"`
}

// CatalogServiceImpl implements the CatalogService interface. Listing pages
// are cached in Redis when a client is configured; the cache is read-through
// with a TTL, never invalidated explicitly, so a sync run shows up within
// one TTL.
type CatalogServiceImpl struct {
	catalogRepo  catalog.Repository
	purchaseRepo purchase.Repository
	syncLogRepo  catalog.SyncLogRepository
	syncer       SyncRunner
	cache        *redis.Client
	cacheTTL     time.Duration
	logger       *slog.Logger
}

// NewCatalogService creates a new catalog service. A nil cache client
// disables caching.
func NewCatalogService(
	catalogRepo catalog.Repository,
	purchaseRepo purchase.Repository,
	syncLogRepo catalog.SyncLogRepository,
	syncer SyncRunner,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger *slog.Logger,
) CatalogService {
	return &CatalogServiceImpl{
		catalogRepo:  catalogRepo,
		purchaseRepo: purchaseRepo,
		syncLogRepo:  syncLogRepo,
		syncer:       syncer,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// ListCosmetics retrieves a filtered catalog page and the total match count
func (s *CatalogServiceImpl) ListCosmetics(ctx context.Context, filter catalog.Filter, page, perPage int) ([]*catalog.Cosmetic, int64, error) {
	cacheKey := listCacheKey(filter, page, perPage)
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		return cached.Cosmetics, cached.Total, nil
	}

	offset := (page - 1) * perPage
	cosmetics, err := s.catalogRepo.List(ctx, filter, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.catalogRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	s.cacheSet(ctx, cacheKey, &cachedPage{Cosmetics: cosmetics, Total: total})
	return cosmetics, total, nil
}

// GetCosmetic retrieves one cosmetic plus whether the given user owns it
func (s *CatalogServiceImpl) GetCosmetic(ctx context.Context, id string, userID uuid.UUID) (*catalog.Cosmetic, bool, error) {
	cosmetic, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	owned := false
	if userID != uuid.Nil {
		owned, err = s.purchaseRepo.HasOpen(ctx, userID, id)
		if err != nil {
			return nil, false, err
		}
	}
	return cosmetic, owned, nil
}

// LastSync reports the most recent catalog sync run
func (s *CatalogServiceImpl) LastSync(ctx context.Context) (*catalog.SyncRecord, error) {
	return s.syncLogRepo.Latest(ctx)
}

// TriggerSync runs a catalog sync immediately and returns its log record
func (s *CatalogServiceImpl) TriggerSync(ctx context.Context) (*catalog.SyncRecord, error) {
	if err := s.syncer.RunOnce(ctx); err != nil {
		return nil, err
	}
	return s.syncLogRepo.Latest(ctx)
}

func (s *CatalogServiceImpl) cacheGet(ctx context.Context, key string) (*cachedPage, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Catalog cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var page cachedPage
	if err := json.Unmarshal(raw, &page); err != nil {
		s.logger.Warn("Catalog cache entry undecodable", "key", key, "error", err)
		return nil, false
	}
	return &page, true
}

func (s *CatalogServiceImpl) cacheSet(ctx context.Context, key string, page *cachedPage) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("Catalog cache write failed", "key", key, "error", err)
	}
}

func listCacheKey(f catalog.Filter, page, perPage int) string {
	isNew, onSale := "", ""
	if f.IsNew != nil {
		isNew = fmt.Sprintf("%t", *f.IsNew)
	}
	if f.OnSale != nil {
		onSale = fmt.Sprintf("%t", *f.OnSale)
	}
	return fmt.Sprintf("catalog:list:%s:%s:%s:%s:%s:%t:%s:%s:%s:%d:%d",
		f.Name, f.Type, f.Rarity, isNew, onSale, f.OnPromotion, f.BundleID, f.FromDate, f.ToDate, page, perPage)
}
