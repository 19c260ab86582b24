package catalog_sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/cosmetic-storefront/internal/config"
	"github.com/cosmetic-storefront/internal/domain/catalog"
)

// upsertWorkers bounds the concurrent upsert batches per run
const upsertWorkers = 8

// catalogFetcher is the slice of Client the syncer needs
type catalogFetcher interface {
	FetchCosmetics(ctx context.Context) ([]FeedItem, error)
	FetchNewCosmetics(ctx context.Context) ([]FeedItem, error)
	FetchShop(ctx context.Context) (*ShopFeed, error)
}

// Syncer runs the catalog refresh pipeline: upsert the full catalog, mark
// the new-arrivals window, apply shop pricing, and backfill prices for
// cosmetics the shop never lists
type Syncer struct {
	client      catalogFetcher
	catalogRepo catalog.Repository
	syncLogRepo catalog.SyncLogRepository
	logger      *slog.Logger
	interval    time.Duration
	newWindow   time.Duration
	batchSize   int
}

// NewSyncer creates a catalog syncer from the sync configuration
func NewSyncer(
	cfg *config.CatalogSyncConfig,
	client *Client,
	catalogRepo catalog.Repository,
	syncLogRepo catalog.SyncLogRepository,
	logger *slog.Logger,
) *Syncer {
	return &Syncer{
		client:      client,
		catalogRepo: catalogRepo,
		syncLogRepo: syncLogRepo,
		logger:      logger,
		interval:    cfg.Interval,
		newWindow:   cfg.NewWindow,
		batchSize:   cfg.UpsertBatchSize,
	}
}

// Start runs one sync immediately and then on every interval tick until the
// context is cancelled. Run failures are logged and recorded in the sync
// log; they never stop the schedule.
func (s *Syncer) Start(ctx context.Context) {
	s.logger.Info("Starting catalog sync scheduler", "interval", s.interval.String())

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("Catalog sync run failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping catalog sync scheduler")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("Catalog sync run failed", "error", err)
			}
		}
	}
}

// RunOnce executes a single sync pipeline run and appends its outcome to the
// sync log
func (s *Syncer) RunOnce(ctx context.Context) error {
	record := &catalog.SyncRecord{ID: uuid.New(), RanAt: time.Now().UTC()}
	runErr := s.run(ctx, record)
	if runErr != nil {
		record.Error = runErr.Error()
	}

	if err := s.syncLogRepo.Append(ctx, record); err != nil {
		s.logger.Error("Failed to append sync log record", "error", err)
		if runErr == nil {
			runErr = err
		}
	}

	if runErr == nil {
		s.logger.Info("Catalog sync run completed",
			"upserted", record.Upserted,
			"new_marked", record.NewMarked,
			"sale_marked", record.SaleMarked)
	}
	return runErr
}

func (s *Syncer) run(ctx context.Context, record *catalog.SyncRecord) error {
	items, err := s.client.FetchCosmetics(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch cosmetics feed: %w", err)
	}

	cosmetics := make([]*catalog.Cosmetic, 0, len(items))
	for _, item := range items {
		if c, ok := normalizeItem(item); ok {
			c.SyncedAt = record.RanAt
			cosmetics = append(cosmetics, c)
		}
	}

	upserted, err := s.upsertAll(ctx, cosmetics)
	record.Upserted = upserted
	if err != nil {
		return err
	}

	newMarked, err := s.markNewArrivals(ctx, cosmetics)
	record.NewMarked = newMarked
	if err != nil {
		return err
	}

	saleMarked, err := s.applyShopPrices(ctx)
	record.SaleMarked = saleMarked
	if err != nil {
		return err
	}

	if err := s.backfillPrices(ctx); err != nil {
		return err
	}

	return nil
}

// upsertAll writes the normalized catalog in concurrent batches through a
// worker pool
func (s *Syncer) upsertAll(ctx context.Context, cosmetics []*catalog.Cosmetic) (int, error) {
	if len(cosmetics) == 0 {
		return 0, nil
	}

	pool, err := ants.NewPool(upsertWorkers)
	if err != nil {
		return 0, fmt.Errorf("failed to create upsert worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		upserted int
		firstErr error
	)

	for start := 0; start < len(cosmetics); start += s.batchSize {
		end := start + s.batchSize
		if end > len(cosmetics) {
			end = len(cosmetics)
		}
		batch := cosmetics[start:end]

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			count := 0
			for _, c := range batch {
				if err := s.catalogRepo.Upsert(ctx, c); err != nil {
					s.logger.Error("Failed to upsert cosmetic", "cosmetic_id", c.ID, "error", err)
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
				count++
			}
			mu.Lock()
			upserted += count
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()
	if firstErr != nil {
		return upserted, fmt.Errorf("catalog upsert failed: %w", firstErr)
	}
	return upserted, nil
}

// markNewArrivals resets the new flags and re-marks cosmetics whose added
// date falls within the configured window. The dedicated new-arrivals
// endpoint is consulted as a cross-check only: when it reports more items
// than a sane share of the catalog it is being noisy and is ignored.
func (s *Syncer) markNewArrivals(ctx context.Context, cosmetics []*catalog.Cosmetic) (int, error) {
	if err := s.catalogRepo.ClearNewFlags(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear new flags: %w", err)
	}

	cutoff := time.Now().UTC().Add(-s.newWindow)
	var ids []string
	for _, c := range cosmetics {
		if c.AddedDate != nil && c.AddedDate.After(cutoff) {
			ids = append(ids, c.ID)
		}
	}

	if fresh, err := s.client.FetchNewCosmetics(ctx); err != nil {
		s.logger.Warn("New-arrivals endpoint unavailable, using added dates only", "error", err)
	} else if len(fresh) > newArrivalsThreshold(len(cosmetics)) {
		s.logger.Warn("New-arrivals endpoint reported an implausible count, skipping marking",
			"reported", len(fresh), "catalog_size", len(cosmetics))
		return 0, nil
	}

	if err := s.catalogRepo.MarkNew(ctx, ids); err != nil {
		return 0, fmt.Errorf("failed to mark new cosmetics: %w", err)
	}
	return len(ids), nil
}

// newArrivalsThreshold caps how many items the new-arrivals endpoint may
// plausibly report: at least 50, otherwise 30% of the catalog
func newArrivalsThreshold(catalogSize int) int {
	threshold := catalogSize * 3 / 10
	if threshold < 50 {
		return 50
	}
	return threshold
}

// applyShopPrices reads the current shop rotation and stamps each listed
// cosmetic with its base and sale price. A final price below the regular
// price counts as a sale.
func (s *Syncer) applyShopPrices(ctx context.Context) (int, error) {
	feed, err := s.client.FetchShop(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch shop feed: %w", err)
	}

	marked := 0
	for _, entry := range feed.Entries {
		base, sale := shopEntryPrices(entry)
		if base == nil && sale == nil {
			continue
		}
		for _, item := range entry.Items {
			if item.ID == "" {
				continue
			}
			if err := s.catalogRepo.MarkOnSale(ctx, item.ID, base, sale); err != nil {
				return marked, fmt.Errorf("failed to apply shop price for %s: %w", item.ID, err)
			}
		}
		marked++
	}
	return marked, nil
}

// shopEntryPrices derives the base and sale price of a shop entry. Sale is
// set only when the final price undercuts the regular price.
func shopEntryPrices(entry ShopEntry) (base, sale *int64) {
	regular := entry.RegularPrice
	final := entry.FinalPrice

	if regular != nil && final != nil && *final < *regular {
		sale = final
	}
	base = regular
	if base == nil {
		base = final
	}
	return base, sale
}

// backfillPrices assigns an estimated price to every cosmetic the shop feed
// has never priced, so the store never lists an item it cannot sell
func (s *Syncer) backfillPrices(ctx context.Context) error {
	unpriced, err := s.catalogRepo.ListUnpriced(ctx)
	if err != nil {
		return fmt.Errorf("failed to list unpriced cosmetics: %w", err)
	}

	for _, c := range unpriced {
		price := fallbackPrice(c.Type, c.Rarity)
		if price <= 0 {
			continue
		}
		if err := s.catalogRepo.SetBasePrice(ctx, c.ID, price); err != nil {
			return fmt.Errorf("failed to backfill price for %s: %w", c.ID, err)
		}
	}
	return nil
}
