package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cosmetic-storefront/internal/domain/catalog"
	"github.com/cosmetic-storefront/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const cosmeticColumns = `id, name, type, rarity, added_date, image_url, base_price, sale_price, is_new, on_sale, bundle_id, synced_at`

// CatalogRepository implements the catalog.Repository interface for PostgreSQL
type CatalogRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewCatalogRepository creates a new PostgreSQL catalog repository
func NewCatalogRepository(logger *slog.Logger, db *persistence.PostgresDB) catalog.Repository {
	return &CatalogRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *CatalogRepository) WithTx(tx pgx.Tx) catalog.Repository {
	return &CatalogRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanCosmetic(row pgx.Row) (*catalog.Cosmetic, error) {
	var c catalog.Cosmetic
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Type,
		&c.Rarity,
		&c.AddedDate,
		&c.ImageURL,
		&c.BasePrice,
		&c.SalePrice,
		&c.IsNew,
		&c.OnSale,
		&c.BundleID,
		&c.SyncedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID retrieves a single cosmetic by its catalog ID
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*catalog.Cosmetic, error) {
	query := `SELECT ` + cosmeticColumns + ` FROM cosmetics WHERE id = $1`

	c, err := scanCosmetic(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrCosmeticNotFound{CosmeticID: id}
		}
		r.logger.Error("Failed to get cosmetic", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get cosmetic: %w", err)
	}

	return c, nil
}

// ListByBundle retrieves every cosmetic belonging to a bundle
func (r *CatalogRepository) ListByBundle(ctx context.Context, bundleID string) ([]*catalog.Cosmetic, error) {
	query := `SELECT ` + cosmeticColumns + ` FROM cosmetics WHERE bundle_id = $1 ORDER BY id`

	rows, err := r.querier.Query(ctx, query, bundleID)
	if err != nil {
		r.logger.Error("Failed to list bundle cosmetics", "bundle_id", bundleID, "error", err)
		return nil, fmt.Errorf("failed to list bundle cosmetics: %w", err)
	}
	defer rows.Close()

	return collectCosmetics(rows)
}

func collectCosmetics(rows pgx.Rows) ([]*catalog.Cosmetic, error) {
	var cosmetics []*catalog.Cosmetic
	for rows.Next() {
		c, err := scanCosmetic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cosmetic: %w", err)
		}
		cosmetics = append(cosmetics, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over cosmetics: %w", err)
	}
	return cosmetics, nil
}

// buildFilterClauses turns a catalog.Filter into WHERE clauses and args.
// Arg numbering starts at startIdx so callers can append paging params.
func buildFilterClauses(f catalog.Filter, startIdx int) ([]string, []interface{}) {
	var clauses []string
	var args []interface{}
	idx := startIdx

	add := func(clause string, value interface{}) {
		clauses = append(clauses, strings.Replace(clause, "?", "$"+strconv.Itoa(idx), 1))
		args = append(args, value)
		idx++
	}

	if f.Name != "" {
		add("name ILIKE ?", "%"+f.Name+"%")
	}
	if f.Type != "" {
		add("LOWER(type) = LOWER(?)", f.Type)
	}
	if f.Rarity != "" {
		add("LOWER(rarity) = LOWER(?)", f.Rarity)
	}
	if f.IsNew != nil {
		add("is_new = ?", *f.IsNew)
	}
	if f.OnSale != nil {
		add("on_sale = ?", *f.OnSale)
	}
	if f.OnPromotion {
		clauses = append(clauses, "sale_price IS NOT NULL AND base_price IS NOT NULL AND sale_price < base_price")
	}
	if f.BundleID != "" {
		add("bundle_id = ?", f.BundleID)
	}
	if f.FromDate != "" {
		add("added_date >= ?", f.FromDate)
	}
	if f.ToDate != "" {
		add("added_date <= ?", f.ToDate)
	}

	return clauses, args
}

// List retrieves cosmetics matching the filter, newest first
func (r *CatalogRepository) List(ctx context.Context, filter catalog.Filter, limit, offset int) ([]*catalog.Cosmetic, error) {
	clauses, args := buildFilterClauses(filter, 1)

	query := `SELECT ` + cosmeticColumns + ` FROM cosmetics`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY added_date DESC NULLS LAST, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list cosmetics", "error", err)
		return nil, fmt.Errorf("failed to list cosmetics: %w", err)
	}
	defer rows.Close()

	return collectCosmetics(rows)
}

// Count returns the number of cosmetics matching the filter
func (r *CatalogRepository) Count(ctx context.Context, filter catalog.Filter) (int64, error) {
	clauses, args := buildFilterClauses(filter, 1)

	query := `SELECT COUNT(*) FROM cosmetics`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	var count int64
	if err := r.querier.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.logger.Error("Failed to count cosmetics", "error", err)
		return 0, fmt.Errorf("failed to count cosmetics: %w", err)
	}
	return count, nil
}

// Upsert inserts or refreshes a cosmetic from a catalog sync. Prices only
// move forward when the feed carries them; a feed row without prices keeps
// whatever the store already holds.
func (r *CatalogRepository) Upsert(ctx context.Context, c *catalog.Cosmetic) error {
	query := `
		INSERT INTO cosmetics (id, name, type, rarity, added_date, image_url, base_price, sale_price, is_new, on_sale, bundle_id, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			rarity = EXCLUDED.rarity,
			added_date = EXCLUDED.added_date,
			image_url = EXCLUDED.image_url,
			base_price = COALESCE(EXCLUDED.base_price, cosmetics.base_price),
			sale_price = COALESCE(EXCLUDED.sale_price, cosmetics.sale_price),
			bundle_id = COALESCE(EXCLUDED.bundle_id, cosmetics.bundle_id),
			synced_at = EXCLUDED.synced_at
	`

	_, err := r.querier.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Type,
		c.Rarity,
		c.AddedDate,
		c.ImageURL,
		c.BasePrice,
		c.SalePrice,
		c.IsNew,
		c.OnSale,
		c.BundleID,
		c.SyncedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert cosmetic", "id", c.ID, "error", err)
		return fmt.Errorf("failed to upsert cosmetic: %w", err)
	}

	return nil
}

// ClearNewFlags resets is_new and on_sale across the whole catalog ahead of
// a sync re-marking the current window
func (r *CatalogRepository) ClearNewFlags(ctx context.Context) error {
	_, err := r.querier.Exec(ctx, `UPDATE cosmetics SET is_new = FALSE, on_sale = FALSE, sale_price = NULL`)
	if err != nil {
		r.logger.Error("Failed to clear new flags", "error", err)
		return fmt.Errorf("failed to clear new flags: %w", err)
	}
	return nil
}

// MarkNew flags the given cosmetics as newly added
func (r *CatalogRepository) MarkNew(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.querier.Exec(ctx, `UPDATE cosmetics SET is_new = TRUE WHERE id = ANY($1)`, ids)
	if err != nil {
		r.logger.Error("Failed to mark cosmetics as new", "error", err)
		return fmt.Errorf("failed to mark cosmetics as new: %w", err)
	}
	return nil
}

// MarkOnSale flags a cosmetic as currently offered in the shop, recording
// the shop's base and sale prices when present
func (r *CatalogRepository) MarkOnSale(ctx context.Context, id string, basePrice, salePrice *int64) error {
	query := `
		UPDATE cosmetics
		SET on_sale = TRUE,
			base_price = COALESCE($1, base_price),
			sale_price = COALESCE($2, sale_price)
		WHERE id = $3
	`

	_, err := r.querier.Exec(ctx, query, basePrice, salePrice, id)
	if err != nil {
		r.logger.Error("Failed to mark cosmetic on sale", "id", id, "error", err)
		return fmt.Errorf("failed to mark cosmetic on sale: %w", err)
	}
	return nil
}

// ListUnpriced retrieves cosmetics with no known price at all, candidates
// for the fallback price fill after a sync
func (r *CatalogRepository) ListUnpriced(ctx context.Context) ([]*catalog.Cosmetic, error) {
	query := `SELECT ` + cosmeticColumns + ` FROM cosmetics WHERE base_price IS NULL AND sale_price IS NULL`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list unpriced cosmetics", "error", err)
		return nil, fmt.Errorf("failed to list unpriced cosmetics: %w", err)
	}
	defer rows.Close()

	return collectCosmetics(rows)
}

// SetBasePrice fills the base price for a cosmetic
func (r *CatalogRepository) SetBasePrice(ctx context.Context, id string, price int64) error {
	_, err := r.querier.Exec(ctx, `UPDATE cosmetics SET base_price = $1 WHERE id = $2`, price, id)
	if err != nil {
		r.logger.Error("Failed to set base price", "id", id, "error", err)
		return fmt.Errorf("failed to set base price: %w", err)
	}
	return nil
}
