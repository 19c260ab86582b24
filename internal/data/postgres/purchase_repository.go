package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cosmetic-storefront/internal/domain/purchase"
	"github.com/cosmetic-storefront/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PurchaseRepository implements the purchase.Repository interface for PostgreSQL
type PurchaseRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewPurchaseRepository creates a new PostgreSQL purchase repository
func NewPurchaseRepository(logger *slog.Logger, db *persistence.PostgresDB) purchase.Repository {
	return &PurchaseRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *PurchaseRepository) WithTx(tx pgx.Tx) purchase.Repository {
	return &PurchaseRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new purchase record. The uq_purchases_open partial unique
// index rejects a second open purchase for the same user and cosmetic; that
// collision surfaces as ErrAlreadyOwned.
func (r *PurchaseRepository) Create(ctx context.Context, rec *purchase.Record) error {
	query := `
		INSERT INTO purchases (id, user_id, cosmetic_id, price, created_at, returned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		rec.ID,
		rec.UserID,
		rec.CosmeticID,
		rec.Price,
		rec.CreatedAt,
		rec.ReturnedAt,
	)
	if err != nil {
		if persistence.IsUniqueViolation(err, "uq_purchases_open") {
			return purchase.ErrAlreadyOwned{UserID: rec.UserID, CosmeticID: rec.CosmeticID}
		}
		r.logger.Error("Failed to create purchase", "error", err)
		return fmt.Errorf("failed to create purchase: %w", err)
	}

	return nil
}

// GetOpen retrieves the open (not returned) purchase for a user and cosmetic
func (r *PurchaseRepository) GetOpen(ctx context.Context, userID uuid.UUID, cosmeticID string) (*purchase.Record, error) {
	query := `
		SELECT id, user_id, cosmetic_id, price, created_at, returned_at
		FROM purchases
		WHERE user_id = $1 AND cosmetic_id = $2 AND returned_at IS NULL
	`

	var rec purchase.Record
	err := r.querier.QueryRow(ctx, query, userID, cosmeticID).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.CosmeticID,
		&rec.Price,
		&rec.CreatedAt,
		&rec.ReturnedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, purchase.ErrNotOwned{UserID: userID, CosmeticID: cosmeticID}
		}
		r.logger.Error("Failed to get open purchase", "user_id", userID.String(), "cosmetic_id", cosmeticID, "error", err)
		return nil, fmt.Errorf("failed to get open purchase: %w", err)
	}

	return &rec, nil
}

// HasOpen reports whether the user currently owns the cosmetic
func (r *PurchaseRepository) HasOpen(ctx context.Context, userID uuid.UUID, cosmeticID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM purchases
			WHERE user_id = $1 AND cosmetic_id = $2 AND returned_at IS NULL
		)
	`

	var exists bool
	if err := r.querier.QueryRow(ctx, query, userID, cosmeticID).Scan(&exists); err != nil {
		r.logger.Error("Failed to check open purchase", "user_id", userID.String(), "cosmetic_id", cosmeticID, "error", err)
		return false, fmt.Errorf("failed to check open purchase: %w", err)
	}

	return exists, nil
}

// Close marks an open purchase as returned. A purchase that is already
// closed (or missing) yields ErrNotOwned so a concurrent double return
// settles exactly once.
func (r *PurchaseRepository) Close(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE purchases
		SET returned_at = $1
		WHERE id = $2 AND returned_at IS NULL
	`

	result, err := r.querier.Exec(ctx, query, at, id)
	if err != nil {
		r.logger.Error("Failed to close purchase", "id", id.String(), "error", err)
		return fmt.Errorf("failed to close purchase: %w", err)
	}

	if result.RowsAffected() == 0 {
		return purchase.ErrNotOwned{}
	}

	return nil
}

// ListHistory retrieves the user's full purchase history with cosmetic
// details joined in, newest first
func (r *PurchaseRepository) ListHistory(ctx context.Context, userID uuid.UUID) ([]*purchase.HistoryItem, error) {
	query := `
		SELECT p.id, p.cosmetic_id, c.name, c.image_url, p.price, p.created_at, p.returned_at
		FROM purchases p
		JOIN cosmetics c ON c.id = p.cosmetic_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
	`

	rows, err := r.querier.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list purchase history", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to list purchase history: %w", err)
	}
	defer rows.Close()

	var items []*purchase.HistoryItem
	for rows.Next() {
		var item purchase.HistoryItem
		err := rows.Scan(
			&item.PurchaseID,
			&item.CosmeticID,
			&item.CosmeticName,
			&item.ImageURL,
			&item.Price,
			&item.CreatedAt,
			&item.ReturnedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan purchase history item", "error", err)
			return nil, fmt.Errorf("failed to scan purchase history item: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over purchase history", "error", err)
		return nil, fmt.Errorf("error iterating over purchase history: %w", err)
	}

	return items, nil
}

// ListOwned retrieves the cosmetics the user currently owns
func (r *PurchaseRepository) ListOwned(ctx context.Context, userID uuid.UUID) ([]*purchase.OwnedItem, error) {
	query := `
		SELECT c.id, c.name, c.type, c.rarity, c.image_url
		FROM purchases p
		JOIN cosmetics c ON c.id = p.cosmetic_id
		WHERE p.user_id = $1 AND p.returned_at IS NULL
		ORDER BY c.name
	`

	rows, err := r.querier.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list owned cosmetics", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to list owned cosmetics: %w", err)
	}
	defer rows.Close()

	var items []*purchase.OwnedItem
	for rows.Next() {
		var item purchase.OwnedItem
		err := rows.Scan(
			&item.CosmeticID,
			&item.Name,
			&item.Type,
			&item.Rarity,
			&item.ImageURL,
		)
		if err != nil {
			r.logger.Error("Failed to scan owned cosmetic", "error", err)
			return nil, fmt.Errorf("failed to scan owned cosmetic: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over owned cosmetics", "error", err)
		return nil, fmt.Errorf("error iterating over owned cosmetics: %w", err)
	}

	return items, nil
}
