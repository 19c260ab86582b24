package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cosmetic-storefront/internal/domain/catalog"
	"github.com/cosmetic-storefront/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// SyncLogRepository implements the catalog.SyncLogRepository interface
// for PostgreSQL
type SyncLogRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSyncLogRepository creates a new PostgreSQL sync log repository
func NewSyncLogRepository(logger *slog.Logger, db *persistence.PostgresDB) catalog.SyncLogRepository {
	return &SyncLogRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Append records the outcome of a catalog sync run
func (r *SyncLogRepository) Append(ctx context.Context, rec *catalog.SyncRecord) error {
	query := `
		INSERT INTO sync_log (id, ran_at, upserted, new_marked, sale_marked, error)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		rec.ID,
		rec.RanAt,
		rec.Upserted,
		rec.NewMarked,
		rec.SaleMarked,
		rec.Error,
	)
	if err != nil {
		r.logger.Error("Failed to append sync record", "error", err)
		return fmt.Errorf("failed to append sync record: %w", err)
	}

	return nil
}

// Latest retrieves the most recent sync record, or nil when no sync has run
func (r *SyncLogRepository) Latest(ctx context.Context) (*catalog.SyncRecord, error) {
	query := `
		SELECT id, ran_at, upserted, new_marked, sale_marked, error
		FROM sync_log
		ORDER BY ran_at DESC
		LIMIT 1
	`

	var rec catalog.SyncRecord
	err := r.querier.QueryRow(ctx, query).Scan(
		&rec.ID,
		&rec.RanAt,
		&rec.Upserted,
		&rec.NewMarked,
		&rec.SaleMarked,
		&rec.Error,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get latest sync record", "error", err)
		return nil, fmt.Errorf("failed to get latest sync record: %w", err)
	}

	return &rec, nil
}
