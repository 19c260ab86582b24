package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmetic-storefront/internal/domain/purchase"
)

func TestPurchaseRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PurchaseRepository{querier: mock, logger: logger}

	rec := &purchase.Record{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		CosmeticID: "CID_028_Athena_Commando_F",
		Price:      1200,
		CreatedAt:  time.Now(),
	}

	query := `
		INSERT INTO purchases \(id, user_id, cosmetic_id, price, created_at, returned_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(rec.ID, rec.UserID, rec.CosmeticID, rec.Price, rec.CreatedAt, rec.ReturnedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, rec)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already owned", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_purchases_open"}
		mock.ExpectExec(query).
			WithArgs(rec.ID, rec.UserID, rec.CosmeticID, rec.Price, rec.CreatedAt, rec.ReturnedAt).
			WillReturnError(pgErr)

		err := repo.Create(ctx, rec)
		assert.Error(t, err)
		var ownedErr purchase.ErrAlreadyOwned
		assert.ErrorAs(t, err, &ownedErr)
		assert.Equal(t, rec.UserID, ownedErr.UserID)
		assert.Equal(t, rec.CosmeticID, ownedErr.CosmeticID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(rec.ID, rec.UserID, rec.CosmeticID, rec.Price, rec.CreatedAt, rec.ReturnedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, rec)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create purchase")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPurchaseRepository_GetOpen(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PurchaseRepository{querier: mock, logger: logger}
	userID := uuid.New()
	cosmeticID := "CID_028_Athena_Commando_F"
	now := time.Now()

	expectedRecord := &purchase.Record{
		ID:         uuid.New(),
		UserID:     userID,
		CosmeticID: cosmeticID,
		Price:      1200,
		CreatedAt:  now,
	}

	query := `
		SELECT id, user_id, cosmetic_id, price, created_at, returned_at
		FROM purchases
		WHERE user_id = \$1 AND cosmetic_id = \$2 AND returned_at IS NULL
	`
	rows := pgxmock.NewRows([]string{"id", "user_id", "cosmetic_id", "price", "created_at", "returned_at"}).
		AddRow(expectedRecord.ID, expectedRecord.UserID, expectedRecord.CosmeticID, expectedRecord.Price, expectedRecord.CreatedAt, expectedRecord.ReturnedAt)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(userID, cosmeticID).WillReturnRows(rows)

		rec, err := repo.GetOpen(ctx, userID, cosmeticID)
		assert.NoError(t, err)
		assert.Equal(t, expectedRecord, rec)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not owned", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(userID, cosmeticID).WillReturnError(pgx.ErrNoRows)

		rec, err := repo.GetOpen(ctx, userID, cosmeticID)
		assert.Error(t, err)
		assert.Nil(t, rec)
		var notOwnedErr purchase.ErrNotOwned
		assert.ErrorAs(t, err, &notOwnedErr)
		assert.Equal(t, userID, notOwnedErr.UserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("some db error")
		mock.ExpectQuery(query).WithArgs(userID, cosmeticID).WillReturnError(dbErr)

		rec, err := repo.GetOpen(ctx, userID, cosmeticID)
		assert.Error(t, err)
		assert.Nil(t, rec)
		assert.Contains(t, err.Error(), "failed to get open purchase")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPurchaseRepository_HasOpen(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PurchaseRepository{querier: mock, logger: logger}
	userID := uuid.New()
	cosmeticID := "Pickaxe_ID_011"

	query := `
		SELECT EXISTS \(
			SELECT 1 FROM purchases
			WHERE user_id = \$1 AND cosmetic_id = \$2 AND returned_at IS NULL
		\)
	`

	t.Run("owned", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"exists"}).AddRow(true)
		mock.ExpectQuery(query).WithArgs(userID, cosmeticID).WillReturnRows(rows)

		owned, err := repo.HasOpen(ctx, userID, cosmeticID)
		assert.NoError(t, err)
		assert.True(t, owned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not owned", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"exists"}).AddRow(false)
		mock.ExpectQuery(query).WithArgs(userID, cosmeticID).WillReturnRows(rows)

		owned, err := repo.HasOpen(ctx, userID, cosmeticID)
		assert.NoError(t, err)
		assert.False(t, owned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPurchaseRepository_Close(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PurchaseRepository{querier: mock, logger: logger}
	purchaseID := uuid.New()
	now := time.Now()

	query := `
		UPDATE purchases
		SET returned_at = \$1
		WHERE id = \$2 AND returned_at IS NULL
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(now, purchaseID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.Close(ctx, purchaseID, now)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already returned", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(now, purchaseID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Close(ctx, purchaseID, now)
		assert.Error(t, err)
		var notOwnedErr purchase.ErrNotOwned
		assert.ErrorAs(t, err, &notOwnedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("close db error")
		mock.ExpectExec(query).
			WithArgs(now, purchaseID).
			WillReturnError(dbErr)

		err := repo.Close(ctx, purchaseID, now)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to close purchase")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPurchaseRepository_ListOwned(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PurchaseRepository{querier: mock, logger: logger}
	userID := uuid.New()

	query := `
		SELECT c.id, c.name, c.type, c.rarity, c.image_url
		FROM purchases p
		JOIN cosmetics c ON c.id = p.cosmetic_id
		WHERE p.user_id = \$1 AND p.returned_at IS NULL
		ORDER BY c.name
	`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "name", "type", "rarity", "image_url"}).
			AddRow("Pickaxe_ID_011", "Raider's Revenge", "pickaxe", "epic", "https://cdn.example.com/b.png").
			AddRow("CID_028_Athena_Commando_F", "Renegade Raider", "outfit", "rare", "https://cdn.example.com/a.png")
		mock.ExpectQuery(query).WithArgs(userID).WillReturnRows(rows)

		items, err := repo.ListOwned(ctx, userID)
		assert.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Raider's Revenge", items[0].Name)
		assert.Equal(t, "CID_028_Athena_Commando_F", items[1].CosmeticID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "name", "type", "rarity", "image_url"})
		mock.ExpectQuery(query).WithArgs(userID).WillReturnRows(rows)

		items, err := repo.ListOwned(ctx, userID)
		assert.NoError(t, err)
		assert.Empty(t, items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
