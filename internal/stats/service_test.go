package stats

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/solostack/marketplace-backend/pkg/db/models"
	"github.com/solostack/marketplace-backend/pkg/enums"
)

func setupStatsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE stores (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  logo_url TEXT,
  views INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  category_id TEXT NOT NULL,
  title TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  base_price_cents INTEGER NOT NULL,
  image_url TEXT,
  discount_percent INTEGER NOT NULL DEFAULT 0,
  is_promotion INTEGER NOT NULL DEFAULT 0,
  promotion_ends_at DATETIME,
  tags TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE sub_orders (
  id TEXT PRIMARY KEY,
  parent_order_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  sub_total_cents INTEGER NOT NULL,
  commission_cents INTEGER NOT NULL,
  payout_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func TestPlatformCounts(t *testing.T) {
	conn := setupStatsTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	store := &models.Store{ID: uuid.New(), OwnerID: uuid.New(), Name: "Counter Shop", Slug: uuid.NewString()}
	require.NoError(t, conn.Create(store).Error)

	for i := 0; i < 3; i++ {
		require.NoError(t, conn.Create(&models.Product{
			ID:             uuid.New(),
			StoreID:        store.ID,
			CategoryID:     uuid.New(),
			Title:          fmt.Sprintf("Item %d", i),
			Slug:           uuid.NewString(),
			BasePriceCents: 1000,
			IsActive:       true,
		}).Error)
	}
	// Inactive products are not counted.
	require.NoError(t, conn.Create(&models.Product{
		ID:             uuid.New(),
		StoreID:        store.ID,
		CategoryID:     uuid.New(),
		Title:          "Hidden",
		Slug:           uuid.NewString(),
		BasePriceCents: 1000,
		IsActive:       false,
	}).Error)

	for i := 0; i < 2; i++ {
		require.NoError(t, conn.Create(&models.SubOrder{
			ID:              uuid.New(),
			ParentOrderID:   uuid.New(),
			StoreID:         store.ID,
			SubTotalCents:   1000,
			CommissionCents: 100,
			PayoutCents:     900,
			Status:          enums.SubOrderStatusPending,
		}).Error)
	}

	stats, err := svc.Platform(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.TotalStores)
	assert.Equal(t, int64(2), stats.TotalSales)
}
