package stores

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/solostack/marketplace-backend/pkg/db"
	"github.com/solostack/marketplace-backend/pkg/db/models"
	"github.com/solostack/marketplace-backend/pkg/enums"
	pkgerrors "github.com/solostack/marketplace-backend/pkg/errors"
)

func setupStoresTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'customer',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE stores (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  description TEXT,
  logo_url TEXT,
  views INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT uniq_stores_slug UNIQUE (slug)
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
		`CREATE TABLE store_reviews (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  rating INTEGER NOT NULL,
  comment TEXT,
  created_at DATETIME,
  CONSTRAINT uniq_store_reviews_store_user UNIQUE (store_id, user_id)
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newStoresService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), db.FromGorm(conn))
	require.NoError(t, err)
	return svc
}

func seedUser(t *testing.T, conn *gorm.DB, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func seedStore(t *testing.T, conn *gorm.DB, ownerID uuid.UUID, name string) *models.Store {
	t.Helper()
	store := CreateStoreInput{Name: name}.ToModel(ownerID)
	require.NoError(t, conn.Create(store).Error)
	return store
}

func seedSubOrder(t *testing.T, conn *gorm.DB, storeID uuid.UUID, payoutCents int, created time.Time) {
	t.Helper()
	subTotal := payoutCents * 10 / 9
	so := &models.SubOrder{
		ID:              uuid.New(),
		ParentOrderID:   uuid.New(),
		StoreID:         storeID,
		SubTotalCents:   subTotal,
		CommissionCents: subTotal - payoutCents,
		PayoutCents:     payoutCents,
		Status:          enums.SubOrderStatusPending,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	require.NoError(t, conn.Create(so).Error)
}

func TestCreateStorePromotesOwner(t *testing.T) {
	conn := setupStoresTestDB(t)
	svc := newStoresService(t, conn)
	owner := seedUser(t, conn, enums.UserRoleCustomer)

	dto, err := svc.Create(context.Background(), owner.ID, CreateStoreInput{Name: "Vera's Goods"})
	require.NoError(t, err)
	assert.Equal(t, "veras-goods", dto.Slug)

	var refreshed models.User
	require.NoError(t, conn.First(&refreshed, "id = ?", owner.ID).Error)
	assert.Equal(t, enums.UserRoleVendor, refreshed.Role)
}

func TestCreateStoreDuplicateSlug(t *testing.T) {
	conn := setupStoresTestDB(t)
	svc := newStoresService(t, conn)
	first := seedUser(t, conn, enums.UserRoleCustomer)
	second := seedUser(t, conn, enums.UserRoleCustomer)

	_, err := svc.Create(context.Background(), first.ID, CreateStoreInput{Name: "Same Name"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), second.ID, CreateStoreInput{Name: "Same Name"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, "store name already taken", typed.Message())

	// Failed creation must not promote the second user.
	var refreshed models.User
	require.NoError(t, conn.First(&refreshed, "id = ?", second.ID).Error)
	assert.Equal(t, enums.UserRoleCustomer, refreshed.Role)
}

func TestCreateStoreOnePerOwner(t *testing.T) {
	conn := setupStoresTestDB(t)
	svc := newStoresService(t, conn)
	owner := seedUser(t, conn, enums.UserRoleCustomer)

	_, err := svc.Create(context.Background(), owner.ID, CreateStoreInput{Name: "First Shop"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner.ID, CreateStoreInput{Name: "Second Shop"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, "account already owns a store", typed.Message())
}

func TestPublicIncrementsViews(t *testing.T) {
	conn := setupStoresTestDB(t)
	svc := newStoresService(t, conn)
	owner := seedUser(t, conn, enums.UserRoleVendor)
	store := seedStore(t, conn, owner.ID, "Window Shop")

	dto, err := svc.Public(context.Background(), store.Slug)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dto.Views)

	dto, err = svc.Public(context.Background(), store.Slug)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dto.Views)
}

func TestPublicUnknownSlug(t *testing.T) {
	conn := setupStoresTestDB(t)
	svc := newStoresService(t, conn)

	_, err := svc.Public(context.Background(), "missing")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdateStoreFields(t *testing.T) {
	conn := setupStoresTestDB(t)
	svc := newStoresService(t, conn)
	owner := seedUser(t, conn, enums.UserRoleVendor)
	seedStore(t, conn, owner.ID, "Old Name")

	newName := "New Name"
	desc := "Handmade things"
	dto, err := svc.Update(context.Background(), owner.ID, UpdateStoreInput{
		Name:        &newName,
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", dto.Name)
	assert.Equal(t, "new-name", dto.Slug)
	require.NotNil(t, dto.Description)
	assert.Equal(t, desc, *dto.Description)
}

func TestListStoresOrderedBySales(t *testing.T) {
	conn := setupStoresTestDB(t)
	svc := newStoresService(t, conn)

	quiet := seedStore(t, conn, seedUser(t, conn, enums.UserRoleVendor).ID, "Quiet Shop")
	busy := seedStore(t, conn, seedUser(t, conn, enums.UserRoleVendor).ID, "Busy Shop")

	now := time.Now().UTC()
	seedSubOrder(t, conn, busy.ID, 900, now)
	seedSubOrder(t, conn, busy.ID, 900, now)
	seedSubOrder(t, conn, quiet.ID, 900, now)

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, busy.ID, items[0].ID)
	assert.Equal(t, int64(2), items[0].SalesCount)
	assert.Equal(t, quiet.ID, items[1].ID)
}

func TestDashboardStats(t *testing.T) {
	conn := setupStoresTestDB(t)
	svc := newStoresService(t, conn)
	owner := seedUser(t, conn, enums.UserRoleVendor)
	store := seedStore(t, conn, owner.ID, "Stats Shop")

	now := time.Now().UTC()
	seedSubOrder(t, conn, store.ID, 3600, now)
	seedSubOrder(t, conn, store.ID, 4500, now)

	require.NoError(t, conn.Create(&models.Product{
		ID:             uuid.New(),
		StoreID:        store.ID,
		CategoryID:     uuid.New(),
		Title:          "Widget",
		Slug:           "widget-" + uuid.NewString(),
		BasePriceCents: 1000,
		IsActive:       true,
	}).Error)
	require.NoError(t, conn.Create(&models.StoreReview{
		ID:      uuid.New(),
		StoreID: store.ID,
		UserID:  uuid.New(),
		Rating:  4,
	}).Error)

	stats, err := svc.DashboardStats(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "81.00", stats.TotalRevenue.StringFixed(2))
	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.TotalProducts)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
}

func TestSalesChartBucketsByDay(t *testing.T) {
	conn := setupStoresTestDB(t)
	svc := newStoresService(t, conn)
	owner := seedUser(t, conn, enums.UserRoleVendor)
	store := seedStore(t, conn, owner.ID, "Chart Shop")

	today := time.Now().UTC()
	seedSubOrder(t, conn, store.ID, 900, today)
	seedSubOrder(t, conn, store.ID, 1800, today.AddDate(0, 0, -2))
	// Outside the window, must not appear.
	seedSubOrder(t, conn, store.ID, 9000, today.AddDate(0, 0, -10))

	points, err := svc.SalesChart(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, points, 7)

	byDate := map[string]string{}
	var total float64
	for _, p := range points {
		byDate[p.Date] = p.Revenue.StringFixed(2)
		v, _ := p.Revenue.Float64()
		total += v
	}
	assert.Equal(t, "9.00", byDate[today.Format("2006-01-02")])
	assert.Equal(t, "18.00", byDate[today.AddDate(0, 0, -2).Format("2006-01-02")])
	assert.InDelta(t, 27.0, total, 0.001)
}
