package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/solostack/marketplace-backend/internal/stores"
	"github.com/solostack/marketplace-backend/pkg/db"
	"github.com/solostack/marketplace-backend/pkg/db/models"
	dbtypes "github.com/solostack/marketplace-backend/pkg/db/types"
	"github.com/solostack/marketplace-backend/pkg/enums"
	pkgerrors "github.com/solostack/marketplace-backend/pkg/errors"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
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
		`CREATE TABLE product_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  price_adjustment_cents INTEGER NOT NULL DEFAULT 0,
  stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
  attributes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  total_cents INTEGER NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  shipping_address TEXT,
  created_at DATETIME
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
  updated_at DATETIME,
  CHECK (commission_cents + payout_cents = sub_total_cents)
);`,
		`CREATE TABLE order_items (
  id TEXT PRIMARY KEY,
  sub_order_id TEXT NOT NULL,
  product_variant_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price_at_purchase_cents INTEGER NOT NULL,
  created_at DATETIME
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newOrdersService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), stores.NewRepository(conn), db.FromGorm(conn))
	require.NoError(t, err)
	return svc
}

func seedBuyer(t *testing.T, conn *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		FirstName:    "Alma",
		LastName:     "Reyes",
		Role:         enums.UserRoleCustomer,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func seedVendorStore(t *testing.T, conn *gorm.DB, name string) *models.Store {
	t.Helper()
	owner := &models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		FirstName:    "Vendor",
		LastName:     "Owner",
		Role:         enums.UserRoleVendor,
	}
	require.NoError(t, conn.Create(owner).Error)
	store := &models.Store{
		ID:      uuid.New(),
		OwnerID: owner.ID,
		Name:    name,
		Slug:    uuid.NewString(),
	}
	require.NoError(t, conn.Create(store).Error)
	return store
}

func seedVariant(t *testing.T, conn *gorm.DB, storeID uuid.UUID, title string, stock int) *models.ProductVariant {
	t.Helper()
	product := &models.Product{
		ID:             uuid.New(),
		StoreID:        storeID,
		CategoryID:     uuid.New(),
		Title:          title,
		Slug:           uuid.NewString(),
		BasePriceCents: 1000,
		IsActive:       true,
	}
	require.NoError(t, conn.Create(product).Error)
	variant := &models.ProductVariant{
		ID:            uuid.New(),
		ProductID:     product.ID,
		SKU:           "default",
		StockQuantity: stock,
	}
	require.NoError(t, conn.Create(variant).Error)
	return variant
}

func variantStock(t *testing.T, conn *gorm.DB, variantID uuid.UUID) int {
	t.Helper()
	var variant models.ProductVariant
	require.NoError(t, conn.First(&variant, "id = ?", variantID).Error)
	return variant.StockQuantity
}

func shippingAddress() dbtypes.Document {
	return dbtypes.Document{"line1": "12 Calle Luna", "city": "Sevilla", "zip": "41001"}
}

func TestPlaceOrderSplitsPerStore(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrdersService(t, conn)
	buyer := seedBuyer(t, conn)

	storeA := seedVendorStore(t, conn, "Store A")
	storeB := seedVendorStore(t, conn, "Store B")
	variantA := seedVariant(t, conn, storeA.ID, "Mug", 10)
	variantB := seedVariant(t, conn, storeB.ID, "Lamp", 5)

	dto, err := svc.PlaceOrder(context.Background(), buyer.ID, PlaceOrderInput{
		Lines: []OrderLineInput{
			{VariantID: variantA.ID, StoreID: storeA.ID, Quantity: 2, Price: decimal.RequireFromString("20.00")},
			{VariantID: variantB.ID, StoreID: storeB.ID, Quantity: 1, Price: decimal.RequireFromString("50.00")},
		},
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	assert.Equal(t, "90.00", dto.Total.StringFixed(2))
	assert.Equal(t, enums.PaymentStatusPaid, dto.PaymentStatus)
	require.Len(t, dto.SubOrders, 2)

	first := dto.SubOrders[0]
	assert.Equal(t, storeA.ID, first.StoreID)
	assert.Equal(t, "40.00", first.SubTotal.StringFixed(2))
	assert.Equal(t, "4.00", first.Commission.StringFixed(2))
	assert.Equal(t, "36.00", first.Payout.StringFixed(2))
	assert.Equal(t, enums.SubOrderStatusPending, first.Status)
	require.Len(t, first.Items, 1)
	assert.Equal(t, 2, first.Items[0].Quantity)
	assert.Equal(t, "20.00", first.Items[0].PriceAtPurchase.StringFixed(2))

	second := dto.SubOrders[1]
	assert.Equal(t, storeB.ID, second.StoreID)
	assert.Equal(t, "50.00", second.SubTotal.StringFixed(2))
	assert.Equal(t, "5.00", second.Commission.StringFixed(2))
	assert.Equal(t, "45.00", second.Payout.StringFixed(2))

	assert.Equal(t, 8, variantStock(t, conn, variantA.ID))
	assert.Equal(t, 4, variantStock(t, conn, variantB.ID))
}

func TestPlaceOrderMergesLinesPerStore(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrdersService(t, conn)
	buyer := seedBuyer(t, conn)

	store := seedVendorStore(t, conn, "One Store")
	mug := seedVariant(t, conn, store.ID, "Mug", 10)
	bowl := seedVariant(t, conn, store.ID, "Bowl", 10)

	dto, err := svc.PlaceOrder(context.Background(), buyer.ID, PlaceOrderInput{
		Lines: []OrderLineInput{
			{VariantID: mug.ID, StoreID: store.ID, Quantity: 1, Price: decimal.RequireFromString("10.00")},
			{VariantID: bowl.ID, StoreID: store.ID, Quantity: 3, Price: decimal.RequireFromString("5.00")},
		},
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	require.Len(t, dto.SubOrders, 1)
	assert.Equal(t, "25.00", dto.SubOrders[0].SubTotal.StringFixed(2))
	require.Len(t, dto.SubOrders[0].Items, 2)
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrdersService(t, conn)
	buyer := seedBuyer(t, conn)

	store := seedVendorStore(t, conn, "Small Stock")
	plenty := seedVariant(t, conn, store.ID, "Plenty", 10)
	scarce := seedVariant(t, conn, store.ID, "Scarce", 1)

	_, err := svc.PlaceOrder(context.Background(), buyer.ID, PlaceOrderInput{
		Lines: []OrderLineInput{
			{VariantID: plenty.ID, StoreID: store.ID, Quantity: 2, Price: decimal.RequireFromString("10.00")},
			{VariantID: scarce.ID, StoreID: store.ID, Quantity: 3, Price: decimal.RequireFromString("10.00")},
		},
		ShippingAddress: shippingAddress(),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	// Nothing survives the failed checkout.
	var orderCount, subOrderCount, itemCount int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, conn.Model(&models.SubOrder{}).Count(&subOrderCount).Error)
	require.NoError(t, conn.Model(&models.OrderItem{}).Count(&itemCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, subOrderCount)
	assert.Zero(t, itemCount)
	assert.Equal(t, 10, variantStock(t, conn, plenty.ID))
	assert.Equal(t, 1, variantStock(t, conn, scarce.ID))
}

func TestPlaceOrderUnknownVariantRollsBack(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrdersService(t, conn)
	buyer := seedBuyer(t, conn)

	store := seedVendorStore(t, conn, "Ghost Goods")
	real := seedVariant(t, conn, store.ID, "Real", 5)

	_, err := svc.PlaceOrder(context.Background(), buyer.ID, PlaceOrderInput{
		Lines: []OrderLineInput{
			{VariantID: real.ID, StoreID: store.ID, Quantity: 1, Price: decimal.RequireFromString("10.00")},
			{VariantID: uuid.New(), StoreID: store.ID, Quantity: 1, Price: decimal.RequireFromString("10.00")},
		},
		ShippingAddress: shippingAddress(),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInternal, typed.Code())

	var orderCount int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
	assert.Equal(t, 5, variantStock(t, conn, real.ID))
}

func TestPlaceOrderRejectsBadInput(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrdersService(t, conn)
	buyer := seedBuyer(t, conn)
	store := seedVendorStore(t, conn, "Validation Shop")
	variant := seedVariant(t, conn, store.ID, "Thing", 5)

	cases := map[string]PlaceOrderInput{
		"empty cart": {ShippingAddress: shippingAddress()},
		"no shipping address": {Lines: []OrderLineInput{
			{VariantID: variant.ID, StoreID: store.ID, Quantity: 1, Price: decimal.RequireFromString("10.00")},
		}},
		"zero quantity": {
			Lines: []OrderLineInput{
				{VariantID: variant.ID, StoreID: store.ID, Quantity: 0, Price: decimal.RequireFromString("10.00")},
			},
			ShippingAddress: shippingAddress(),
		},
		"zero price": {
			Lines: []OrderLineInput{
				{VariantID: variant.ID, StoreID: store.ID, Quantity: 1, Price: decimal.Zero},
			},
			ShippingAddress: shippingAddress(),
		},
		"sub-cent price": {
			Lines: []OrderLineInput{
				{VariantID: variant.ID, StoreID: store.ID, Quantity: 1, Price: decimal.RequireFromString("9.999")},
			},
			ShippingAddress: shippingAddress(),
		},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.PlaceOrder(context.Background(), buyer.ID, input)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestPlaceOrderTruncatesCommission(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrdersService(t, conn)
	buyer := seedBuyer(t, conn)
	store := seedVendorStore(t, conn, "Odd Cents")
	variant := seedVariant(t, conn, store.ID, "Trinket", 5)

	// 10.05 -> sub_total 1005, commission truncates to 100, payout 905.
	dto, err := svc.PlaceOrder(context.Background(), buyer.ID, PlaceOrderInput{
		Lines: []OrderLineInput{
			{VariantID: variant.ID, StoreID: store.ID, Quantity: 1, Price: decimal.RequireFromString("10.05")},
		},
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)
	require.Len(t, dto.SubOrders, 1)
	assert.Equal(t, "1.00", dto.SubOrders[0].Commission.StringFixed(2))
	assert.Equal(t, "9.05", dto.SubOrders[0].Payout.StringFixed(2))
}

func TestMyOrdersReturnsNestedDetail(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrdersService(t, conn)
	buyer := seedBuyer(t, conn)

	store := seedVendorStore(t, conn, "Detail Store")
	variant := seedVariant(t, conn, store.ID, "Poster", 5)

	_, err := svc.PlaceOrder(context.Background(), buyer.ID, PlaceOrderInput{
		Lines: []OrderLineInput{
			{VariantID: variant.ID, StoreID: store.ID, Quantity: 2, Price: decimal.RequireFromString("15.00")},
		},
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	list, err := svc.MyOrders(context.Background(), buyer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].SubOrders, 1)
	assert.Equal(t, "Detail Store", list[0].SubOrders[0].StoreName)
	require.Len(t, list[0].SubOrders[0].Items, 1)
	assert.Equal(t, "Poster", list[0].SubOrders[0].Items[0].ProductTitle)

	// Other users see nothing.
	other, err := svc.MyOrders(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestVendorOrdersCarriesBuyerIdentity(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrdersService(t, conn)
	buyer := seedBuyer(t, conn)

	store := seedVendorStore(t, conn, "Vendor View")
	otherStore := seedVendorStore(t, conn, "Elsewhere")
	variant := seedVariant(t, conn, store.ID, "Candle", 5)
	otherVariant := seedVariant(t, conn, otherStore.ID, "Soap", 5)

	_, err := svc.PlaceOrder(context.Background(), buyer.ID, PlaceOrderInput{
		Lines: []OrderLineInput{
			{VariantID: variant.ID, StoreID: store.ID, Quantity: 1, Price: decimal.RequireFromString("12.00")},
			{VariantID: otherVariant.ID, StoreID: otherStore.ID, Quantity: 1, Price: decimal.RequireFromString("8.00")},
		},
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	list, err := svc.VendorOrders(context.Background(), store.OwnerID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, store.ID, list[0].StoreID)
	assert.Equal(t, "Alma Reyes", list[0].BuyerName)
	assert.Equal(t, buyer.Email, list[0].BuyerEmail)
	assert.Equal(t, "12.00", list[0].SubTotal.StringFixed(2))
}

func TestVendorOrdersRequiresStore(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrdersService(t, conn)

	_, err := svc.VendorOrders(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestUpdateSubOrderStatusTransitions(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrdersService(t, conn)
	buyer := seedBuyer(t, conn)

	store := seedVendorStore(t, conn, "Shipping Shop")
	variant := seedVariant(t, conn, store.ID, "Box", 5)

	placed, err := svc.PlaceOrder(context.Background(), buyer.ID, PlaceOrderInput{
		Lines: []OrderLineInput{
			{VariantID: variant.ID, StoreID: store.ID, Quantity: 1, Price: decimal.RequireFromString("10.00")},
		},
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)
	subOrderID := placed.SubOrders[0].ID

	dto, err := svc.UpdateSubOrderStatus(context.Background(), store.OwnerID, subOrderID, UpdateSubOrderStatusInput{Status: "shipped"})
	require.NoError(t, err)
	assert.Equal(t, enums.SubOrderStatusShipped, dto.Status)

	dto, err = svc.UpdateSubOrderStatus(context.Background(), store.OwnerID, subOrderID, UpdateSubOrderStatusInput{Status: "delivered"})
	require.NoError(t, err)
	assert.Equal(t, enums.SubOrderStatusDelivered, dto.Status)

	// Delivered is terminal.
	_, err = svc.UpdateSubOrderStatus(context.Background(), store.OwnerID, subOrderID, UpdateSubOrderStatusInput{Status: "cancelled"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestUpdateSubOrderStatusOwnership(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrdersService(t, conn)
	buyer := seedBuyer(t, conn)

	store := seedVendorStore(t, conn, "Mine")
	intruder := seedVendorStore(t, conn, "Theirs")
	variant := seedVariant(t, conn, store.ID, "Vase", 5)

	placed, err := svc.PlaceOrder(context.Background(), buyer.ID, PlaceOrderInput{
		Lines: []OrderLineInput{
			{VariantID: variant.ID, StoreID: store.ID, Quantity: 1, Price: decimal.RequireFromString("10.00")},
		},
		ShippingAddress: shippingAddress(),
	})
	require.NoError(t, err)

	_, err = svc.UpdateSubOrderStatus(context.Background(), intruder.OwnerID, placed.SubOrders[0].ID, UpdateSubOrderStatusInput{Status: "shipped"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}
