package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solostack/marketplace-backend/pkg/db/models"
)

// Repository handles order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to order operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateOrderWithTx inserts the parent order row.
func (r *Repository) CreateOrderWithTx(tx *gorm.DB, order *models.Order) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if order == nil {
		return fmt.Errorf("order is required")
	}
	return tx.Omit("SubOrders").Create(order).Error
}

// CreateSubOrderWithTx inserts one per-store sub-order.
func (r *Repository) CreateSubOrderWithTx(tx *gorm.DB, subOrder *models.SubOrder) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if subOrder == nil {
		return fmt.Errorf("sub-order is required")
	}
	return tx.Omit("Items").Create(subOrder).Error
}

// CreateOrderItemsWithTx inserts the item snapshots for a sub-order.
func (r *Repository) CreateOrderItemsWithTx(tx *gorm.DB, items []models.OrderItem) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

// DecrementStockWithTx conditionally reduces stock, refusing to go below zero.
// Returns the number of rows touched: zero means the variant is missing or
// under-stocked.
func (r *Repository) DecrementStockWithTx(tx *gorm.DB, variantID uuid.UUID, quantity int) (int64, error) {
	if tx == nil {
		return 0, gorm.ErrInvalidTransaction
	}
	res := tx.Exec(
		`UPDATE product_variants SET stock_quantity = stock_quantity - ? WHERE id = ? AND stock_quantity >= ?`,
		quantity, variantID, quantity,
	)
	return res.RowsAffected, res.Error
}

// VariantExistsWithTx reports whether the variant row exists at all, used to
// tell a missing variant apart from insufficient stock.
func (r *Repository) VariantExistsWithTx(tx *gorm.DB, variantID uuid.UUID) (bool, error) {
	if tx == nil {
		return false, gorm.ErrInvalidTransaction
	}
	var count int64
	if err := tx.Model(&models.ProductVariant{}).Where("id = ?", variantID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser returns the buyer's orders with nested sub-orders and items,
// newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("SubOrders").
		Preload("SubOrders.Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// ListByStore returns sub-orders for a store with their items, newest first.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.SubOrder, error) {
	var subOrders []models.SubOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Find(&subOrders).Error
	return subOrders, err
}

// FindSubOrder loads one sub-order with items.
func (r *Repository) FindSubOrder(ctx context.Context, id uuid.UUID) (*models.SubOrder, error) {
	var subOrder models.SubOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&subOrder, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &subOrder, nil
}

// UpdateSubOrderStatus persists a fulfilment transition.
func (r *Repository) UpdateSubOrderStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.SubOrder{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

// StoreNames resolves display names for the given store IDs.
func (r *Repository) StoreNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil
	}
	var stores []models.Store
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&stores).Error; err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(stores))
	for i := range stores {
		names[stores[i].ID] = stores[i].Name
	}
	return names, nil
}

// ProductTitles resolves product titles for the given variant IDs.
func (r *Repository) ProductTitles(ctx context.Context, variantIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(variantIDs) == 0 {
		return map[uuid.UUID]string{}, nil
	}
	rows := []struct {
		VariantID uuid.UUID
		Title     string
	}{}
	err := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Select("product_variants.id AS variant_id, products.title AS title").
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("product_variants.id IN ?", variantIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	titles := make(map[uuid.UUID]string, len(rows))
	for _, row := range rows {
		titles[row.VariantID] = row.Title
	}
	return titles, nil
}

// Buyers resolves buyer identity for the given parent order IDs.
func (r *Repository) Buyers(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]models.User, error) {
	if len(orderIDs) == 0 {
		return map[uuid.UUID]models.User{}, nil
	}
	rows := []struct {
		OrderID uuid.UUID
		models.User
	}{}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("orders.id AS order_id, users.*").
		Joins("JOIN users ON users.id = orders.user_id").
		Where("orders.id IN ?", orderIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	buyers := make(map[uuid.UUID]models.User, len(rows))
	for _, row := range rows {
		buyers[row.OrderID] = row.User
	}
	return buyers, nil
}
