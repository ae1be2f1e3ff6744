package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solostack/marketplace-backend/pkg/db/models"
	"github.com/solostack/marketplace-backend/pkg/enums"
)

// Repository handles store persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithTx persists a new store row inside the provided transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, store *models.Store) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return tx.Create(store).Error
}

// FindByID loads a store by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindBySlug loads a store by its public slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByOwner returns the store owned by the provided user.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// Update saves the provided store.
func (r *Repository) Update(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return r.db.WithContext(ctx).Save(store).Error
}

// IncrementViews bumps the public view counter without read-modify-write races.
func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

type storeListRow struct {
	models.Store
	ProductCount int64
	SalesCount   int64
}

// List returns all stores annotated with product and sales counts, most sales first.
func (r *Repository) List(ctx context.Context) ([]StoreListItemDTO, error) {
	var rows []storeListRow
	err := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Select(`stores.*,
			(SELECT COUNT(*) FROM products WHERE products.store_id = stores.id AND products.is_active) AS product_count,
			(SELECT COUNT(*) FROM sub_orders WHERE sub_orders.store_id = stores.id) AS sales_count`).
		Order("sales_count DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]StoreListItemDTO, 0, len(rows))
	for i := range rows {
		items = append(items, StoreListItemDTO{
			StoreDTO:     *FromModel(&rows[i].Store),
			ProductCount: rows[i].ProductCount,
			SalesCount:   rows[i].SalesCount,
		})
	}
	return items, nil
}

// CountProducts returns the active product count for a store.
func (r *Repository) CountProducts(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("store_id = ? AND is_active", storeID).
		Count(&count).Error
	return count, err
}

// SalesTotals aggregates sub-order count and payout cents for a store.
func (r *Repository) SalesTotals(ctx context.Context, storeID uuid.UUID) (orders int64, payoutCents int64, err error) {
	row := struct {
		Orders      int64
		PayoutCents int64
	}{}
	err = r.db.WithContext(ctx).
		Model(&models.SubOrder{}).
		Select("COUNT(*) AS orders, COALESCE(SUM(payout_cents), 0) AS payout_cents").
		Where("store_id = ?", storeID).
		Scan(&row).Error
	return row.Orders, row.PayoutCents, err
}

// AverageRating returns the mean store review rating, zero when unreviewed.
func (r *Repository) AverageRating(ctx context.Context, storeID uuid.UUID) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Model(&models.StoreReview{}).
		Select("AVG(rating)").
		Where("store_id = ?", storeID).
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

// SalesSince returns paid sub-orders created at or after the cutoff, oldest first.
func (r *Repository) SalesSince(ctx context.Context, storeID uuid.UUID, cutoff time.Time) ([]models.SubOrder, error) {
	var subOrders []models.SubOrder
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND created_at >= ?", storeID, cutoff).
		Order("created_at ASC").
		Find(&subOrders).Error
	return subOrders, err
}

// PromoteOwnerWithTx flips the owner's role to vendor inside the transaction
// that creates the store.
func (r *Repository) PromoteOwnerWithTx(tx *gorm.DB, ownerID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.
		Model(&models.User{}).
		Where("id = ? AND role = ?", ownerID, enums.UserRoleCustomer).
		UpdateColumn("role", enums.UserRoleVendor).Error
}
