package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solostack/marketplace-backend/pkg/db/models"
)

// Repository handles review persistence and purchase checks.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to review operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateProductReview inserts a product review; the unique index enforces one
// per (product, user).
func (r *Repository) CreateProductReview(ctx context.Context, review *models.ProductReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// CreateStoreReview inserts a store review; the unique index enforces one per
// (store, user).
func (r *Repository) CreateStoreReview(ctx context.Context, review *models.StoreReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// HasPurchasedProduct reports whether the user has a paid order containing any
// variant of the product.
func (r *Repository) HasPurchasedProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN product_variants ON product_variants.id = order_items.product_variant_id").
		Joins("JOIN sub_orders ON sub_orders.id = order_items.sub_order_id").
		Joins("JOIN orders ON orders.id = sub_orders.parent_order_id").
		Where("product_variants.product_id = ?", productID).
		Where("orders.user_id = ?", userID).
		Where("orders.payment_status = ?", "paid").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasPurchasedFromStore reports whether the user has a paid order with a
// sub-order belonging to the store.
func (r *Repository) HasPurchasedFromStore(ctx context.Context, userID, storeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SubOrder{}).
		Joins("JOIN orders ON orders.id = sub_orders.parent_order_id").
		Where("sub_orders.store_id = ?", storeID).
		Where("orders.user_id = ?", userID).
		Where("orders.payment_status = ?", "paid").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListProductReviews returns a product's reviews with reviewer names, newest
// first.
func (r *Repository) ListProductReviews(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error) {
	rows := []struct {
		models.ProductReview
		FirstName string
		LastName  string
	}{}
	err := r.db.WithContext(ctx).
		Model(&models.ProductReview{}).
		Select("product_reviews.*, users.first_name AS first_name, users.last_name AS last_name").
		Joins("JOIN users ON users.id = product_reviews.user_id").
		Where("product_reviews.product_id = ?", productID).
		Order("product_reviews.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	dtos := make([]ReviewDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, ReviewDTO{
			ID:           row.ID,
			Rating:       row.Rating,
			Comment:      row.Comment,
			ReviewerName: row.FirstName + " " + row.LastName,
			CreatedAt:    row.CreatedAt,
		})
	}
	return dtos, nil
}

// ListStoreReviews returns a store's reviews with reviewer names, newest
// first.
func (r *Repository) ListStoreReviews(ctx context.Context, storeID uuid.UUID) ([]ReviewDTO, error) {
	rows := []struct {
		models.StoreReview
		FirstName string
		LastName  string
	}{}
	err := r.db.WithContext(ctx).
		Model(&models.StoreReview{}).
		Select("store_reviews.*, users.first_name AS first_name, users.last_name AS last_name").
		Joins("JOIN users ON users.id = store_reviews.user_id").
		Where("store_reviews.store_id = ?", storeID).
		Order("store_reviews.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	dtos := make([]ReviewDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, ReviewDTO{
			ID:           row.ID,
			Rating:       row.Rating,
			Comment:      row.Comment,
			ReviewerName: row.FirstName + " " + row.LastName,
			CreatedAt:    row.CreatedAt,
		})
	}
	return dtos, nil
}

// ProductExists reports whether the product row exists.
func (r *Repository) ProductExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// StoreExists reports whether the store row exists.
func (r *Repository) StoreExists(ctx context.Context, storeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Store{}).Where("id = ?", storeID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
