package products

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solostack/marketplace-backend/pkg/db/models"
)

// Repository handles catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to catalog operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithTx persists the product and its variant set inside the transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, product *models.Product) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if product == nil {
		return fmt.Errorf("product is required")
	}
	return tx.Create(product).Error
}

// FindByID loads a product with its variants.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Variants").
		First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySlug loads an active product with its variants by public slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("slug = ? AND is_active", slug).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// OwnerOf resolves the owning user of a product through its store.
func (r *Repository) OwnerOf(ctx context.Context, productID uuid.UUID) (uuid.UUID, error) {
	var row struct {
		OwnerID uuid.UUID
	}
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("stores.owner_id AS owner_id").
		Joins("JOIN stores ON stores.id = products.store_id").
		Where("products.id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return uuid.Nil, err
	}
	if row.OwnerID == uuid.Nil {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return row.OwnerID, nil
}

// UpdateWithTx saves product scalar fields inside the transaction.
func (r *Repository) UpdateWithTx(tx *gorm.DB, product *models.Product) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if product == nil {
		return fmt.Errorf("product is required")
	}
	return tx.Omit("Variants").Save(product).Error
}

// ReplaceVariantsWithTx swaps the full variant set atomically.
func (r *Repository) ReplaceVariantsWithTx(tx *gorm.DB, productID uuid.UUID, variants []models.ProductVariant) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductVariant{}).Error; err != nil {
		return err
	}
	if len(variants) == 0 {
		return nil
	}
	return tx.Create(&variants).Error
}

// Delete removes the product; variants cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", id).
		Delete(&models.ProductVariant{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

type publicRow struct {
	models.Product
	StoreName     string
	StoreSlug     string
	AverageRating float64
	ReviewCount   int64
}

func (r *Repository) publicQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select(`products.*,
			stores.name AS store_name,
			stores.slug AS store_slug,
			COALESCE((SELECT AVG(rating) FROM product_reviews WHERE product_reviews.product_id = products.id), 0) AS average_rating,
			(SELECT COUNT(*) FROM product_reviews WHERE product_reviews.product_id = products.id) AS review_count`).
		Joins("JOIN stores ON stores.id = products.store_id").
		Where("products.is_active")
}

func (r *Repository) hydratePublic(ctx context.Context, rows []publicRow) ([]PublicProductDTO, error) {
	if len(rows) == 0 {
		return []PublicProductDTO{}, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].Product.ID)
	}

	var variants []models.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", ids).
		Find(&variants).Error; err != nil {
		return nil, err
	}
	byProduct := make(map[uuid.UUID][]models.ProductVariant, len(rows))
	for i := range variants {
		byProduct[variants[i].ProductID] = append(byProduct[variants[i].ProductID], variants[i])
	}

	dtos := make([]PublicProductDTO, 0, len(rows))
	for i := range rows {
		rows[i].Product.Variants = byProduct[rows[i].Product.ID]
		dtos = append(dtos, PublicProductDTO{
			ProductDTO:    *FromModel(&rows[i].Product),
			StoreName:     rows[i].StoreName,
			StoreSlug:     rows[i].StoreSlug,
			AverageRating: rows[i].AverageRating,
			ReviewCount:   rows[i].ReviewCount,
		})
	}
	return dtos, nil
}

// ListActive returns active products with store and rating context, newest first.
func (r *Repository) ListActive(ctx context.Context, limit, offset int) ([]PublicProductDTO, error) {
	var rows []publicRow
	q := r.publicQuery(ctx).Order("products.created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydratePublic(ctx, rows)
}

// ListPromotions returns active products inside their promotion window.
func (r *Repository) ListPromotions(ctx context.Context, now time.Time) ([]PublicProductDTO, error) {
	var rows []publicRow
	err := r.publicQuery(ctx).
		Where("products.is_promotion").
		Where("products.promotion_ends_at IS NULL OR products.promotion_ends_at > ?", now).
		Order("products.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.hydratePublic(ctx, rows)
}

// NewArrivals returns the latest active products.
func (r *Repository) NewArrivals(ctx context.Context, limit int) ([]PublicProductDTO, error) {
	var rows []publicRow
	err := r.publicQuery(ctx).
		Order("products.created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.hydratePublic(ctx, rows)
}

// Trending ranks active products by units sold, then rating.
func (r *Repository) Trending(ctx context.Context, limit int) ([]PublicProductDTO, error) {
	var rows []publicRow
	err := r.publicQuery(ctx).
		Select(`products.*,
			stores.name AS store_name,
			stores.slug AS store_slug,
			COALESCE((SELECT AVG(rating) FROM product_reviews WHERE product_reviews.product_id = products.id), 0) AS average_rating,
			(SELECT COUNT(*) FROM product_reviews WHERE product_reviews.product_id = products.id) AS review_count,
			COALESCE((SELECT SUM(order_items.quantity)
				FROM order_items
				JOIN product_variants ON product_variants.id = order_items.product_variant_id
				WHERE product_variants.product_id = products.id), 0) AS units_sold`).
		Order("units_sold DESC, average_rating DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.hydratePublic(ctx, rows)
}

// ListActiveByStore returns a store's active products for the public
// storefront page.
func (r *Repository) ListActiveByStore(ctx context.Context, storeID uuid.UUID) ([]PublicProductDTO, error) {
	var rows []publicRow
	err := r.publicQuery(ctx).
		Where("products.store_id = ?", storeID).
		Order("products.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.hydratePublic(ctx, rows)
}

type topStoreRow struct {
	models.Store
	RevenueCents int64
}

// TopStores ranks storefronts by payout revenue.
func (r *Repository) TopStores(ctx context.Context, limit int) ([]topStoreRow, error) {
	var rows []topStoreRow
	err := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Select(`stores.*,
			COALESCE((SELECT SUM(payout_cents) FROM sub_orders WHERE sub_orders.store_id = stores.id), 0) AS revenue_cents`).
		Order("revenue_cents DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

type vendorRow struct {
	models.Product
	TotalStock int
}

// ListByStore returns the store's products with per-product stock totals.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]VendorProductDTO, error) {
	var rows []vendorRow
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select(`products.*,
			COALESCE((SELECT SUM(stock_quantity) FROM product_variants WHERE product_variants.product_id = products.id), 0) AS total_stock`).
		Where("products.store_id = ?", storeID).
		Order("products.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	dtos := make([]VendorProductDTO, 0, len(rows))
	for i := range rows {
		var variants []models.ProductVariant
		if err := r.db.WithContext(ctx).
			Where("product_id = ?", rows[i].Product.ID).
			Find(&variants).Error; err != nil {
			return nil, err
		}
		rows[i].Product.Variants = variants
		dtos = append(dtos, VendorProductDTO{
			ProductDTO: *FromModel(&rows[i].Product),
			TotalStock: rows[i].TotalStock,
		})
	}
	return dtos, nil
}
