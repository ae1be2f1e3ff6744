package products

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/solostack/marketplace-backend/pkg/db/models"
	dbtypes "github.com/solostack/marketplace-backend/pkg/db/types"
	pkgerrors "github.com/solostack/marketplace-backend/pkg/errors"
	"github.com/solostack/marketplace-backend/pkg/types"
)

// VariantInput is one purchasable SKU in a create/update payload.
type VariantInput struct {
	SKU             string            `json:"sku" validate:"required,max=64"`
	PriceAdjustment decimal.Decimal   `json:"price_adjustment"`
	StockQuantity   int               `json:"stock_quantity" validate:"gte=0"`
	Attributes      map[string]string `json:"attributes,omitempty"`
}

// CreateProductInput captures the vendor listing payload.
type CreateProductInput struct {
	Title           string          `json:"title" validate:"required,max=200"`
	Description     *string         `json:"description,omitempty" validate:"omitempty,max=5000"`
	CategoryID      uuid.UUID       `json:"category_id" validate:"required"`
	BasePrice       decimal.Decimal `json:"base_price"`
	ImageURL        *string         `json:"image_url,omitempty" validate:"omitempty,url"`
	DiscountPercent int             `json:"discount_percent" validate:"gte=0,lte=90"`
	IsPromotion     bool            `json:"is_promotion"`
	PromotionEndsAt *time.Time      `json:"promotion_ends_at,omitempty"`
	Tags            []string        `json:"tags,omitempty" validate:"max=20,dive,max=40"`
	Variants        []VariantInput  `json:"variants" validate:"required,min=1,dive"`
}

// UpdateProductInput captures the allowed mutation fields. A non-nil Variants
// slice replaces the full variant set.
type UpdateProductInput struct {
	Title           *string          `json:"title,omitempty" validate:"omitempty,max=200"`
	Description     *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	CategoryID      *uuid.UUID       `json:"category_id,omitempty"`
	BasePrice       *decimal.Decimal `json:"base_price,omitempty"`
	ImageURL        *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	DiscountPercent *int             `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=90"`
	IsPromotion     *bool            `json:"is_promotion,omitempty"`
	PromotionEndsAt *time.Time       `json:"promotion_ends_at,omitempty"`
	Tags            []string         `json:"tags,omitempty" validate:"max=20,dive,max=40"`
	IsActive        *bool            `json:"is_active,omitempty"`
	Variants        []VariantInput   `json:"variants,omitempty" validate:"omitempty,min=1,dive"`
}

// VariantDTO exposes a purchasable SKU.
type VariantDTO struct {
	ID              uuid.UUID         `json:"id"`
	SKU             string            `json:"sku"`
	PriceAdjustment decimal.Decimal   `json:"price_adjustment"`
	StockQuantity   int               `json:"stock_quantity"`
	Attributes      map[string]string `json:"attributes,omitempty"`
}

// ProductDTO is the full listing shape.
type ProductDTO struct {
	ID              uuid.UUID       `json:"id"`
	StoreID         uuid.UUID       `json:"store_id"`
	CategoryID      uuid.UUID       `json:"category_id"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	Description     *string         `json:"description,omitempty"`
	BasePrice       decimal.Decimal `json:"base_price"`
	ImageURL        *string         `json:"image_url,omitempty"`
	DiscountPercent int             `json:"discount_percent"`
	IsPromotion     bool            `json:"is_promotion"`
	PromotionEndsAt *time.Time      `json:"promotion_ends_at,omitempty"`
	Tags            []string        `json:"tags,omitempty"`
	IsActive        bool            `json:"is_active"`
	Variants        []VariantDTO    `json:"variants"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PublicProductDTO decorates a listing with storefront and rating context.
type PublicProductDTO struct {
	ProductDTO
	StoreName     string  `json:"store_name"`
	StoreSlug     string  `json:"store_slug"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

// VendorProductDTO decorates a listing with inventory totals.
type VendorProductDTO struct {
	ProductDTO
	TotalStock int `json:"total_stock"`
}

// StoreSummaryDTO is a ranked storefront on the home page.
type StoreSummaryDTO struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Slug    string          `json:"slug"`
	LogoURL *string         `json:"logo_url,omitempty"`
	Revenue decimal.Decimal `json:"revenue"`
}

// HomeDataDTO is the landing page aggregate.
type HomeDataDTO struct {
	NewArrivals []PublicProductDTO `json:"new_arrivals"`
	Trending    []PublicProductDTO `json:"trending"`
	TopStores   []StoreSummaryDTO  `json:"top_stores"`
}

func variantFromModel(m *models.ProductVariant) VariantDTO {
	return VariantDTO{
		ID:              m.ID,
		SKU:             m.SKU,
		PriceAdjustment: types.FormatMoney(m.PriceAdjustmentCents),
		StockQuantity:   m.StockQuantity,
		Attributes:      m.Attributes,
	}
}

// FromModel maps the persisted product into a DTO.
func FromModel(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	variants := make([]VariantDTO, 0, len(m.Variants))
	for i := range m.Variants {
		variants = append(variants, variantFromModel(&m.Variants[i]))
	}
	return &ProductDTO{
		ID:              m.ID,
		StoreID:         m.StoreID,
		CategoryID:      m.CategoryID,
		Title:           m.Title,
		Slug:            m.Slug,
		Description:     m.Description,
		BasePrice:       types.FormatMoney(m.BasePriceCents),
		ImageURL:        m.ImageURL,
		DiscountPercent: m.DiscountPercent,
		IsPromotion:     m.IsPromotion,
		PromotionEndsAt: m.PromotionEndsAt,
		Tags:            m.Tags,
		IsActive:        m.IsActive,
		Variants:        variants,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (v VariantInput) toModel(productID uuid.UUID) (*models.ProductVariant, error) {
	adjustment, err := types.ParseMoney(v.PriceAdjustment)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("variant %s: %v", v.SKU, err))
	}
	var attrs dbtypes.JSONMap
	if len(v.Attributes) > 0 {
		attrs = make(dbtypes.JSONMap, len(v.Attributes))
		for k, val := range v.Attributes {
			attrs[k] = val
		}
	}
	return &models.ProductVariant{
		ID:                   uuid.New(),
		ProductID:            productID,
		SKU:                  v.SKU,
		PriceAdjustmentCents: adjustment,
		StockQuantity:        v.StockQuantity,
		Attributes:           attrs,
	}, nil
}

// ToModel prepares the GORM model tree, normalizing promotion fields.
func (c CreateProductInput) ToModel(storeID uuid.UUID, now time.Time) (*models.Product, error) {
	base, err := types.ParseMoney(c.BasePrice)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid base price")
	}
	if base <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must be positive")
	}

	discount := c.DiscountPercent
	if !c.IsPromotion {
		discount = 0
	}

	product := &models.Product{
		ID:              uuid.New(),
		StoreID:         storeID,
		CategoryID:      c.CategoryID,
		Title:           c.Title,
		Slug:            fmt.Sprintf("%s-%d", types.Slugify(c.Title), now.Unix()),
		Description:     c.Description,
		BasePriceCents:  base,
		ImageURL:        c.ImageURL,
		DiscountPercent: discount,
		IsPromotion:     c.IsPromotion,
		PromotionEndsAt: c.PromotionEndsAt,
		Tags:            pq.StringArray(c.Tags),
		IsActive:        true,
	}

	for _, v := range c.Variants {
		variant, err := v.toModel(product.ID)
		if err != nil {
			return nil, err
		}
		product.Variants = append(product.Variants, *variant)
	}
	return product, nil
}
