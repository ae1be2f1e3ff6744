package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents the canonical vendor listing. Monetary amounts are held
// in integer cents; the aggregated rating is derived by query and never stored.
type Product struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID         uuid.UUID        `gorm:"column:store_id;type:uuid;not null;index"`
	CategoryID      uuid.UUID        `gorm:"column:category_id;type:uuid;not null"`
	Title           string           `gorm:"column:title;not null"`
	Slug            string           `gorm:"column:slug;not null;uniqueIndex"`
	Description     *string          `gorm:"column:description"`
	BasePriceCents  int              `gorm:"column:base_price_cents;not null"`
	ImageURL        *string          `gorm:"column:image_url"`
	DiscountPercent int              `gorm:"column:discount_percent;not null;default:0"`
	IsPromotion     bool             `gorm:"column:is_promotion;not null;default:false"`
	PromotionEndsAt *time.Time       `gorm:"column:promotion_ends_at"`
	Tags            pq.StringArray   `gorm:"column:tags;type:text[]"`
	// No gorm-side default: a default would make Create drop an explicit
	// false, so inactive products could never be inserted. The value is
	// always set by the caller.
	IsActive        bool             `gorm:"column:is_active;not null"`
	Variants        []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
