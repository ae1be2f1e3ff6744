package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/solostack/marketplace-backend/pkg/db/types"
)

// ProductVariant is a purchasable SKU of a product. Stock is only mutated via
// the conditional decrement in the orders repository, so it never goes negative.
type ProductVariant struct {
	ID                   uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID            uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	SKU                  string          `gorm:"column:sku;not null"`
	PriceAdjustmentCents int             `gorm:"column:price_adjustment_cents;not null;default:0"`
	StockQuantity        int             `gorm:"column:stock_quantity;not null;default:0"`
	Attributes           dbtypes.JSONMap `gorm:"column:attributes;type:jsonb;serializer:json"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
