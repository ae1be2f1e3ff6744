package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem snapshots one purchased cart line. PriceAtPurchaseCents is fixed
// at order time and decoupled from later price changes.
type OrderItem struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubOrderID           uuid.UUID `gorm:"column:sub_order_id;type:uuid;not null;index"`
	ProductVariantID     uuid.UUID `gorm:"column:product_variant_id;type:uuid;not null"`
	Quantity             int       `gorm:"column:quantity;not null"`
	PriceAtPurchaseCents int       `gorm:"column:price_at_purchase_cents;not null"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
}
