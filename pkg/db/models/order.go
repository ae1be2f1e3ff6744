package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/solostack/marketplace-backend/pkg/db/types"
	"github.com/solostack/marketplace-backend/pkg/enums"
)

// Order is the parent record produced by a single checkout. Its total is fixed
// at creation and never recomputed.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	TotalCents      int                 `gorm:"column:total_cents;not null"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	ShippingAddress dbtypes.Document    `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	SubOrders       []SubOrder          `gorm:"foreignKey:ParentOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
}
