package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/solostack/marketplace-backend/pkg/enums"
)

// SubOrder is the portion of a multi-vendor order belonging to one store.
// Invariant: CommissionCents + PayoutCents == SubTotalCents.
type SubOrder struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ParentOrderID   uuid.UUID            `gorm:"column:parent_order_id;type:uuid;not null;index"`
	StoreID         uuid.UUID            `gorm:"column:store_id;type:uuid;not null;index"`
	SubTotalCents   int                  `gorm:"column:sub_total_cents;not null"`
	CommissionCents int                  `gorm:"column:commission_cents;not null"`
	PayoutCents     int                  `gorm:"column:payout_cents;not null"`
	Status          enums.SubOrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Items           []OrderItem          `gorm:"foreignKey:SubOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
