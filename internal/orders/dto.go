package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/solostack/marketplace-backend/pkg/db/types"
	"github.com/solostack/marketplace-backend/pkg/enums"
	"github.com/solostack/marketplace-backend/pkg/types"
)

// OrderLineInput is one flat cart line in a checkout payload. The client
// submits the unit price it saw; that amount is snapshotted as-is.
type OrderLineInput struct {
	VariantID uuid.UUID       `json:"variant_id" validate:"required"`
	StoreID   uuid.UUID       `json:"store_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,gte=1"`
	Price     decimal.Decimal `json:"price"`
}

// PlaceOrderInput is the checkout payload.
type PlaceOrderInput struct {
	Lines           []OrderLineInput `json:"lines" validate:"required,min=1,dive"`
	ShippingAddress dbtypes.Document `json:"shipping_address" validate:"required"`
}

// OrderItemDTO is one purchased line inside a sub-order.
type OrderItemDTO struct {
	ID              uuid.UUID       `json:"id"`
	VariantID       uuid.UUID       `json:"variant_id"`
	ProductTitle    string          `json:"product_title,omitempty"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// SubOrderDTO is the per-store slice of an order.
type SubOrderDTO struct {
	ID         uuid.UUID            `json:"id"`
	StoreID    uuid.UUID            `json:"store_id"`
	StoreName  string               `json:"store_name,omitempty"`
	SubTotal   decimal.Decimal      `json:"sub_total"`
	Commission decimal.Decimal      `json:"commission"`
	Payout     decimal.Decimal      `json:"payout"`
	Status     enums.SubOrderStatus `json:"status"`
	Items      []OrderItemDTO       `json:"items"`
	CreatedAt  time.Time            `json:"created_at"`
}

// OrderDTO is the buyer-facing parent order.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	Total           decimal.Decimal     `json:"total"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	ShippingAddress dbtypes.Document    `json:"shipping_address,omitempty"`
	SubOrders       []SubOrderDTO       `json:"sub_orders"`
	CreatedAt       time.Time           `json:"created_at"`
}

// VendorSubOrderDTO decorates a sub-order with buyer identity for vendors.
type VendorSubOrderDTO struct {
	SubOrderDTO
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
}

// UpdateSubOrderStatusInput carries the requested fulfilment transition.
type UpdateSubOrderStatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending shipped delivered cancelled"`
}

func formatCents(cents int) decimal.Decimal {
	return types.FormatMoney(cents)
}
