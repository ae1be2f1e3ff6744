package enums

import "fmt"

// SubOrderStatus is the vendor-facing fulfillment state of a sub-order.
type SubOrderStatus string

const (
	SubOrderStatusPending   SubOrderStatus = "pending"
	SubOrderStatusShipped   SubOrderStatus = "shipped"
	SubOrderStatusDelivered SubOrderStatus = "delivered"
	SubOrderStatusCancelled SubOrderStatus = "cancelled"
)

var validSubOrderStatuses = []SubOrderStatus{
	SubOrderStatusPending,
	SubOrderStatusShipped,
	SubOrderStatusDelivered,
	SubOrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s SubOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SubOrderStatus.
func (s SubOrderStatus) IsValid() bool {
	for _, candidate := range validSubOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSubOrderStatus converts raw input into a SubOrderStatus.
func ParseSubOrderStatus(value string) (SubOrderStatus, error) {
	for _, candidate := range validSubOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sub-order status %q", value)
}

// CanTransitionTo reports whether the vendor may move a sub-order from s to
// next. Delivered and cancelled are terminal.
func (s SubOrderStatus) CanTransitionTo(next SubOrderStatus) bool {
	switch s {
	case SubOrderStatusPending:
		return next == SubOrderStatusShipped || next == SubOrderStatusCancelled
	case SubOrderStatusShipped:
		return next == SubOrderStatusDelivered || next == SubOrderStatusCancelled
	default:
		return false
	}
}
