package enums

import "fmt"

// OrderStatus tracks the two-party confirmation handshake for an order.
// Progression is strictly initiated -> buyer_confirmed -> completed, with
// cancellation allowed from either pre-completed state.
type OrderStatus string

const (
	OrderStatusInitiated      OrderStatus = "initiated"
	OrderStatusBuyerConfirmed OrderStatus = "buyer_confirmed"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusInitiated,
	OrderStatusBuyerConfirmed,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsActive reports whether an order in this status still blocks a new order
// for the same buyer and book.
func (s OrderStatus) IsActive() bool {
	return s == OrderStatusInitiated || s == OrderStatusBuyerConfirmed
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// OrderAction names the lifecycle transitions a party can request.
type OrderAction string

const (
	OrderActionBuyerConfirm  OrderAction = "buyer_confirm"
	OrderActionSellerConfirm OrderAction = "seller_confirm"
	OrderActionCancel        OrderAction = "cancel"
)

var validOrderActions = []OrderAction{
	OrderActionBuyerConfirm,
	OrderActionSellerConfirm,
	OrderActionCancel,
}

// String implements fmt.Stringer.
func (a OrderAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known OrderAction.
func (a OrderAction) IsValid() bool {
	for _, candidate := range validOrderActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOrderAction converts raw input into an OrderAction.
func ParseOrderAction(value string) (OrderAction, error) {
	for _, candidate := range validOrderActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order action %q", value)
}
