package enums

import (
	"fmt"
	"strings"
)

// OrderItemStatus is the per-item fulfillment state.
type OrderItemStatus string

const (
	OrderItemStatusPending   OrderItemStatus = "PENDING"
	OrderItemStatusConfirmed OrderItemStatus = "CONFIRMED"
	OrderItemStatusShipped   OrderItemStatus = "SHIPPED"
	OrderItemStatusDelivered OrderItemStatus = "DELIVERED"
	OrderItemStatusCancelled OrderItemStatus = "CANCELLED"
)

var validOrderItemStatuses = []OrderItemStatus{
	OrderItemStatusPending,
	OrderItemStatusConfirmed,
	OrderItemStatusShipped,
	OrderItemStatusDelivered,
	OrderItemStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderItemStatus.
func (s OrderItemStatus) IsValid() bool {
	for _, candidate := range validOrderItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s OrderItemStatus) IsTerminal() bool {
	return s == OrderItemStatusDelivered || s == OrderItemStatusCancelled
}

// ParseOrderItemStatus converts raw input into an OrderItemStatus, ignoring case.
func ParseOrderItemStatus(value string) (OrderItemStatus, error) {
	normalized := OrderItemStatus(strings.ToUpper(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid order item status %q", value)
}

// OrderStatus is derived from the statuses of an order's items and never stored.
type OrderStatus string

const (
	OrderStatusPending            OrderStatus = "PENDING"
	OrderStatusConfirmed          OrderStatus = "CONFIRMED"
	OrderStatusShipped            OrderStatus = "SHIPPED"
	OrderStatusDelivered          OrderStatus = "DELIVERED"
	OrderStatusPartiallyCancelled OrderStatus = "PARTIALLY_CANCELLED"
)

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}
