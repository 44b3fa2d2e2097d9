// Package payloads holds the data section of every lifecycle event. The
// primary id of each payload is required; the publisher rejects rows that
// lack it.
package payloads

import (
	"github.com/google/uuid"
)

// OrderCreatedEvent is emitted when checkout converts a cart into an order.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID `json:"order_id" validate:"required"`
	OrderNumber string    `json:"order_number"`
	MerchantID  uuid.UUID `json:"merchant_id"`
	ItemCount   int       `json:"item_count"`
	TotalAmount string    `json:"total_amount"`
}

// OrderItemConfirmedEvent is emitted after stock was deducted for an item.
type OrderItemConfirmedEvent struct {
	OrderID          uuid.UUID `json:"order_id"`
	OrderItemID      uuid.UUID `json:"order_item_id" validate:"required"`
	ProductID        uuid.UUID `json:"product_id"`
	SupplierID       uuid.UUID `json:"supplier_id"`
	ConfirmedOrderID uuid.UUID `json:"confirmed_order_id"`
	Quantity         int       `json:"quantity"`
	StockRemaining   int       `json:"stock_remaining"`
}

// OrderItemCancelledEvent is emitted whenever an item moves to CANCELLED.
type OrderItemCancelledEvent struct {
	OrderID        uuid.UUID `json:"order_id"`
	OrderItemID    uuid.UUID `json:"order_item_id" validate:"required"`
	ProductID      uuid.UUID `json:"product_id"`
	PreviousStatus string    `json:"previous_status"`
	StockRestored  int       `json:"stock_restored"`
}

// DeliveryAssignedEvent is emitted when a confirmed order is scheduled.
type DeliveryAssignedEvent struct {
	DeliveryEntryID  uuid.UUID `json:"delivery_entry_id" validate:"required"`
	ConfirmedOrderID uuid.UUID `json:"confirmed_order_id"`
	DeliveryAddress  string    `json:"delivery_address"`
}

// RouteGeneratedEvent is emitted once a route and its stops are committed.
type RouteGeneratedEvent struct {
	RouteID          uuid.UUID   `json:"route_id" validate:"required"`
	RouteName        string      `json:"route_name"`
	StopCount        int         `json:"stop_count"`
	DeliveryEntryIDs []uuid.UUID `json:"delivery_entry_ids"`
}
