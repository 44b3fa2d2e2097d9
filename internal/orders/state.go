package orders

import (
	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
)

var allowedTransitions = map[enums.OrderItemStatus][]enums.OrderItemStatus{
	enums.OrderItemStatusPending:   {enums.OrderItemStatusConfirmed, enums.OrderItemStatusCancelled},
	enums.OrderItemStatusConfirmed: {enums.OrderItemStatusShipped, enums.OrderItemStatusCancelled},
	enums.OrderItemStatusShipped:   {enums.OrderItemStatusDelivered},
}

// CanTransition reports whether an item may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to enums.OrderItemStatus) bool {
	if from == to {
		return from.IsValid()
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DeriveOrderStatus computes the order status from its item statuses. The
// first matching rule wins: any cancelled, all delivered, any shipped, any
// confirmed, otherwise pending.
func DeriveOrderStatus(statuses []enums.OrderItemStatus) enums.OrderStatus {
	if len(statuses) == 0 {
		return enums.OrderStatusPending
	}
	var shipped, confirmed bool
	delivered := 0
	for _, s := range statuses {
		switch s {
		case enums.OrderItemStatusCancelled:
			return enums.OrderStatusPartiallyCancelled
		case enums.OrderItemStatusDelivered:
			delivered++
		case enums.OrderItemStatusShipped:
			shipped = true
		case enums.OrderItemStatusConfirmed:
			confirmed = true
		}
	}
	switch {
	case delivered == len(statuses):
		return enums.OrderStatusDelivered
	case shipped:
		return enums.OrderStatusShipped
	case confirmed:
		return enums.OrderStatusConfirmed
	default:
		return enums.OrderStatusPending
	}
}

func itemStatuses(items []models.OrderItem) []enums.OrderItemStatus {
	out := make([]enums.OrderItemStatus, 0, len(items))
	for _, item := range items {
		out = append(out, item.Status)
	}
	return out
}
