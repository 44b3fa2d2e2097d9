package enums

import "slices"

// OutboxAggregateType names the aggregate an outbox event belongs to. It is
// half of the Pub/Sub ordering key.
type OutboxAggregateType string

const (
	AggregateOrder         OutboxAggregateType = "order"
	AggregateOrderItem     OutboxAggregateType = "order_item"
	AggregateDeliveryEntry OutboxAggregateType = "delivery_entry"
	AggregateRoute         OutboxAggregateType = "route"
)

func (a OutboxAggregateType) IsValid() bool {
	return slices.Contains([]OutboxAggregateType{
		AggregateOrder, AggregateOrderItem, AggregateDeliveryEntry, AggregateRoute,
	}, a)
}

// OutboxEventType names a lifecycle event. Consumers filter on it through
// the event_type message attribute.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderItemConfirmed OutboxEventType = "order_item_confirmed"
	EventOrderItemCancelled OutboxEventType = "order_item_cancelled"
	EventDeliveryAssigned   OutboxEventType = "delivery_assigned"
	EventRouteGenerated     OutboxEventType = "route_generated"
)

func (e OutboxEventType) IsValid() bool {
	return slices.Contains([]OutboxEventType{
		EventOrderCreated, EventOrderItemConfirmed, EventOrderItemCancelled,
		EventDeliveryAssigned, EventRouteGenerated,
	}, e)
}

// OutboxDLQErrorReason is why a row was parked; outbox_dlq has a check
// constraint on the same two values.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

func (r OutboxDLQErrorReason) IsValid() bool {
	return r == OutboxDLQReasonMaxAttempts || r == OutboxDLQReasonNonRetryable
}
