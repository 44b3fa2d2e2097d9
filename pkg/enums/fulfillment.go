package enums

import (
	"fmt"
	"strings"
)

// Confirmed order statuses are free-form strings; these are the values the
// system itself writes.
const (
	ConfirmedOrderReadyToPick = "Ready to Pick"
	ConfirmedOrderAssigned    = "Assigned"
	ConfirmedOrderCancelled   = "Cancelled"
)

// DeliveryStatus is the physical delivery state of a delivery entry.
type DeliveryStatus string

const (
	DeliveryStatusReady     DeliveryStatus = "Ready for delivery"
	DeliveryStatusOut       DeliveryStatus = "Out for delivery"
	DeliveryStatusDelivered DeliveryStatus = "Delivered"
	DeliveryStatusFailed    DeliveryStatus = "Failed delivery"
	DeliveryStatusReturned  DeliveryStatus = "Returned"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusReady,
	DeliveryStatusOut,
	DeliveryStatusDelivered,
	DeliveryStatusFailed,
	DeliveryStatusReturned,
}

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is one of the closed delivery statuses.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// DeliveryStatusValues lists the accepted delivery statuses in display order.
func DeliveryStatusValues() []string {
	out := make([]string, 0, len(validDeliveryStatuses))
	for _, s := range validDeliveryStatuses {
		out = append(out, string(s))
	}
	return out
}

// ParseDeliveryStatus matches value exactly against the closed set.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid status. valid statuses are: %s", strings.Join(DeliveryStatusValues(), ", "))
}

// RouteStatus tracks a generated route.
type RouteStatus string

const (
	RouteStatusActive    RouteStatus = "active"
	RouteStatusCompleted RouteStatus = "completed"
	RouteStatusArchived  RouteStatus = "archived"
)

var validRouteStatuses = []RouteStatus{
	RouteStatusActive,
	RouteStatusCompleted,
	RouteStatusArchived,
}

// String implements fmt.Stringer.
func (r RouteStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RouteStatus.
func (r RouteStatus) IsValid() bool {
	for _, candidate := range validRouteStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRouteStatus converts raw input into a RouteStatus.
func ParseRouteStatus(value string) (RouteStatus, error) {
	for _, candidate := range validRouteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid route status %q", value)
}

// RouteStopStatus tracks one stop on a route.
type RouteStopStatus string

const (
	RouteStopStatusPending RouteStopStatus = "pending"
	RouteStopStatusVisited RouteStopStatus = "visited"
	RouteStopStatusSkipped RouteStopStatus = "skipped"
)

var validRouteStopStatuses = []RouteStopStatus{
	RouteStopStatusPending,
	RouteStopStatusVisited,
	RouteStopStatusSkipped,
}

// String implements fmt.Stringer.
func (r RouteStopStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RouteStopStatus.
func (r RouteStopStatus) IsValid() bool {
	for _, candidate := range validRouteStopStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRouteStopStatus converts raw input into a RouteStopStatus.
func ParseRouteStopStatus(value string) (RouteStopStatus, error) {
	for _, candidate := range validRouteStopStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid route stop status %q", value)
}
