package enums

import (
	"fmt"
	"strings"
)

// CartStatus tracks the lifecycle of a merchant cart. A cart is created
// ACTIVE and leaves that state exactly once, either through checkout or
// through the abandonment sweep.
type CartStatus string

const (
	CartStatusActive    CartStatus = "ACTIVE"
	CartStatusOrdered   CartStatus = "ORDERED"
	CartStatusAbandoned CartStatus = "ABANDONED"
)

// cartPredecessors lists, per status, the statuses a cart may move from.
var cartPredecessors = map[CartStatus][]CartStatus{
	CartStatusActive:    nil,
	CartStatusOrdered:   {CartStatusActive},
	CartStatusAbandoned: {CartStatusActive},
}

func (c CartStatus) String() string {
	return string(c)
}

func (c CartStatus) IsValid() bool {
	_, ok := cartPredecessors[c]
	return ok
}

// IsOpen reports whether items may still be added, changed or checked out.
func (c CartStatus) IsOpen() bool {
	return c == CartStatusActive
}

// Predecessors returns the statuses from which a cart may move to c.
func (c CartStatus) Predecessors() []CartStatus {
	return append([]CartStatus(nil), cartPredecessors[c]...)
}

// CanTransitionTo reports whether a cart in c may move to next.
func (c CartStatus) CanTransitionTo(next CartStatus) bool {
	for _, from := range cartPredecessors[next] {
		if from == c {
			return true
		}
	}
	return false
}

// ParseCartStatus converts raw input into a CartStatus, ignoring case.
func ParseCartStatus(value string) (CartStatus, error) {
	normalized := CartStatus(strings.ToUpper(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid cart status %q", value)
}
