package routes

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
)

// RouteDTO is the API view of a route.
type RouteDTO struct {
	ID                uuid.UUID         `json:"routeId"`
	Name              string            `json:"routeName"`
	StartLocation     string            `json:"startLocation"`
	EndLocation       string            `json:"endLocation"`
	TotalDistance     decimal.Decimal   `json:"totalDistance"`
	EstimatedDuration int               `json:"estimatedDuration"`
	DeliveryAddresses []string          `json:"deliveryAddresses"`
	Status            enums.RouteStatus `json:"status"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// StopDTO is the API view of a route stop.
type StopDTO struct {
	ID                   uuid.UUID             `json:"stopId"`
	RouteID              uuid.UUID             `json:"routeId"`
	DeliveryEntryID      uuid.UUID             `json:"deliveryId"`
	StopOrder            int                   `json:"stopOrder"`
	Address              string                `json:"address"`
	EstimatedArrivalTime *time.Time            `json:"estimatedArrivalTime,omitempty"`
	ActualArrivalTime    *time.Time            `json:"actualArrivalTime,omitempty"`
	Status               enums.RouteStopStatus `json:"status"`
	Notes                *string               `json:"notes,omitempty"`
}

// RouteWithStopsDTO pairs a route with its stops in visiting order.
type RouteWithStopsDTO struct {
	Route RouteDTO  `json:"route"`
	Stops []StopDTO `json:"stops"`
}

func ToRouteDTO(route *models.Route) RouteDTO {
	var addresses []string
	if err := json.Unmarshal([]byte(route.DeliveryAddresses), &addresses); err != nil || addresses == nil {
		addresses = []string{}
	}
	return RouteDTO{
		ID:                route.ID,
		Name:              route.Name,
		StartLocation:     route.StartLocation,
		EndLocation:       route.EndLocation,
		TotalDistance:     route.TotalDistance,
		EstimatedDuration: route.EstimatedDuration,
		DeliveryAddresses: addresses,
		Status:            route.Status,
		CreatedAt:         route.CreatedAt,
		UpdatedAt:         route.UpdatedAt,
	}
}

func ToStopDTO(stop *models.RouteStop) StopDTO {
	return StopDTO{
		ID:                   stop.ID,
		RouteID:              stop.RouteID,
		DeliveryEntryID:      stop.DeliveryEntryID,
		StopOrder:            stop.StopOrder,
		Address:              stop.Address,
		EstimatedArrivalTime: stop.EstimatedArrivalTime,
		ActualArrivalTime:    stop.ActualArrivalTime,
		Status:               stop.Status,
		Notes:                stop.Notes,
	}
}

func toRouteWithStops(route *models.Route) *RouteWithStopsDTO {
	out := &RouteWithStopsDTO{Route: ToRouteDTO(route), Stops: make([]StopDTO, 0, len(route.Stops))}
	for i := range route.Stops {
		out.Stops = append(out.Stops, ToStopDTO(&route.Stops[i]))
	}
	return out
}
