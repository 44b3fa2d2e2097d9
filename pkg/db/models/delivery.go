package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/pkg/enums"
)

// DeliveryEntry schedules one confirmed order for physical delivery.
type DeliveryEntry struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	ConfirmedOrderID uuid.UUID            `gorm:"column:confirmed_order_id;type:uuid;not null;uniqueIndex:ux_delivery_entries_confirmed_order"`
	MerchantName     string               `gorm:"column:merchant_name;not null"`
	SupplierName     string               `gorm:"column:supplier_name;not null"`
	DeliveryAddress  string               `gorm:"column:delivery_address;not null"`
	Status           enums.DeliveryStatus `gorm:"column:status;not null;index"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *DeliveryEntry) BeforeCreate(*gorm.DB) error {
	assignID(&d.ID)
	return nil
}

// Route is an ordered sequence of stops starting at the distribution center.
type Route struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name              string            `gorm:"column:route_name;not null"`
	StartLocation     string            `gorm:"column:start_location;not null"`
	EndLocation       string            `gorm:"column:end_location;not null"`
	TotalDistance     decimal.Decimal   `gorm:"column:total_distance;type:numeric(10,2);not null;default:0"`
	EstimatedDuration int               `gorm:"column:estimated_duration;not null;default:0"`
	DeliveryAddresses string            `gorm:"column:delivery_addresses;type:text;not null"`
	Status            enums.RouteStatus `gorm:"column:status;not null;default:'active'"`
	Stops             []RouteStop       `gorm:"foreignKey:RouteID;references:ID"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Route) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// RouteStop places one delivery entry on a route. Visited stops are kept as an
// audit trail.
type RouteStop struct {
	ID                   uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	RouteID              uuid.UUID             `gorm:"column:route_id;type:uuid;not null;index"`
	DeliveryEntryID      uuid.UUID             `gorm:"column:delivery_entry_id;type:uuid;not null;index"`
	StopOrder            int                   `gorm:"column:stop_order;not null"`
	Address              string                `gorm:"column:address;not null"`
	EstimatedArrivalTime *time.Time            `gorm:"column:estimated_arrival_time"`
	ActualArrivalTime    *time.Time            `gorm:"column:actual_arrival_time"`
	Status               enums.RouteStopStatus `gorm:"column:status;not null;default:'pending'"`
	Notes                *string               `gorm:"column:notes"`
	CreatedAt            time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (s *RouteStop) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
