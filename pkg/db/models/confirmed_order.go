package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConfirmedOrder is the fulfillment-facing projection written when a supplier
// confirms an order item. Status is a free-form pick/pack label.
type ConfirmedOrder struct {
	ID                   uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID              uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	OrderItemID          uuid.UUID       `gorm:"column:order_item_id;type:uuid;not null;uniqueIndex"`
	MerchantID           uuid.UUID       `gorm:"column:merchant_id;type:uuid;not null"`
	SupplierID           uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null"`
	MerchantName         string          `gorm:"column:merchant_name"`
	SupplierName         string          `gorm:"column:supplier_name"`
	ContactNumber        *string         `gorm:"column:contact_number"`
	DeliveryAddress      string          `gorm:"column:delivery_address"`
	DeliveryInstructions *string         `gorm:"column:delivery_instructions"`
	Route                *string         `gorm:"column:route"`
	Status               string          `gorm:"column:status;not null;index"`
	OrderDate            time.Time       `gorm:"column:order_date;not null"`
	TotalAmount          decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *ConfirmedOrder) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
