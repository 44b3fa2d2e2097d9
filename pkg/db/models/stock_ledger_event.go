package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/pkg/enums"
)

// StockLedgerEvent is an append-only record of a stock counter change.
type StockLedgerEvent struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	ProductID   uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index"`
	OrderItemID uuid.UUID               `gorm:"column:order_item_id;type:uuid;not null;index"`
	ActorUserID uuid.UUID               `gorm:"column:actor_user_id;type:uuid;not null"`
	Type        enums.StockMovementType `gorm:"column:type;not null"`
	Quantity    int                     `gorm:"column:quantity;not null"`
	StockAfter  int                     `gorm:"column:stock_after;not null"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (e *StockLedgerEvent) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}
