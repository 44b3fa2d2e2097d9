package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/pkg/enums"
)

// Cart holds a merchant's pending purchase. At most one ACTIVE cart exists per user.
type Cart struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_carts_active_user,where:status = 'ACTIVE'"`
	Status    enums.CartStatus `gorm:"column:status;not null;default:'ACTIVE'"`
	Items     []CartItem       `gorm:"foreignKey:CartID;references:ID"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// CartItem is one product line in a cart with the price observed at add time.
type CartItem struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	CartID      uuid.UUID        `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_items_cart_product"`
	ProductID   uuid.UUID        `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_cart_items_cart_product"`
	Quantity    int              `gorm:"column:quantity;not null"`
	PriceAtTime *decimal.Decimal `gorm:"column:price_at_time;type:numeric(12,2)"`
	Product     *Product         `gorm:"foreignKey:ProductID;references:ID"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CartItem) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// UnitPrice returns the snapshot price, falling back to the loaded product price.
func (c CartItem) UnitPrice() decimal.Decimal {
	if c.PriceAtTime != nil {
		return *c.PriceAtTime
	}
	if c.Product != nil {
		return c.Product.Price
	}
	return decimal.Zero
}

// LineTotal is UnitPrice × Quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice().Mul(decimal.NewFromInt(int64(c.Quantity)))
}
