package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merko/merko-backend/pkg/enums"
)

// Order is created from a cart at checkout. Shipping and payment fields are an
// immutable snapshot; the order status is derived from its items.
type Order struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber string    `gorm:"column:order_number;not null;uniqueIndex"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	User        *User     `gorm:"foreignKey:UserID;references:ID"`

	ShippingFirstName   string  `gorm:"column:shipping_first_name"`
	ShippingLastName    string  `gorm:"column:shipping_last_name"`
	ShippingCompanyName *string `gorm:"column:shipping_company_name"`
	ShippingAddress     string  `gorm:"column:shipping_address;not null"`
	ShippingApartment   *string `gorm:"column:shipping_apartment"`
	ShippingCity        string  `gorm:"column:shipping_city"`
	ShippingState       string  `gorm:"column:shipping_state"`
	ShippingZipCode     string  `gorm:"column:shipping_zip_code"`
	ShippingPhone       *string `gorm:"column:shipping_phone"`

	PaymentMethod       enums.PaymentMethod `gorm:"column:payment_method;not null"`
	CardLastFour        *string             `gorm:"column:card_last_four"`
	CardHolderName      *string             `gorm:"column:card_holder_name"`
	CardExpiration      *string             `gorm:"column:card_expiration"`
	PurchaseOrderNumber *string             `gorm:"column:purchase_order_number"`

	ShippingMethod enums.ShippingMethod `gorm:"column:shipping_method;not null"`
	Subtotal       decimal.Decimal      `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TaxAmount      decimal.Decimal      `gorm:"column:tax_amount;type:numeric(12,2);not null"`
	ShippingCost   decimal.Decimal      `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	TotalAmount    decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`

	Items     []OrderItem `gorm:"foreignKey:OrderID;references:ID"`
	OrderDate time.Time   `gorm:"column:order_date;not null"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}
	return nil
}

// OrderItem is one product line of an order with its own status machine.
type OrderItem struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	Order       *Order                `gorm:"foreignKey:OrderID;references:ID"`
	ProductID   uuid.UUID             `gorm:"column:product_id;type:uuid;not null;index"`
	Product     *Product              `gorm:"foreignKey:ProductID;references:ID"`
	Quantity    int                   `gorm:"column:quantity;not null"`
	PriceAtTime decimal.Decimal       `gorm:"column:price_at_time;type:numeric(12,2);not null"`
	TotalPrice  decimal.Decimal       `gorm:"column:total_price;type:numeric(12,2);not null"`
	Status      enums.OrderItemStatus `gorm:"column:status;not null;default:'PENDING'"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeSave keeps TotalPrice equal to PriceAtTime × Quantity.
func (i *OrderItem) BeforeSave(*gorm.DB) error {
	i.RecalculateTotal()
	return nil
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// RecalculateTotal sets TotalPrice from the current price and quantity.
func (i *OrderItem) RecalculateTotal() {
	i.TotalPrice = i.PriceAtTime.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
