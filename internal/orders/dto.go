package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
)

// OrderSummaryDTO is one row of a merchant's order history.
type OrderSummaryDTO struct {
	ID             uuid.UUID            `json:"id"`
	OrderNumber    string               `json:"orderNumber"`
	Status         enums.OrderStatus    `json:"status"`
	TotalAmount    decimal.Decimal      `json:"totalAmount"`
	OrderDate      time.Time            `json:"orderDate"`
	ItemCount      int                  `json:"itemCount"`
	ShippingMethod enums.ShippingMethod `json:"shippingMethod"`
}

// OrderDetailsDTO is the full view of one order.
type OrderDetailsDTO struct {
	ID           uuid.UUID         `json:"id"`
	OrderNumber  string            `json:"orderNumber"`
	Status       enums.OrderStatus `json:"status"`
	Subtotal     decimal.Decimal   `json:"subtotal"`
	TaxAmount    decimal.Decimal   `json:"taxAmount"`
	ShippingCost decimal.Decimal   `json:"shippingCost"`
	TotalAmount  decimal.Decimal   `json:"totalAmount"`
	OrderDate    time.Time         `json:"orderDate"`
	UpdatedAt    time.Time         `json:"updatedAt"`

	ShippingFirstName   string  `json:"shippingFirstName"`
	ShippingLastName    string  `json:"shippingLastName"`
	ShippingCompanyName *string `json:"shippingCompanyName,omitempty"`
	ShippingAddress     string  `json:"shippingAddress"`
	ShippingApartment   *string `json:"shippingApartment,omitempty"`
	ShippingCity        string  `json:"shippingCity"`
	ShippingState       string  `json:"shippingState"`
	ShippingZipCode     string  `json:"shippingZipCode"`
	ShippingPhone       *string `json:"shippingPhone,omitempty"`

	PaymentMethod       enums.PaymentMethod  `json:"paymentMethod"`
	CardLastFour        *string              `json:"cardLastFour,omitempty"`
	CardHolderName      *string              `json:"cardHolderName,omitempty"`
	CardExpiration      *string              `json:"cardExpiration,omitempty"`
	PurchaseOrderNumber *string              `json:"purchaseOrderNumber,omitempty"`
	ShippingMethod      enums.ShippingMethod `json:"shippingMethod"`

	Items []OrderItemDTO `json:"orderItems"`
}

// OrderItemDTO is one line of an order.
type OrderItemDTO struct {
	ID          uuid.UUID             `json:"id"`
	ProductID   uuid.UUID             `json:"productId"`
	ProductName string                `json:"productName"`
	ProductSKU  string                `json:"productSku"`
	Quantity    int                   `json:"quantity"`
	PriceAtTime decimal.Decimal       `json:"priceAtTime"`
	TotalPrice  decimal.Decimal       `json:"totalPrice"`
	Status      enums.OrderItemStatus `json:"status"`
}

// SupplierOrderItemDTO is an order item as seen by the supplier of its product.
type SupplierOrderItemDTO struct {
	ID                  uuid.UUID             `json:"id"`
	OrderID             uuid.UUID             `json:"orderId"`
	OrderNumber         string                `json:"orderNumber"`
	OrderDate           time.Time             `json:"orderDate"`
	MerchantCompanyName string                `json:"merchantCompanyName"`
	ProductName         string                `json:"productName"`
	ProductSKU          string                `json:"productSku"`
	SupplierCompanyName *string               `json:"supplierCompanyName,omitempty"`
	CurrentStock        int                   `json:"currentStock"`
	Quantity            int                   `json:"quantity"`
	PriceAtTime         decimal.Decimal       `json:"priceAtTime"`
	TotalPrice          decimal.Decimal       `json:"totalPrice"`
	Status              enums.OrderItemStatus `json:"status"`
}

// ToSummary maps an order with loaded items to its history row.
func ToSummary(order *models.Order) OrderSummaryDTO {
	return OrderSummaryDTO{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		Status:         DeriveOrderStatus(itemStatuses(order.Items)),
		TotalAmount:    order.TotalAmount,
		OrderDate:      order.OrderDate,
		ItemCount:      len(order.Items),
		ShippingMethod: order.ShippingMethod,
	}
}

// ToDetails maps an order with loaded items and products to its full view.
func ToDetails(order *models.Order) *OrderDetailsDTO {
	dto := &OrderDetailsDTO{
		ID:                  order.ID,
		OrderNumber:         order.OrderNumber,
		Status:              DeriveOrderStatus(itemStatuses(order.Items)),
		Subtotal:            order.Subtotal,
		TaxAmount:           order.TaxAmount,
		ShippingCost:        order.ShippingCost,
		TotalAmount:         order.TotalAmount,
		OrderDate:           order.OrderDate,
		UpdatedAt:           order.UpdatedAt,
		ShippingFirstName:   order.ShippingFirstName,
		ShippingLastName:    order.ShippingLastName,
		ShippingCompanyName: order.ShippingCompanyName,
		ShippingAddress:     order.ShippingAddress,
		ShippingApartment:   order.ShippingApartment,
		ShippingCity:        order.ShippingCity,
		ShippingState:       order.ShippingState,
		ShippingZipCode:     order.ShippingZipCode,
		ShippingPhone:       order.ShippingPhone,
		PaymentMethod:       order.PaymentMethod,
		CardLastFour:        order.CardLastFour,
		CardHolderName:      order.CardHolderName,
		CardExpiration:      order.CardExpiration,
		PurchaseOrderNumber: order.PurchaseOrderNumber,
		ShippingMethod:      order.ShippingMethod,
		Items:               make([]OrderItemDTO, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		line := OrderItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			PriceAtTime: item.PriceAtTime,
			TotalPrice:  item.TotalPrice,
			Status:      item.Status,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.ProductSKU = item.Product.SKU
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}

func toSupplierItem(item *models.OrderItem) SupplierOrderItemDTO {
	dto := SupplierOrderItemDTO{
		ID:          item.ID,
		OrderID:     item.OrderID,
		ProductName: "Product Not Available",
		ProductSKU:  "N/A",
		Quantity:    item.Quantity,
		PriceAtTime: item.PriceAtTime,
		TotalPrice:  item.TotalPrice,
		Status:      item.Status,
	}
	if p := item.Product; p != nil {
		dto.ProductName = p.Name
		dto.ProductSKU = p.SKU
		dto.CurrentStock = p.StockQuantity
		dto.SupplierCompanyName = p.SupplierCompanyName
	}
	if o := item.Order; o != nil {
		dto.OrderNumber = o.OrderNumber
		dto.OrderDate = o.OrderDate
		if o.User != nil {
			dto.MerchantCompanyName = o.User.DisplayName()
		}
	}
	return dto
}
