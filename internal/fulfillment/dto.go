package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merko/merko-backend/pkg/db/models"
)

// ConfirmedOrderDTO is the delivery staff view of a confirmed order.
type ConfirmedOrderDTO struct {
	ID                   uuid.UUID       `json:"id"`
	OrderID              uuid.UUID       `json:"orderId"`
	OrderItemID          uuid.UUID       `json:"orderItemId"`
	MerchantName         string          `json:"merchantName"`
	SupplierName         string          `json:"supplierName"`
	ContactNumber        *string         `json:"contactNumber,omitempty"`
	DeliveryAddress      string          `json:"deliveryAddress"`
	DeliveryInstructions *string         `json:"deliveryInstructions,omitempty"`
	Route                *string         `json:"route,omitempty"`
	Status               string          `json:"status"`
	OrderDate            time.Time       `json:"orderDate"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
}

func ToDTO(row *models.ConfirmedOrder) ConfirmedOrderDTO {
	return ConfirmedOrderDTO{
		ID:                   row.ID,
		OrderID:              row.OrderID,
		OrderItemID:          row.OrderItemID,
		MerchantName:         row.MerchantName,
		SupplierName:         row.SupplierName,
		ContactNumber:        row.ContactNumber,
		DeliveryAddress:      row.DeliveryAddress,
		DeliveryInstructions: row.DeliveryInstructions,
		Route:                row.Route,
		Status:               row.Status,
		OrderDate:            row.OrderDate,
		TotalAmount:          row.TotalAmount,
	}
}

func ToDTOs(rows []models.ConfirmedOrder) []ConfirmedOrderDTO {
	out := make([]ConfirmedOrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, ToDTO(&rows[i]))
	}
	return out
}
