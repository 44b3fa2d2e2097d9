package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
)

// CartDTO is the read projection of a merchant's ACTIVE cart.
type CartDTO struct {
	ID            *uuid.UUID       `json:"id,omitempty"`
	UserEmail     string           `json:"userEmail"`
	UserName      string           `json:"userName"`
	Status        enums.CartStatus `json:"status"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	TotalQuantity int              `json:"totalQuantity"`
	Items         []CartItemDTO    `json:"cartItems"`
	CreatedAt     *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time       `json:"updatedAt,omitempty"`
}

// CartItemDTO is one line of the cart projection.
type CartItemDTO struct {
	ID                  uuid.UUID       `json:"id"`
	ProductID           uuid.UUID       `json:"productId"`
	ProductName         string          `json:"productName"`
	ProductSKU          string          `json:"productSku"`
	SupplierCompanyName *string         `json:"supplierCompanyName,omitempty"`
	Brand               *string         `json:"brand,omitempty"`
	Category            *string         `json:"category,omitempty"`
	PriceAtTime         decimal.Decimal `json:"priceAtTime"`
	Quantity            int             `json:"quantity"`
	Total               decimal.Decimal `json:"total"`
	StockQuantity       int             `json:"stockQuantity"`
	CreatedAt           time.Time       `json:"createdAt"`
}

func emptyCart(user *models.User) *CartDTO {
	dto := &CartDTO{
		Status:   enums.CartStatusActive,
		Subtotal: decimal.Zero,
		Items:    []CartItemDTO{},
	}
	if user != nil {
		dto.UserEmail = user.Email
		dto.UserName = user.DisplayName()
	}
	return dto
}

func toCartDTO(cart *models.Cart, user *models.User) *CartDTO {
	dto := emptyCart(user)
	id := cart.ID
	created, updated := cart.CreatedAt, cart.UpdatedAt
	dto.ID = &id
	dto.Status = cart.Status
	dto.CreatedAt = &created
	dto.UpdatedAt = &updated

	for _, item := range cart.Items {
		line := CartItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			PriceAtTime: item.UnitPrice(),
			Quantity:    item.Quantity,
			Total:       item.LineTotal(),
			CreatedAt:   item.CreatedAt,
		}
		if p := item.Product; p != nil {
			line.ProductName = p.Name
			line.ProductSKU = p.SKU
			line.SupplierCompanyName = p.SupplierCompanyName
			line.Brand = p.Brand
			line.Category = p.Category
			line.StockQuantity = p.StockQuantity
		}
		dto.Items = append(dto.Items, line)
		dto.Subtotal = dto.Subtotal.Add(line.Total)
		dto.TotalQuantity += item.Quantity
	}
	return dto
}
