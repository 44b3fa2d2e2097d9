package delivery

import (
	"time"

	"github.com/google/uuid"

	"github.com/merko/merko-backend/pkg/db/models"
	"github.com/merko/merko-backend/pkg/enums"
)

// EntryDTO is the API view of a delivery entry.
type EntryDTO struct {
	ID               uuid.UUID            `json:"deliveryId"`
	ConfirmedOrderID uuid.UUID            `json:"orderId"`
	MerchantName     string               `json:"merchantName"`
	SupplierName     string               `json:"supplierName"`
	DeliveryAddress  string               `json:"deliveryAddress"`
	Status           enums.DeliveryStatus `json:"status"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

func ToDTO(entry *models.DeliveryEntry) EntryDTO {
	return EntryDTO{
		ID:               entry.ID,
		ConfirmedOrderID: entry.ConfirmedOrderID,
		MerchantName:     entry.MerchantName,
		SupplierName:     entry.SupplierName,
		DeliveryAddress:  entry.DeliveryAddress,
		Status:           entry.Status,
		CreatedAt:        entry.CreatedAt,
		UpdatedAt:        entry.UpdatedAt,
	}
}

func ToDTOs(entries []models.DeliveryEntry) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for i := range entries {
		out = append(out, ToDTO(&entries[i]))
	}
	return out
}
