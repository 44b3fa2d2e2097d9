package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/merko/merko-backend/api/responses"
	"github.com/merko/merko-backend/api/validators"
	"github.com/merko/merko-backend/internal/delivery"
	"github.com/merko/merko-backend/pkg/logger"
)

type createEntryRequest struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
}

// DeliveryEntryCreate assigns a confirmed order for delivery. orderId is the
// confirmed order id.
func DeliveryEntryCreate(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "delivery service")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}

		var payload createEntryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.CreateEntry(r.Context(), actor, payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, delivery.ToDTO(entry))
	}
}

func DeliveryEntriesList(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "delivery service")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}

		entries, err := svc.List(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery.ToDTOs(entries))
	}
}

func DeliveryEntryStatus(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "delivery service")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "deliveryId", "delivery")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload statusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.UpdateStatus(r.Context(), actor, id, payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery.ToDTO(entry))
	}
}

func DeliveryEntryDelete(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "delivery service")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "deliveryId", "delivery")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteEntry(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
