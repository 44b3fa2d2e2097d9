package controllers

import (
	"net/http"

	"github.com/merko/merko-backend/api/responses"
	"github.com/merko/merko-backend/api/validators"
	"github.com/merko/merko-backend/internal/checkout"
	"github.com/merko/merko-backend/pkg/logger"
)

// Checkout turns the caller's active cart into a PENDING order and points
// Location at the new order.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "checkout service")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		var req checkout.Request
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ProcessCheckout(r.Context(), actor, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set("Location", "/api/orders/"+order.ID.String())
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
