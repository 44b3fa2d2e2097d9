package controllers

import (
	"net/http"
	"strings"

	"github.com/merko/merko-backend/api/responses"
	"github.com/merko/merko-backend/api/validators"
	"github.com/merko/merko-backend/internal/fulfillment"
	"github.com/merko/merko-backend/pkg/logger"
)

type routeRequest struct {
	Route string `json:"route"`
}

// ConfirmedOrdersList filters by ?status=, ?date= and ?route=.
func ConfirmedOrdersList(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "confirmed orders service")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}

		query := r.URL.Query()
		filter := fulfillment.Filter{
			Status:     strings.TrimSpace(query.Get("status")),
			DateFilter: strings.TrimSpace(query.Get("date")),
			Route:      strings.TrimSpace(query.Get("route")),
		}

		rows, err := svc.List(r.Context(), actor, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fulfillment.ToDTOs(rows))
	}
}

// ConfirmedOrdersAssignable lists "Ready to Pick" rows with no delivery entry.
func ConfirmedOrdersAssignable(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "confirmed orders service")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}

		rows, err := svc.Assignable(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fulfillment.ToDTOs(rows))
	}
}

func ConfirmedOrdersCount(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "confirmed orders service")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}

		status := strings.TrimSpace(r.URL.Query().Get("status"))
		count, err := svc.CountByStatus(r.Context(), actor, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": status, "count": count})
	}
}

func ConfirmedOrderDetail(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "confirmed orders service")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "confirmedOrderId", "confirmed order")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fulfillment.ToDTO(row))
	}
}

func ConfirmedOrderStatus(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "confirmed orders service")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "confirmedOrderId", "confirmed order")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload statusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.UpdateStatus(r.Context(), actor, id, payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fulfillment.ToDTO(row))
	}
}

func ConfirmedOrderRoute(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "confirmed orders service")
			return
		}
		actor, ok := requestActor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "confirmedOrderId", "confirmed order")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload routeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.AssignRoute(r.Context(), actor, id, validators.SanitizeString(payload.Route, 255))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fulfillment.ToDTO(row))
	}
}
