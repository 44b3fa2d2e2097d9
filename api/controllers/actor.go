package controllers

import (
	"net/http"

	"github.com/merko/merko-backend/api/middleware"
	"github.com/merko/merko-backend/api/responses"
	"github.com/merko/merko-backend/internal/authz"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
	"github.com/merko/merko-backend/pkg/logger"
)

// requestActor resolves the caller or writes the error response. The boolean
// is false once a response has been written.
func requestActor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (authz.Actor, bool) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return authz.Actor{}, false
	}
	return actor, true
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, what string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, what+" unavailable"))
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type statusRequest struct {
	Status string `json:"status"`
}
