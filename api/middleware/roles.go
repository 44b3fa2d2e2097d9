package middleware

import (
	"net/http"

	"github.com/merko/merko-backend/api/responses"
	"github.com/merko/merko-backend/internal/authz"
	"github.com/merko/merko-backend/pkg/enums"
	"github.com/merko/merko-backend/pkg/logger"
)

// RequireRole rejects callers whose role is not one of roles. It runs after
// Auth and reuses the domain check so the HTTP and service layers agree.
func RequireRole(logg *logger.Logger, roles ...enums.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := ActorFromContext(r.Context())
			if err == nil {
				err = authz.RequireRole(actor, roles...)
			}
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
