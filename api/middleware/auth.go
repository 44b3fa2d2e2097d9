package middleware

import (
	"net/http"
	"strings"

	"github.com/merko/merko-backend/api/responses"
	"github.com/merko/merko-backend/internal/authz"
	pkgAuth "github.com/merko/merko-backend/pkg/auth"
	"github.com/merko/merko-backend/pkg/config"
	pkgerrors "github.com/merko/merko-backend/pkg/errors"
	"github.com/merko/merko-backend/pkg/logger"
)

const bearerScheme = "bearer"

// Auth requires a valid bearer token and seeds the context with its actor.
// Rejections carry a WWW-Authenticate challenge.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reject := func(err error) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="merko"`)
				responses.WriteError(r.Context(), logg, w, err)
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				reject(pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				reject(pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			actor, err := authz.NewActor(claims.UserID, claims.Role)
			if err != nil {
				reject(err)
				return
			}

			ctx := WithActor(r.Context(), actor)
			if logg != nil {
				ctx = logg.WithActor(ctx, actor.UserID.String(), string(actor.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the credential from an Authorization header. A bare
// token without a scheme is accepted; any scheme other than Bearer is not.
func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	scheme, rest, found := strings.Cut(header, " ")
	switch {
	case header == "", strings.EqualFold(header, bearerScheme):
		return "", false
	case !found:
		return header, true
	case !strings.EqualFold(scheme, bearerScheme):
		return "", false
	}
	token := strings.TrimSpace(rest)
	return token, token != ""
}
