package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/merko/merko-backend/pkg/logger"
	"github.com/merko/merko-backend/pkg/types"
)

// Only short opaque client ids are echoed, so a caller cannot push
// arbitrary text into the logs.
var clientRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{8,128}$`)

func requestIDFor(r *http.Request) string {
	if id := r.Header.Get(types.RequestIDHeader); clientRequestID.MatchString(id) {
		return id
	}
	return uuid.NewString()
}

// RequestID tags every request with an id, set on the response header and
// on the logger carried by the request context.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := requestIDFor(r)
			w.Header().Set(types.RequestIDHeader, id)

			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			if logg != nil {
				ctx = logg.WithRequestID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
