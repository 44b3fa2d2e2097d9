package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/merko/merko-backend/pkg/config"
	"github.com/merko/merko-backend/pkg/types"
)

// corsHeaders are the request headers browsers may send cross origin.
var corsHeaders = []string{
	"Accept", "Authorization", "Content-Type", "X-Requested-With",
	idempotencyHeader, types.RequestIDHeader,
}

// CORS applies the configured origin allowlist. Responses expose the
// request id and the idempotent replay marker so browser clients can read
// them.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   corsHeaders,
		ExposedHeaders:   []string{types.RequestIDHeader, replayedHeader, rateLimitHeader, rateRemainingHeader, "Location", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
