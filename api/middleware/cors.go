package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/gymdesk-backend/pkg/config"
)

// CORS applies the allowed origin policy for the admin dashboard and the public payment form.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
