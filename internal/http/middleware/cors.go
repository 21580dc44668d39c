package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS разрешает браузерным клиентам из origins ходить в API с bearer-токеном.
// Пустой список — мидлвар no-op (same-origin).
func CORS(origins []string) Middleware {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         600,
	})

	return c.Handler
}
