package router

import (
	"net/http"

	"github.com/rs/cors"
)

// WithCORS lets the listed browser origins call the API with the session
// cookie. With no origins h is returned unwrapped and no CORS headers are
// sent, so only same-origin pages can use the cookie.
func WithCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(h)
}
