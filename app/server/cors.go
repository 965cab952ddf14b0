package server

import (
	"net/http"

	"github.com/factoryops/inventory/app/logging"
	"github.com/rs/cors"
)

// newCORS allows browser calls from the listed origins. "*" allows any origin.
// Preflight requests are answered with 204 and never reach the routes.
func newCORS(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", logging.RequestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", logging.RequestIDHeader},
	})
}
