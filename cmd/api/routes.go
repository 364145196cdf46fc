package main

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/sharenet/backend/internal/config"
	"github.com/sharenet/backend/internal/handlers"
)

// newHTTPHandler assembles the top-level mux: the API router under /api/,
// the home banner and the health probe at the root, all behind CORS.
func newHTTPHandler(cfg *config.Config, apiRouter http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.HandleFunc("GET /{$}", handlers.Home)
	mux.HandleFunc("GET /health", handlers.Health)

	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
	}).Handler(mux)
}
