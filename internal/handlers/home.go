// Package handlers holds the unauthenticated service endpoints: the home
// banner and the health probe.
package handlers

import (
	"net/http"
	"time"

	"github.com/sharenet/backend/internal/api"
)

type HomeResponse struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

// Home serves GET /.
func Home(w http.ResponseWriter, _ *http.Request) {
	api.JSON(w, http.StatusOK, HomeResponse{
		Message: "Welcome to ShareNet API",
		Status:  "running",
		Version: "1.0.0",
		Endpoints: map[string]string{
			"auth":          "/api/auth",
			"users":         "/api/users",
			"items":         "/api/items",
			"transactions":  "/api/transactions",
			"chats":         "/api/chats",
			"notifications": "/api/notifications",
		},
	})
}

// Health serves GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	api.JSON(w, http.StatusOK, HealthResponse{
		Status:    "UP",
		Service:   "ShareNet Backend",
		Timestamp: time.Now(),
	})
}
