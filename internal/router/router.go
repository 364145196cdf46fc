package router

import (
	"net/http"

	"github.com/sharenet/backend/internal/auth"
	"github.com/sharenet/backend/internal/chat"
	"github.com/sharenet/backend/internal/items"
	"github.com/sharenet/backend/internal/ledger"
	"github.com/sharenet/backend/internal/middleware"
	"github.com/sharenet/backend/internal/notifications"
)

// New returns an http.Handler that serves the API under /api. Routes that
// act on the logged-in account go through the JWT middleware; the rest are
// public and identify accounts by path or body.
func New(
	authHandler *auth.Handler,
	ledgerHandler *ledger.Handler,
	chatHandler *chat.Handler,
	itemsHandler *items.Handler,
	notifHandler *notifications.Handler,
	validator middleware.TokenValidator,
) http.Handler {
	mux := http.NewServeMux()
	requireAuth := middleware.JWTAuth(validator)

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.HandleFunc("GET /api/users/{id}", authHandler.GetUser)
	mux.Handle("GET /api/user/profile", requireAuth(http.HandlerFunc(authHandler.Profile)))
	mux.Handle("PUT /api/user/profile", requireAuth(http.HandlerFunc(authHandler.UpdateProfile)))

	mux.HandleFunc("POST /api/users/buy-credit", ledgerHandler.BuyCredit)
	mux.HandleFunc("GET /api/transactions/user/{userId}", ledgerHandler.ListTransactions)
	mux.HandleFunc("POST /api/transactions/create", ledgerHandler.CreateTransaction)

	mux.HandleFunc("POST /api/chats/send", chatHandler.Send)
	mux.HandleFunc("GET /api/chats/{user1}/{user2}", chatHandler.History)

	mux.HandleFunc("POST /api/items/upload", itemsHandler.Upload)
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/available", itemsHandler.ListAvailable)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)

	mux.Handle("GET /api/notifications", requireAuth(http.HandlerFunc(notifHandler.List)))

	return mux
}
