package notifications

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sharenet/backend/internal/api"
	"github.com/sharenet/backend/internal/middleware"
	"github.com/sharenet/backend/internal/models"
)

// Lister is the read side used by the HTTP handler.
type Lister interface {
	ListByAccount(ctx context.Context, accountID int64) ([]*models.Notification, error)
}

type ListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
}

type Handler struct {
	store Lister
	log   *slog.Logger
}

func NewHandler(store Lister, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{store: store, log: log}
}

// List handles GET /api/notifications for the authenticated account.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromCtx(r.Context())
	if !ok {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.store.ListByAccount(r.Context(), accountID)
	if err != nil {
		h.log.Error("list notifications failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []*models.Notification{}
	}
	api.JSON(w, http.StatusOK, ListResponse{Notifications: list})
}
