package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sharenet/backend/internal/api"
	"github.com/sharenet/backend/internal/models"
)

type SendMessageRequest struct {
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	Body       string `json:"body"`
}

type SendMessageResponse struct {
	Chat *models.ChatMessage `json:"chat"`
}

type HistoryResponse struct {
	Chats []*models.ChatMessage `json:"chats"`
}

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// Send handles POST /api/chats/send.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.SenderID == 0 || req.ReceiverID == 0 {
		api.Error(w, http.StatusBadRequest, "sender_id and receiver_id are required")
		return
	}
	msg, err := h.svc.Send(r.Context(), req.SenderID, req.ReceiverID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyBody):
			api.Error(w, http.StatusBadRequest, "message body is required")
		case errors.Is(err, ErrSelfMessage):
			api.Error(w, http.StatusBadRequest, "cannot send a message to yourself")
		case errors.Is(err, ErrUnknownParticipant):
			api.Error(w, http.StatusNotFound, "sender or receiver not found")
		default:
			h.log.Error("send message failed", "error", err)
			api.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	api.JSON(w, http.StatusCreated, SendMessageResponse{Chat: msg})
}

// History handles GET /api/chats/{user1}/{user2}.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	a, errA := strconv.ParseInt(r.PathValue("user1"), 10, 64)
	b, errB := strconv.ParseInt(r.PathValue("user2"), 10, 64)
	if errA != nil || errB != nil {
		api.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	msgs, err := h.svc.History(r.Context(), a, b)
	if err != nil {
		h.log.Error("chat history failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if msgs == nil {
		msgs = []*models.ChatMessage{}
	}
	api.JSON(w, http.StatusOK, HistoryResponse{Chats: msgs})
}
