package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sharenet/backend/internal/api"
	"github.com/sharenet/backend/internal/models"
)

// Request/response structs (snake_case JSON).

type BuyCreditRequest struct {
	UserID         int64            `json:"user_id"`
	Amount         *decimal.Decimal `json:"amount"`
	IdempotencyKey string           `json:"idempotency_key,omitempty"`
}

type CreateTransactionRequest struct {
	UserID      int64            `json:"user_id"`
	Amount      *decimal.Decimal `json:"amount"`
	Description string           `json:"description"`
}

type TransactionResponse struct {
	Account     *models.Account          `json:"account"`
	Transaction *models.TransactionEntry `json:"transaction"`
}

type TransactionListResponse struct {
	Transactions []*models.TransactionEntry `json:"transactions"`
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

// BuyCredit handles POST /api/users/buy-credit.
func (h *Handler) BuyCredit(w http.ResponseWriter, r *http.Request) {
	var req BuyCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == 0 || req.Amount == nil {
		api.Error(w, http.StatusBadRequest, "user_id and amount are required")
		return
	}
	var idemKey *uuid.UUID
	if req.IdempotencyKey != "" {
		key, err := uuid.Parse(req.IdempotencyKey)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "idempotency_key must be a UUID")
			return
		}
		idemKey = &key
	}
	acc, entry, err := h.svc.AddCredit(r.Context(), req.UserID, *req.Amount, models.TxDescriptionTopUp, idemKey)
	if err != nil {
		h.writeError(w, "buy credit", err)
		return
	}
	api.JSON(w, http.StatusOK, TransactionResponse{Account: acc, Transaction: entry})
}

// CreateTransaction handles POST /api/transactions/create. Unlike the
// top-up endpoint it accepts a free-form description and is typically used
// with a negative amount (a charge). It goes through the same atomic
// apply-and-append path, so the balance and the log can never diverge.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == 0 || req.Amount == nil {
		api.Error(w, http.StatusBadRequest, "user_id and amount are required")
		return
	}
	acc, entry, err := h.svc.AddCredit(r.Context(), req.UserID, *req.Amount, req.Description, nil)
	if err != nil {
		h.writeError(w, "create transaction", err)
		return
	}
	api.JSON(w, http.StatusCreated, TransactionResponse{Account: acc, Transaction: entry})
}

// ListTransactions handles GET /api/transactions/user/{userId}.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	entries, err := h.svc.ListTransactions(r.Context(), userID)
	if err != nil {
		h.writeError(w, "list transactions", err)
		return
	}
	if entries == nil {
		entries = []*models.TransactionEntry{}
	}
	api.JSON(w, http.StatusOK, TransactionListResponse{Transactions: entries})
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		api.Error(w, http.StatusNotFound, "account not found")
	case errors.Is(err, ErrInsufficientFunds):
		api.Error(w, http.StatusBadRequest, "insufficient funds")
	case errors.Is(err, ErrNegativeAmount):
		api.Error(w, http.StatusBadRequest, "negative amounts are not permitted")
	case errors.Is(err, ErrConflict):
		api.Error(w, http.StatusConflict, "ledger busy, retry the request")
	default:
		h.log.Error(op+" failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "internal error")
	}
}
