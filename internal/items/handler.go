package items

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sharenet/backend/internal/api"
	"github.com/sharenet/backend/internal/models"
)

type UploadItemRequest struct {
	OwnerID        int64           `json:"owner_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	PricePerDay    decimal.Decimal `json:"price_per_day"`
	ImageURL       string          `json:"image_url"`
	IsAvailable    *bool           `json:"is_available"`
	AvailableUntil *time.Time      `json:"available_until"`
	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
}

type ItemResponse struct {
	Item *models.Item `json:"item"`
}

type ItemListResponse struct {
	Items []*models.Item `json:"items"`
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

// Upload handles POST /api/items/upload.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	var req UploadItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	item := &models.Item{
		OwnerID:        req.OwnerID,
		Name:           req.Name,
		Description:    req.Description,
		PricePerDay:    req.PricePerDay,
		ImageURL:       req.ImageURL,
		IsAvailable:    available,
		AvailableUntil: req.AvailableUntil,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
	}
	if err := h.svc.Upload(r.Context(), item); err != nil {
		switch {
		case errors.Is(err, ErrInvalidItem):
			api.Error(w, http.StatusBadRequest, "owner_id and name are required, price must not be negative")
		case errors.Is(err, ErrOwnerNotFound):
			api.Error(w, http.StatusNotFound, "owner account not found")
		default:
			h.log.Error("upload item failed", "error", err)
			api.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	api.JSON(w, http.StatusCreated, ItemResponse{Item: item})
}

// Get handles GET /api/items/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid item id")
		return
	}
	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			api.Error(w, http.StatusNotFound, "item not found")
			return
		}
		h.log.Error("get item failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	api.JSON(w, http.StatusOK, ItemResponse{Item: item})
}

// List handles GET /api/items.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, func() ([]*models.Item, error) { return h.svc.List(r.Context()) })
}

// ListAvailable handles GET /api/items/available.
func (h *Handler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, func() ([]*models.Item, error) { return h.svc.ListAvailable(r.Context()) })
}

func (h *Handler) writeList(w http.ResponseWriter, fetch func() ([]*models.Item, error)) {
	list, err := fetch()
	if err != nil {
		h.log.Error("list items failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []*models.Item{}
	}
	api.JSON(w, http.StatusOK, ItemListResponse{Items: list})
}
