package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sharenet/backend/internal/api"
	"github.com/sharenet/backend/internal/middleware"
	"github.com/sharenet/backend/internal/models"
)

// Request/response structs (snake_case JSON).

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserResponse struct {
	User *models.Account `json:"user"`
}

type LoginResponse struct {
	Token string          `json:"token"`
	User  *models.Account `json:"user"`
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

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		api.Error(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	acc, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			api.Error(w, http.StatusConflict, "email already registered")
			return
		}
		h.log.Error("register failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}
	api.JSON(w, http.StatusCreated, UserResponse{User: acc})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		api.Error(w, http.StatusBadRequest, "missing email or password")
		return
	}
	token, acc, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			api.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.log.Error("login failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "login failed")
		return
	}
	api.JSON(w, http.StatusOK, LoginResponse{Token: token, User: acc})
}

// GetUser handles GET /api/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	acc, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error("get user failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	api.JSON(w, http.StatusOK, UserResponse{User: acc})
}

// Profile handles GET /api/user/profile for the authenticated account.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromCtx(r.Context())
	if !ok {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	acc, err := h.svc.GetUser(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error("profile failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	api.JSON(w, http.StatusOK, UserResponse{User: acc})
}

// UpdateProfile handles PUT /api/user/profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromCtx(r.Context())
	if !ok {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" || req.Email == "" {
		api.Error(w, http.StatusBadRequest, "name and email are required")
		return
	}
	acc, err := h.svc.UpdateProfile(r.Context(), accountID, req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			api.Error(w, http.StatusNotFound, "user not found")
		case errors.Is(err, ErrDuplicateEmail):
			api.Error(w, http.StatusConflict, "email already registered")
		default:
			h.log.Error("update profile failed", "error", err)
			api.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	api.JSON(w, http.StatusOK, UserResponse{User: acc})
}
