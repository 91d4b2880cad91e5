package http

import (
	"net/http"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/service"
)

// AuthHandler keeps tokens server side; responses carry the profile only.
type AuthHandler struct {
	base
	auth *service.AuthService
}

func NewAuthHandler(b base, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{base: b, auth: auth}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponseDTO struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req LoginRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	resp, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusOK, SessionResponseDTO{Authenticated: true, User: resp.User})
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req domain.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Username == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "username, email and password are required")
		return
	}

	resp, err := h.auth.Register(ctx, req)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, SessionResponseDTO{Authenticated: resp.Access != "", User: resp.User})
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/auth/user
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	user, err := h.auth.CurrentUser(ctx)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusOK, user)
}

// PATCH /api/v1/auth/user
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req domain.ProfileUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.auth.UpdateProfile(ctx, req)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusOK, user)
}

// POST /api/v1/auth/admin/login
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req LoginRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	resp, err := h.auth.AdminLogin(ctx, req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmAdmin, err)
		return
	}
	h.respondJSON(w, http.StatusOK, SessionResponseDTO{Authenticated: true, User: resp.User})
}

// POST /api/v1/auth/admin/logout
func (h *AuthHandler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.AdminLogout(r.Context()); err != nil {
		h.handleServiceError(w, r, gateway.RealmAdmin, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
