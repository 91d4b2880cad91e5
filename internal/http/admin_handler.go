package http

import (
	"net/http"

	"github.com/THE-DEEPDAS/HTT/internal/domain"
	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/service"
)

type AdminHandler struct {
	base
	admin *service.AdminService
}

func NewAdminHandler(b base, admin *service.AdminService) *AdminHandler {
	return &AdminHandler{base: b, admin: admin}
}

// GET /api/v1/admin/analytics
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	a, err := h.admin.Analytics(ctx)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmAdmin, err)
		return
	}
	h.respondJSON(w, http.StatusOK, a)
}

// GET /api/v1/admin/chats?session_id=
func (h *AdminHandler) Chats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var (
		sessions []domain.ChatSession
		err      error
	)
	if id := r.URL.Query().Get("session_id"); id != "" {
		sessions, err = h.admin.ChatSession(ctx, id)
	} else {
		sessions, err = h.admin.Chats(ctx)
	}
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmAdmin, err)
		return
	}
	if sessions == nil {
		sessions = make([]domain.ChatSession, 0)
	}
	h.respondJSON(w, http.StatusOK, domain.ChatsResponse{Sessions: sessions})
}
