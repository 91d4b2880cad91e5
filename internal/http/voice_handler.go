package http

import (
	"net/http"

	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/service"
)

// VoiceHandler is stateless: the UI carries session_id and current_step
// between turns.
type VoiceHandler struct {
	base
	voice *service.VoiceService
}

func NewVoiceHandler(b base, voice *service.VoiceService) *VoiceHandler {
	return &VoiceHandler{base: b, voice: voice}
}

type VoiceTurnDTO struct {
	SessionID    string   `json:"session_id"`
	Message      string   `json:"message"`
	NextStep     string   `json:"next_step"`
	ValidAnswers []string `json:"valid_answers,omitempty"`
	Completed    bool     `json:"completed"`
}

type VoiceProcessRequestDTO struct {
	SessionID   string `json:"session_id"`
	Text        string `json:"text"`
	CurrentStep string `json:"current_step"`
}

// POST /api/v1/voice/start
func (h *VoiceHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	session, greeting, err := h.voice.Start(ctx)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, VoiceTurnDTO{
		SessionID:    session.ID(),
		Message:      greeting,
		NextStep:     session.Step(),
		ValidAnswers: session.ValidAnswers(),
		Completed:    session.Done(),
	})
}

// POST /api/v1/voice/process
func (h *VoiceHandler) Process(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req VoiceProcessRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		h.respondError(w, http.StatusBadRequest, "missing_session_id", "session_id is required")
		return
	}

	session := h.voice.Resume(req.SessionID, req.CurrentStep)
	resp, err := h.voice.Process(ctx, session, req.Text)
	if err != nil {
		h.handleServiceError(w, r, gateway.RealmUser, err)
		return
	}
	h.respondJSON(w, http.StatusOK, VoiceTurnDTO{
		SessionID:    session.ID(),
		Message:      resp.Text,
		NextStep:     session.Step(),
		ValidAnswers: resp.ValidAnswers,
		Completed:    session.Done(),
	})
}
