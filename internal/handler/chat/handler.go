package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatService "github.com/brightsmile-dental/concierge/backend/internal/service/chat"
	"github.com/brightsmile-dental/concierge/backend/pkg/utils"
)

// Handler exposes session and transcript endpoints for the chat widget.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates the chat handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleEnsureSession)
	r.Get("/session/{sessionID}/transcript", h.handleTranscript)
}

// handleEnsureSession provisions the widget's session on first call and
// returns the existing one afterwards. The widget calls this when it is
// first opened; reopening reuses the conversation.
func (h *Handler) handleEnsureSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		WidgetID string `json:"widgetId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, created, err := h.chatSvc.EnsureSession(r.Context(), payload.WidgetID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	utils.RespondJSON(w, status, session)
}

// handleTranscript returns the ordered message list for a session.
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatSvc.Transcript(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, chatService.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}
