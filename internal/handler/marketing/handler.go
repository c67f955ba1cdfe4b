package marketing

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightsmile-dental/concierge/backend/internal/model/lead"
	aiService "github.com/brightsmile-dental/concierge/backend/internal/service/ai"
	"github.com/brightsmile-dental/concierge/backend/pkg/utils"
)

// Handler exposes the one-shot marketing helpers: copy generation and lead
// analysis. Both swallow provider failures and answer with fixed fallback
// text, so these endpoints never surface a provider error.
type Handler struct {
	aiSvc *aiService.Service
}

// New creates the marketing handler.
func New(aiSvc *aiService.Service) *Handler {
	return &Handler{aiSvc: aiSvc}
}

// RegisterRoutes mounts the marketing routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/marketing/content", h.handleGenerateContent)
	r.Post("/marketing/leads/analyze", h.handleAnalyzeLeads)
}

func (h *Handler) handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Topic string `json:"topic"`
		Kind  string `json:"kind"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Topic == "" {
		utils.RespondError(w, http.StatusBadRequest, "topic is required")
		return
	}

	content, err := h.aiSvc.GenerateMarketingContent(r.Context(), payload.Topic, aiService.ContentKind(payload.Kind))
	if err != nil {
		if errors.Is(err, aiService.ErrUnknownContentKind) {
			utils.RespondError(w, http.StatusBadRequest, "kind must be \"blog\" or \"service_desc\"")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"content": content})
}

func (h *Handler) handleAnalyzeLeads(w http.ResponseWriter, r *http.Request) {
	var leads []lead.Lead

	if err := json.NewDecoder(r.Body).Decode(&leads); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(leads) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "at least one lead is required")
		return
	}

	insights := h.aiSvc.AnalyzeLeads(r.Context(), leads)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"insights": insights})
}
