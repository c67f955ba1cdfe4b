package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	chatHandler "github.com/brightsmile-dental/concierge/backend/internal/handler/chat"
	marketingHandler "github.com/brightsmile-dental/concierge/backend/internal/handler/marketing"
	streamHandler "github.com/brightsmile-dental/concierge/backend/internal/handler/stream"
	middlewarePkg "github.com/brightsmile-dental/concierge/backend/internal/middleware"
	aiService "github.com/brightsmile-dental/concierge/backend/internal/service/ai"
	chatService "github.com/brightsmile-dental/concierge/backend/internal/service/chat"
	leadService "github.com/brightsmile-dental/concierge/backend/internal/service/lead"
	"github.com/brightsmile-dental/concierge/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. aiSvc may be nil when the
// provider is not configured; AI-backed endpoints then answer 503.
func NewRouter(chatSvc *chatService.Service, aiSvc *aiService.Service, leadSvc *leadService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatH := chatHandler.New(chatSvc)

	var streamH *streamHandler.Handler
	var marketingH *marketingHandler.Handler
	if aiSvc != nil {
		streamH = streamHandler.New(aiSvc, chatSvc, leadSvc)
		marketingH = marketingHandler.New(aiSvc)
	}

	r.Route("/api", func(api chi.Router) {
		chatH.RegisterRoutes(api)

		if marketingH != nil {
			marketingH.RegisterRoutes(api)
		}

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage := r.URL.Query().Get("message")

			if streamH == nil {
				utils.RespondError(w, http.StatusServiceUnavailable, "ai streaming unavailable")
				return
			}

			err := streamH.HandleStreamRequest(r.Context(), w, sessionID, userMessage)
			if err == nil {
				return
			}

			// Gate refusals happen before any SSE bytes, so a plain
			// status is still possible. Later failures were already
			// reported on the stream itself.
			switch {
			case errors.Is(err, chatService.ErrEmptyMessage):
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
			case errors.Is(err, chatService.ErrSessionNotFound):
				utils.RespondError(w, http.StatusNotFound, "session not found")
			case errors.Is(err, chatService.ErrSendInFlight):
				utils.RespondError(w, http.StatusConflict, "a send is already in flight")
			default:
				log.Error().Err(err).Str("session_id", sessionID).Msg("stream request failed")
			}
		})
	})

	return r
}
