package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/brightsmile-dental/concierge/backend/internal/model/chat"
	aiService "github.com/brightsmile-dental/concierge/backend/internal/service/ai"
	chatService "github.com/brightsmile-dental/concierge/backend/internal/service/chat"
	leadService "github.com/brightsmile-dental/concierge/backend/internal/service/lead"
	"github.com/brightsmile-dental/concierge/backend/pkg/utils"
)

// Apology is appended as its own bot message whenever session use or
// streaming fails. The partial placeholder, if any, is left as-is.
const Apology = "I'm sorry, I'm having a little trouble connecting right now. Please try again in a moment, or call our front desk directly."

// Handler drives one chat send end to end over Server-Sent Events.
type Handler struct {
	aiSvc   *aiService.Service
	chatSvc *chatService.Service
	leadSvc *leadService.Service
}

// New creates the stream handler.
func New(aiSvc *aiService.Service, chatSvc *chatService.Service, leadSvc *leadService.Service) *Handler {
	return &Handler{
		aiSvc:   aiSvc,
		chatSvc: chatSvc,
		leadSvc: leadSvc,
	}
}

// StreamResponse is one SSE frame.
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleStreamRequest runs the send pipeline: gate the send, stream
// fragments into the placeholder message, then either finish with lead
// capture or append the apology. The in-flight flag is always cleared.
//
// Gate refusals (empty text, unknown session, send in flight) are returned
// before any SSE output so the router can answer with a plain HTTP status;
// the message list is untouched in those cases.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	// History for the provider: the turns before this send.
	history, err := h.chatSvc.Transcript(ctx, sessionID)
	if err != nil {
		return err
	}

	userMsg, placeholder, err := h.chatSvc.BeginSend(ctx, sessionID, userMessage)
	if err != nil {
		return err
	}
	defer h.chatSvc.FinishSend(ctx, sessionID)

	utils.SetupSSEHeaders(w)

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "start",
		SessionID: sessionID,
		MessageID: placeholder.ID,
	})

	finalText, err := h.streamReply(ctx, w, flusher, sessionID, placeholder.ID, history, userMsg.Text)
	if err != nil {
		h.appendApology(ctx, sessionID)
		h.sendSSE(w, flusher, StreamResponse{
			Event: "error",
			Error: fmt.Sprintf("reply generation failed: %v", err),
		})
		return err
	}

	if h.leadSvc != nil {
		h.leadSvc.CaptureFromChat(ctx, userMsg.Text)
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		MessageID: placeholder.ID,
		Content:   finalText,
	})
	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Debug().Str("session_id", sessionID).Int("length", len(finalText)).Msg("completed reply stream")
	return nil
}

// streamReply accumulates provider fragments into the placeholder message,
// emitting a delta frame per fragment so the widget renders progressively.
// Returns the concatenation of all fragments in arrival order.
func (h *Handler) streamReply(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sessionID, placeholderID string, history []chat.Message, userMessage string) (string, error) {
	if !h.aiSvc.StreamingEnabled() {
		response, err := h.aiSvc.Respond(ctx, history, userMessage)
		if err != nil {
			return "", err
		}
		if err := h.chatSvc.UpdatePlaceholder(ctx, sessionID, placeholderID, response.Content); err != nil {
			log.Warn().Err(err).Msg("failed to update placeholder")
		}
		return response.Content, nil
	}

	stream, err := h.aiSvc.StreamReply(ctx, history, userMessage)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var accumulated strings.Builder

	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if chunk == nil || chunk.Content == "" {
			// Empty fragments neither accumulate nor trigger a render.
			continue
		}

		accumulated.WriteString(chunk.Content)
		if err := h.chatSvc.UpdatePlaceholder(ctx, sessionID, placeholderID, accumulated.String()); err != nil {
			log.Warn().Err(err).Msg("failed to update placeholder")
		}

		h.sendSSE(w, flusher, StreamResponse{
			Event:     "delta",
			SessionID: sessionID,
			MessageID: placeholderID,
			Content:   chunk.Content,
		})
	}

	return accumulated.String(), nil
}

// appendApology adds the fixed fallback bot message. The partial placeholder
// is deliberately not rolled back.
func (h *Handler) appendApology(ctx context.Context, sessionID string) {
	_, err := h.chatSvc.AppendMessage(ctx, chat.Message{
		SessionID: sessionID,
		Sender:    chat.SenderBot,
		Text:      Apology,
	})
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to append apology message")
	}
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}
