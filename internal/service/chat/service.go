package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brightsmile-dental/concierge/backend/internal/model/chat"
)

var (
	ErrWidgetRequired  = errors.New("widget id is required")
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrEmptyMessage    = errors.New("message text is empty")
	ErrSendInFlight    = errors.New("a send is already in flight")
)

// Greeting seeds every new conversation.
const Greeting = "Hi there! I'm Sunny, the virtual assistant for Bright Smile Dental Studio. Ask me about our services, hours, or what to expect at your first visit."

// Service owns the in-memory conversation state for every widget: the
// ordered message list, the single-flight send gate, and the streaming
// placeholder updates.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	byWidget map[string]string
	messages map[string][]chat.Message
	sending  map[string]bool
}

// NewService bootstraps the in-memory conversation store.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]chat.Session),
		byWidget: make(map[string]string),
		messages: make(map[string][]chat.Message),
		sending:  make(map[string]bool),
	}
}

// EnsureSession returns the session bound to widgetID, creating it on first
// call. Repeated calls with the same widget ID reuse the existing session,
// so reopening the widget keeps the conversation. The created flag reports
// whether this call provisioned a new session.
func (s *Service) EnsureSession(_ context.Context, widgetID string) (chat.Session, bool, error) {
	widgetID = strings.TrimSpace(widgetID)
	if widgetID == "" {
		return chat.Session{}, false, ErrWidgetRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byWidget[widgetID]; ok {
		return s.sessions[id], false, nil
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		WidgetID:  widgetID,
		CreatedAt: time.Now().UTC(),
	}

	greeting := chat.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Sender:    chat.SenderBot,
		Text:      Greeting,
		CreatedAt: session.CreatedAt,
	}

	s.sessions[session.ID] = session
	s.byWidget[widgetID] = session.ID
	s.messages[session.ID] = append(make([]chat.Message, 0, 16), greeting)

	return session, true, nil
}

// BeginSend is the send gate. It appends the user message and an empty bot
// placeholder, and marks the session as sending. It refuses (without
// touching the message list) when the text is blank, the session is
// unknown, or a previous send has not finished yet.
func (s *Service) BeginSend(_ context.Context, sessionID, text string) (chat.Message, chat.Message, error) {
	if strings.TrimSpace(text) == "" {
		return chat.Message{}, chat.Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return chat.Message{}, chat.Message{}, ErrSessionNotFound
	}
	if s.sending[sessionID] {
		return chat.Message{}, chat.Message{}, ErrSendInFlight
	}

	now := time.Now().UTC()
	userMsg := chat.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Sender:    chat.SenderUser,
		Text:      text,
		CreatedAt: now,
	}
	placeholder := chat.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Sender:    chat.SenderBot,
		Text:      "",
		CreatedAt: now,
	}

	s.messages[sessionID] = append(s.messages[sessionID], userMsg, placeholder)
	s.sending[sessionID] = true

	return userMsg, placeholder, nil
}

// UpdatePlaceholder overwrites the text of a streaming bot message with the
// running accumulation. Lookup is by message ID.
func (s *Service) UpdatePlaceholder(_ context.Context, sessionID, messageID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, ok := s.messages[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].Text = text
			return nil
		}
	}
	return ErrMessageNotFound
}

// FinishSend clears the in-flight flag. It is called unconditionally after
// a stream completes or fails.
func (s *Service) FinishSend(_ context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.sending, sessionID)
	s.mu.Unlock()
}

// Sending reports whether a send is currently outstanding for the session.
func (s *Service) Sending(_ context.Context, sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sending[sessionID]
}

// AppendMessage appends a message to the conversation, assigning it an ID
// and timestamp. Used for the apology message on a failed stream.
func (s *Service) AppendMessage(_ context.Context, message chat.Message) (chat.Message, error) {
	if message.SessionID == "" {
		return chat.Message{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[message.SessionID]; !ok {
		return chat.Message{}, ErrSessionNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	s.messages[message.SessionID] = append(s.messages[message.SessionID], message)
	return message, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Transcript returns a copy of the ordered message list for the session.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}
