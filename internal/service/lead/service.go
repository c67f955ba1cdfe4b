package lead

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/brightsmile-dental/concierge/backend/internal/analysis/intent"
	"github.com/brightsmile-dental/concierge/backend/internal/model/lead"
)

// ChatInterest is the interest label attached to leads captured from the
// chat widget.
const ChatInterest = "General Inquiry (Chat)"

// Classifier decides whether a user utterance carries booking intent.
type Classifier interface {
	Classify(text string) intent.Decision
}

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func(text string) intent.Decision

func (f ClassifierFunc) Classify(text string) intent.Decision { return f(text) }

// Notifier receives capture events. The production implementation forwards
// to the site's lead-capture callback; errors are logged and dropped, never
// surfaced to the visitor.
type Notifier interface {
	Notify(ctx context.Context, event lead.CaptureEvent) error
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(ctx context.Context, event lead.CaptureEvent) error

func (f NotifierFunc) Notify(ctx context.Context, event lead.CaptureEvent) error {
	return f(ctx, event)
}

// LogNotifier logs capture events. It is the default sink when no external
// callback is wired.
func LogNotifier() Notifier {
	return NotifierFunc(func(_ context.Context, event lead.CaptureEvent) error {
		log.Info().Str("interest", event.Interest).Msg("lead captured from chat")
		return nil
	})
}

// Service runs intent classification after a completed chat send and fires
// the capture callback at most once per send.
type Service struct {
	classifier Classifier
	notifier   Notifier
}

// NewService builds the capture service. A nil classifier falls back to the
// keyword analyzer; a nil notifier falls back to logging.
func NewService(classifier Classifier, notifier Notifier) *Service {
	if classifier == nil {
		classifier = ClassifierFunc(intent.Analyze)
	}
	if notifier == nil {
		notifier = LogNotifier()
	}
	return &Service{classifier: classifier, notifier: notifier}
}

// CaptureFromChat classifies the original user input of a successful send
// and, on booking intent, notifies the capture sink once. Returns whether a
// capture was fired.
func (s *Service) CaptureFromChat(ctx context.Context, userText string) bool {
	decision := s.classifier.Classify(userText)
	if decision.Intent != intent.Booking {
		return false
	}

	event := lead.CaptureEvent{Interest: ChatInterest}
	if err := s.notifier.Notify(ctx, event); err != nil {
		log.Warn().Err(err).Msg("lead capture notification failed")
	}
	return true
}
