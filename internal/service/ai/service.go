package ai

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/brightsmile-dental/concierge/backend/internal/config"
	"github.com/brightsmile-dental/concierge/backend/internal/model/chat"
)

// historyLimit caps how many prior turns are replayed to the provider.
const historyLimit = 10

// Service is the gateway to the generative-language provider. It owns the
// conversation prompt chain and the stateless one-shot helpers. The chat
// model is injected so tests can substitute a fake provider.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the conversation chain around the supplied chat model.
func NewService(ctx context.Context, chatModel model.ChatModel, cfg config.AIConfig) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "compile chat chain")
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// StreamingEnabled reports whether replies stream fragment by fragment.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// Respond generates a full reply in one call.
func (s *Service) Respond(ctx context.Context, history []chat.Message, userMessage string) (*schema.Message, error) {
	input := s.buildChainInput(history, userMessage)

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return nil, errors.Wrap(err, "run chat chain")
	}

	log.Debug().Int("length", len(response.Content)).Msg("generated reply")
	return response, nil
}

// StreamReply sends one user turn and returns a lazy, non-restartable
// fragment stream. Consuming the stream is the only way to observe the
// reply; fragments arrive in provider order and partial output already
// delivered before a failure is not retracted here.
func (s *Service) StreamReply(ctx context.Context, history []chat.Message, userMessage string) (*schema.StreamReader[*schema.Message], error) {
	if !s.StreamingEnabled() {
		return nil, errors.New("streaming disabled in configuration")
	}

	input := s.buildChainInput(history, userMessage)

	stream, err := s.chain.Stream(ctx, input)
	if err != nil {
		return nil, errors.Wrap(err, "stream chat chain output")
	}

	return stream, nil
}

func (s *Service) buildChainInput(history []chat.Message, userMessage string) map[string]any {
	return map[string]any{
		"system":  SystemPrompt(),
		"history": buildHistoryMessages(history),
		"query":   userMessage,
	}
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Sender {
		case chat.SenderUser:
			history = append(history, schema.UserMessage(msg.Text))
		case chat.SenderBot:
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		}
	}

	return history
}
