package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/brightsmile-dental/concierge/backend/internal/model/lead"
)

// ContentKind selects the marketing copy template.
type ContentKind string

const (
	ContentKindBlog        ContentKind = "blog"
	ContentKindServiceDesc ContentKind = "service_desc"
)

// ErrUnknownContentKind marks a caller mistake, not a provider failure.
var ErrUnknownContentKind = errors.New("unknown content kind")

// Fixed fallback strings for the one-shot helpers. Provider failures are
// swallowed and replaced by these, so callers never see an error; operators
// can still tell failures apart from the logs.
const (
	ContentFallback = "Unable to generate content at this time. Please try again later."
	LeadsFallback   = "Unable to analyze leads at this time. Please try again later."
)

// GenerateMarketingContent is a stateless one-shot call producing marketing
// copy about topic. An unknown kind is returned as an error; any provider
// failure yields ContentFallback with a nil error.
func (s *Service) GenerateMarketingContent(ctx context.Context, topic string, kind ContentKind) (string, error) {
	var promptText string
	switch kind {
	case ContentKindBlog:
		promptText = fmt.Sprintf(
			"Write an engaging, friendly blog post of roughly 300 words for a dental clinic's website about %q. "+
				"Use a warm, reassuring tone, avoid medical jargon, and close with an invitation to book a free consultation at %s.",
			topic, clinicName)
	case ContentKindServiceDesc:
		promptText = fmt.Sprintf(
			"Write a concise, welcoming description of two to three sentences for the %q service on a dental clinic's website. "+
				"Focus on patient comfort and the benefits of the treatment.",
			topic)
	default:
		return "", errors.Wrapf(ErrUnknownContentKind, "kind %q", kind)
	}

	response, err := s.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(promptText)})
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Str("kind", string(kind)).Msg("marketing content generation failed")
		return ContentFallback, nil
	}

	return response.Content, nil
}

// AnalyzeLeads is a stateless one-shot call summarizing a list of captured
// leads into three actionable marketing insights. Same swallow-on-error
// contract as GenerateMarketingContent.
func (s *Service) AnalyzeLeads(ctx context.Context, leads []lead.Lead) string {
	serialized, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("lead serialization failed")
		return LeadsFallback
	}

	var promptText strings.Builder
	promptText.WriteString("Here are recent leads captured from a dental clinic's website:\n\n")
	promptText.Write(serialized)
	promptText.WriteString("\n\nProvide three actionable marketing insights based on these leads, as plain text with one insight per line.")

	response, err := s.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(promptText.String())})
	if err != nil {
		log.Warn().Err(err).Int("leads", len(leads)).Msg("lead analysis failed")
		return LeadsFallback
	}

	return response.Content
}
