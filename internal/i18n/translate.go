// Package i18n localizes user-facing strings. Translation is delegated to
// the OpenAI API itself, using the workspace's currently active key — the
// pending key a user just submitted is never used for this.
package i18n

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tessellate-io/slackwise/internal/openai"
)

// Translator localizes text for a given locale using an existing valid
// credential. Implementations return the input unchanged when no
// translation applies.
type Translator interface {
	Translate(ctx context.Context, apiKey, locale, text string) (string, error)
}

// OpenAITranslator implements Translator with a chat completion request.
type OpenAITranslator struct {
	baseURL string
	orgID   string
	model   string
	logger  *slog.Logger
	opts    []openai.ClientOption
}

var _ Translator = (*OpenAITranslator)(nil)

// NewOpenAITranslator creates a translator that sends requests to baseURL
// using the given model. Extra client options are mainly for tests.
func NewOpenAITranslator(baseURL, orgID, model string, logger *slog.Logger, opts ...openai.ClientOption) *OpenAITranslator {
	return &OpenAITranslator{
		baseURL: baseURL,
		orgID:   orgID,
		model:   model,
		logger:  logger,
		opts:    opts,
	}
}

// Translate localizes text into the language of locale. With no key, no
// locale, or an English locale it is a passthrough. On API failure the
// original text is returned alongside the error so callers can fall back
// to English.
func (t *OpenAITranslator) Translate(ctx context.Context, apiKey, locale, text string) (string, error) {
	if apiKey == "" || locale == "" || strings.HasPrefix(locale, "en") {
		return text, nil
	}

	opts := append([]openai.ClientOption{
		openai.WithBaseURL(t.baseURL),
		openai.WithOrganization(t.orgID),
	}, t.opts...)
	client := openai.NewClient(apiKey, opts...)

	resp, err := client.CreateChatCompletion(ctx, &openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatMessage{
			{
				Role: "system",
				Content: fmt.Sprintf(
					"Translate the following text into the language for locale %q. Reply with the translation only.",
					locale,
				),
			},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		t.logger.Debug("translation failed, falling back to original text",
			slog.String("locale", locale),
			slog.String("error", err.Error()),
		)
		return text, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return text, nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
