package openai

import (
	"encoding/json"
	"fmt"
)

// Model is the metadata returned by GET /models/{id}.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// ChatMessage is a single message in a chat completion exchange.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the subset of the chat completions API this
// service uses.
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

// ChatCompletionChoice is one generated alternative.
type ChatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// ChatCompletionResponse is the non-streaming chat completion reply.
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
}

// APIError is a structured error returned by the OpenAI API.
type APIError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai: %s (status %d, type %s)", e.Message, e.StatusCode, e.Type)
}

type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// parseAPIError decodes an error response body, falling back to the raw
// body when it is not the documented envelope.
func parseAPIError(statusCode int, body []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		env.Error.StatusCode = statusCode
		return env.Error
	}
	return fmt.Errorf("openai: API error (status %d): %s", statusCode, body)
}
