// Package llm provides the text-completion client used by the enrichment
// pipeline, with interchangeable OpenAI-compatible and Anthropic backends.
package llm

import (
	"context"
)

// Client performs a single text completion.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// ResponseFormat hints the backend at the expected output shape.
type ResponseFormat string

const (
	// FormatText requests free-form text.
	FormatText ResponseFormat = "text"
	// FormatJSON requests a JSON object. Backends that cannot enforce this
	// natively fall back to prompt instruction; callers must still parse
	// defensively.
	FormatJSON ResponseFormat = "json_object"
)

// CompletionRequest is a single completion call.
type CompletionRequest struct {
	Prompt         string
	SystemPrompt   string
	Temperature    *float64
	MaxTokens      int
	ResponseFormat ResponseFormat
}

// CompletionResponse mirrors the chat-completions choice shape both backends
// normalize into.
type CompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is a single completion choice.
type Choice struct {
	Index   int     `json:"index"`
	Message Message `json:"message"`
}

// Message is a single conversational message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Content returns the first choice's message content, or "" when the
// response carries no usable content. Missing content is never an error at
// this layer.
func (r *CompletionResponse) Content() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// Temp returns a pointer to t, for CompletionRequest.Temperature literals.
func Temp(t float64) *float64 {
	return &t
}
