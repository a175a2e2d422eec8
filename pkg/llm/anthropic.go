package llm

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

const defaultAnthropicModel = "claude-haiku-4-5-20251001"

// AnthropicOption configures the Anthropic-backed client.
type AnthropicOption func(*anthropicClient)

// WithAnthropicModel overrides the default model.
func WithAnthropicModel(model string) AnthropicOption {
	return func(c *anthropicClient) {
		c.model = model
	}
}

// WithAnthropicBaseURL overrides the API base URL (for testing).
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(c *anthropicClient) {
		c.baseURL = url
	}
}

type anthropicClient struct {
	client  sdk.Client
	model   string
	baseURL string
}

// NewAnthropicClient creates a completion client backed by the official
// anthropic-sdk-go. Responses are normalized into the chat-completions
// choice shape so callers are backend-agnostic.
func NewAnthropicClient(apiKey string, opts ...AnthropicOption) Client {
	c := &anthropicClient{model: defaultAnthropicModel}
	for _, o := range opts {
		o(c)
	}

	sdkOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if c.baseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(c.baseURL))
	}
	c.client = sdk.NewClient(sdkOpts...)
	return c
}

func (c *anthropicClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}

	system := req.SystemPrompt
	if req.ResponseFormat == FormatJSON {
		// The Messages API has no response_format knob; instruct instead.
		if system != "" {
			system += "\n\n"
		}
		system += "Respond with a single valid JSON object and nothing else."
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "llm: anthropic create message")
	}

	var content string
	for _, block := range msg.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return &CompletionResponse{
		ID:    msg.ID,
		Model: string(msg.Model),
		Choices: []Choice{
			{Index: 0, Message: Message{Role: "assistant", Content: content}},
		},
		Usage: Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}
