package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// OpenAI talks to an OpenAI-compatible /chat/completions endpoint.
type OpenAI struct {
	baseURL string
	apiKey  string
	opts    *options
}

var _ Backend = (*OpenAI)(nil)

type openAIRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// NewOpenAI returns a provider rooted at baseURL (e.g. https://api.openai.com/v1).
func NewOpenAI(baseURL, apiKey string, opts ...Option) *OpenAI {
	return &OpenAI{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, opts: buildOptions(opts)}
}

// Complete sends message as the only user turn and returns the first choice.
func (c *OpenAI) Complete(ctx context.Context, model, msg string) (string, error) {
	payload := openAIRequest{
		Model:    model,
		Messages: []message{{Role: "user", Content: msg}},
	}
	c.opts.logger.Debug("openai chat request", zap.String("model", model), zap.Int("message_len", len(msg)))
	data, err := postJSON(ctx, c.opts.httpClient, c.baseURL+"/chat/completions", c.apiKey, payload)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	var resp openAIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("openai chat: unmarshal response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
