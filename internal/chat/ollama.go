package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Ollama talks to an Ollama server's /api/chat endpoint.
type Ollama struct {
	baseURL string
	opts    *options
}

var _ Backend = (*Ollama)(nil)

type ollamaChatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type ollamaChatResponse struct {
	Model   string   `json:"model"`
	Message *message `json:"message"`
	Done    bool     `json:"done"`
}

// NewOllama returns an Ollama provider rooted at baseURL.
func NewOllama(baseURL string, opts ...Option) *Ollama {
	return &Ollama{baseURL: strings.TrimRight(baseURL, "/"), opts: buildOptions(opts)}
}

// Complete sends message as the only user turn, with streaming disabled.
func (o *Ollama) Complete(ctx context.Context, model, msg string) (string, error) {
	payload := ollamaChatRequest{
		Model:    model,
		Messages: []message{{Role: "user", Content: msg}},
	}
	o.opts.logger.Debug("ollama chat request", zap.String("model", model), zap.Int("message_len", len(msg)))
	data, err := postJSON(ctx, o.opts.httpClient, o.baseURL+"/api/chat", "", payload)
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	var resp ollamaChatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("ollama chat: unmarshal response: %w", err)
	}
	if resp.Message == nil {
		return "", fmt.Errorf("ollama chat: response has no message")
	}
	return resp.Message.Content, nil
}
