package rag

import (
	"context"
	"unicode/utf8"

	"github.com/hyperjump/ragpipe/internal/chat"
	"go.uber.org/zap"
)

// BuildPrompt composes the single chat message for query. An empty window
// yields the raw query.
func BuildPrompt(query, window string) string {
	if window == "" {
		return query
	}
	return "Context: " + window + "\n\nQuestion: " + query
}

// Orchestrator sends a query, optionally augmented with context, to a chat backend.
type Orchestrator struct {
	chat   chat.Backend
	model  string
	logger *zap.Logger
}

// NewOrchestrator returns an orchestrator using model on backend.
func NewOrchestrator(backend chat.Backend, model string, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{chat: backend, model: model, logger: logger}
}

// Model returns the chat model name.
func (o *Orchestrator) Model() string {
	return o.model
}

// Answer makes one chat call and returns its text. Any failure is returned as
// a *ChatServiceError.
func (o *Orchestrator) Answer(ctx context.Context, query, window string) (string, error) {
	if o.chat == nil {
		return "", &ChatServiceError{Model: o.model, Err: ErrNotConfigured}
	}
	prompt := BuildPrompt(query, window)
	o.logger.Debug("sending chat request",
		zap.String("model", o.model),
		zap.Bool("augmented", window != ""),
		zap.Int("prompt_chars", utf8.RuneCountInString(prompt)))
	answer, err := o.chat.Complete(ctx, o.model, prompt)
	if err != nil {
		return "", &ChatServiceError{Model: o.model, Err: err}
	}
	return answer, nil
}
