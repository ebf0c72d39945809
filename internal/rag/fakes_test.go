package rag

import (
	"context"
	"errors"
	"sync"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

type recordingChat struct {
	mu       sync.Mutex
	answer   string
	err      error
	model    string
	messages []string
}

func (r *recordingChat) Complete(_ context.Context, model, message string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.model = model
	r.messages = append(r.messages, message)
	return r.answer, r.err
}

func (r *recordingChat) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}

type failingEmbedder struct{}

var errEmbed = errors.New("embedding backend down")

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errEmbed
}
