package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/ragpipe/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllama_Complete(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"hi there"},"done":true}`))
	}))
	defer srv.Close()

	out, err := NewOllama(srv.URL+"/").Complete(context.Background(), "llama3.2", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", out)
	assert.Equal(t, "llama3.2", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, message{Role: "user", Content: "hello"}, got.Messages[0])
}

func TestOllama_Complete_errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"model not found"}`},
		{"invalid json", http.StatusOK, `nope`},
		{"missing message", http.StatusOK, `{"done":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()
			_, err := NewOllama(srv.URL).Complete(context.Background(), "m", "q")
			assert.Error(t, err)
		})
	}
}

func TestOpenAI_Complete(t *testing.T) {
	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"answer"}}]}`))
	}))
	defer srv.Close()

	out, err := NewOpenAI(srv.URL, "sk-test").Complete(context.Background(), "gpt-4o-mini", "Context: c\n\nQuestion: q")
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "Context: c\n\nQuestion: q", got.Messages[0].Content)
}

func TestOpenAI_Complete_noChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()
	_, err := NewOpenAI(srv.URL, "").Complete(context.Background(), "m", "q")
	assert.ErrorContains(t, err, "no choices")
}

func TestComplete_unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()
	_, err := NewOllama(url).Complete(context.Background(), "m", "q")
	assert.ErrorContains(t, err, "send request")
}

func TestNew(t *testing.T) {
	b, err := New(config.ChatConfig{Provider: config.ProviderOllama, BaseURL: "http://x"})
	require.NoError(t, err)
	assert.IsType(t, &Ollama{}, b)

	b, err = New(config.ChatConfig{Provider: config.ProviderOpenAI, BaseURL: "http://x", TimeoutSeconds: 5})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, b)

	_, err = New(config.ChatConfig{Provider: "gemini"})
	assert.Error(t, err)
}
