// Package chat sends single-message prompts to a chat-completion service.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/ragpipe/internal/config"
	"go.uber.org/zap"
)

// Backend completes a single user message with the named model. No state is
// kept between calls.
type Backend interface {
	Complete(ctx context.Context, model, message string) (string, error)
}

// Option configures a provider.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithTimeout sets a per-request timeout. Zero keeps requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) *options {
	o := &options{httpClient: &http.Client{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// New returns the provider named by cfg.Provider.
func New(cfg config.ChatConfig, opts ...Option) (Backend, error) {
	if cfg.TimeoutSeconds > 0 {
		opts = append([]Option{WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)}, opts...)
	}
	switch cfg.Provider {
	case config.ProviderOllama:
		return NewOllama(cfg.BaseURL, opts...), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.BaseURL, cfg.APIKey, opts...), nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// postJSON sends payload and returns the body of a 200 response.
func postJSON(ctx context.Context, hc *http.Client, url, apiKey string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}
