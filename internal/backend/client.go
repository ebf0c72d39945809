// Package backend is an HTTP client for the context backend that extracts PDF
// text, generates embeddings, and answers keyword queries.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Endpoint paths, relative to the configured base URL.
const (
	PathExtractPDF        = "/extract-pdf"
	PathGenerateEmbedding = "/generate-embedding"
	PathQuery             = "/query"
)

// Client talks to the context backend. It applies no retry and, unless
// WithTimeout is given, no timeout.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets a per-request timeout. Zero keeps requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client for baseURL. apiKey is sent as a bearer token on
// the embedding and query endpoints.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ExtractPDF asks the backend to extract the text of the PDF at path.
func (c *Client) ExtractPDF(ctx context.Context, path string) (string, error) {
	fields, status, err := c.post(ctx, PathExtractPDF, map[string]string{"pdf_path": path}, false)
	if err != nil {
		return "", err
	}
	return stringField(PathExtractPDF, status, fields, "text")
}

// GenerateEmbedding returns the embedding of content. Non-numeric array
// elements are dropped.
func (c *Client) GenerateEmbedding(ctx context.Context, content string) ([]float32, error) {
	fields, status, err := c.post(ctx, PathGenerateEmbedding, map[string]string{"content": content}, true)
	if err != nil {
		return nil, err
	}
	raw, ok := fields["embedding"]
	if !ok {
		return nil, &Error{Kind: ProtocolError, Endpoint: PathGenerateEmbedding, StatusCode: status,
			Err: fmt.Errorf("no 'embedding' field in response")}
	}
	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, &Error{Kind: ProtocolError, Endpoint: PathGenerateEmbedding, StatusCode: status,
			Err: fmt.Errorf("'embedding' field is not an array")}
	}
	embedding := make([]float32, 0, len(items))
	for _, item := range items {
		if f, ok := item.(float64); ok {
			embedding = append(embedding, float32(f))
		}
	}
	return embedding, nil
}

// Query sends a free-text query and returns the backend's result text.
func (c *Client) Query(ctx context.Context, query string) (string, error) {
	fields, status, err := c.post(ctx, PathQuery, map[string]string{"query": query}, true)
	if err != nil {
		return "", err
	}
	return stringField(PathQuery, status, fields, "result")
}

// post sends body as JSON and decodes the response into a JSON object.
// The status code is returned so protocol errors can report it; a non-2xx
// response that still carries the expected field is accepted.
func (c *Client) post(ctx context.Context, endpoint string, body interface{}, auth bool) (map[string]json.RawMessage, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, &Error{Kind: ProtocolError, Endpoint: endpoint, Err: fmt.Errorf("marshal request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, &Error{Kind: NetworkError, Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("backend request", zap.String("endpoint", endpoint))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &Error{Kind: NetworkError, Endpoint: endpoint, Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &Error{Kind: NetworkError, Endpoint: endpoint, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("read response: %w", err)}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, resp.StatusCode, &Error{Kind: ProtocolError, Endpoint: endpoint, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("parse JSON response: %w", err)}
	}
	if fields == nil {
		return nil, resp.StatusCode, &Error{Kind: ProtocolError, Endpoint: endpoint, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("response is not a JSON object")}
	}
	c.logger.Debug("backend response", zap.String("endpoint", endpoint), zap.Int("status", resp.StatusCode))
	return fields, resp.StatusCode, nil
}

func stringField(endpoint string, status int, fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", &Error{Kind: ProtocolError, Endpoint: endpoint, StatusCode: status,
			Err: fmt.Errorf("no '%s' field in response", name)}
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil || s == nil {
		return "", &Error{Kind: ProtocolError, Endpoint: endpoint, StatusCode: status,
			Err: fmt.Errorf("'%s' field is not a string", name)}
	}
	return *s, nil
}
