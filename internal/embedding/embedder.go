// Package embedding produces vector embeddings for ingested text.
package embedding

import (
	"context"
	"fmt"
)

// Embedder produces a vector embedding for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client is the embedding capability of the context backend.
type Client interface {
	GenerateEmbedding(ctx context.Context, content string) ([]float32, error)
}

// Remote embeds text through the context backend.
type Remote struct {
	client Client
}

var _ Embedder = (*Remote)(nil)

// NewRemote returns an embedder backed by client.
func NewRemote(client Client) *Remote {
	return &Remote{client: client}
}

// Embed calls the backend's /generate-embedding endpoint.
func (r *Remote) Embed(ctx context.Context, text string) ([]float32, error) {
	emb, err := r.client.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("generate embedding: %w", err)
	}
	return emb, nil
}
