package rag

import (
	"fmt"
	"time"

	"github.com/hyperjump/ragpipe/internal/backend"
	"github.com/hyperjump/ragpipe/internal/chat"
	"github.com/hyperjump/ragpipe/internal/config"
	"github.com/hyperjump/ragpipe/internal/embedding"
	"github.com/hyperjump/ragpipe/internal/extract"
	"github.com/hyperjump/ragpipe/internal/retrieval"
	"go.uber.org/zap"
)

// FromConfig builds a pipeline with a fresh Session from cfg: a backend
// client, the configured extractor, an optional cached remote embedder and
// the configured chat provider.
func FromConfig(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey,
		backend.WithTimeout(time.Duration(cfg.Backend.TimeoutSeconds)*time.Second),
		backend.WithLogger(logger))

	var extractor extract.Extractor
	switch cfg.Extract.Mode {
	case config.ExtractLocal, "":
		extractor = extract.NewLocal()
	case config.ExtractRemote:
		extractor = extract.NewRemote(client)
	default:
		return nil, fmt.Errorf("unknown extract mode %q", cfg.Extract.Mode)
	}

	ingestOpts := []IngestorOption{WithIngestLogger(logger)}
	if cfg.Embedding.Enabled {
		ttl := time.Duration(cfg.Embedding.CacheTTLMinutes) * time.Minute
		ingestOpts = append(ingestOpts, WithEmbedder(embedding.NewCached(embedding.NewRemote(client), ttl)))
	}

	chatBackend, err := chat.New(cfg.Chat, chat.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat backend: %w", err)
	}

	session := NewSession()
	return NewPipeline(
		session,
		NewIngestor(session, extractor, ingestOpts...),
		NewRetriever(session, retrieval.NewEngine(cfg.Retrieval.WindowRadius), cfg.Retrieval.Source, logger),
		NewOrchestrator(chatBackend, cfg.Chat.Model, logger),
		WithRemote(client),
		WithLogger(logger),
	), nil
}
