package rag

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hyperjump/ragpipe/internal/backend"
	"github.com/hyperjump/ragpipe/internal/models"
	"go.uber.org/zap"
)

// NoContextMessage is logged when retrieval finds nothing and the query is
// sent to the chat backend unaugmented.
const NoContextMessage = "No relevant content found in the document. Proceeding with general knowledge."

// ContextBackend is the extraction, embedding and keyword query capability
// group of a remote service. *backend.Client implements it.
type ContextBackend interface {
	ExtractPDF(ctx context.Context, path string) (string, error)
	GenerateEmbedding(ctx context.Context, content string) ([]float32, error)
	Query(ctx context.Context, query string) (string, error)
}

var _ ContextBackend = (*backend.Client)(nil)

// Pipeline runs ingestion and queries against one Session, one operation at a time.
type Pipeline struct {
	flow         sync.Mutex
	session      *Session
	ingestor     *Ingestor
	retriever    *Retriever
	orchestrator *Orchestrator
	remote       ContextBackend
	logger       *zap.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithRemote sets the context backend used by RemoteQuery.
func WithRemote(b ContextBackend) PipelineOption {
	return func(p *Pipeline) { p.remote = b }
}

// WithLogger sets the pipeline logger.
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline assembles a pipeline. ingestor and retriever must share session.
func NewPipeline(session *Session, ingestor *Ingestor, retriever *Retriever, orchestrator *Orchestrator, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		session:      session,
		ingestor:     ingestor,
		retriever:    retriever,
		orchestrator: orchestrator,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Session returns the pipeline's session.
func (p *Pipeline) Session() *Session {
	return p.session
}

// Retriever returns the pipeline's retriever.
func (p *Pipeline) Retriever() *Retriever {
	return p.retriever
}

// Orchestrator returns the pipeline's orchestrator.
func (p *Pipeline) Orchestrator() *Orchestrator {
	return p.orchestrator
}

// AddDocument stores raw content under id.
func (p *Pipeline) AddDocument(ctx context.Context, id, content string) (models.Document, error) {
	p.flow.Lock()
	defer p.flow.Unlock()
	return p.ingestor.AddDocument(ctx, id, content)
}

// AddPDFDocument extracts, normalizes, persists and stores a PDF.
func (p *Pipeline) AddPDFDocument(ctx context.Context, in models.PDFInput) (models.Document, error) {
	p.flow.Lock()
	defer p.flow.Unlock()
	return p.ingestor.AddPDFDocument(ctx, in)
}

// Retrieve returns the context window for query across the session.
func (p *Pipeline) Retrieve(ctx context.Context, query string) (string, error) {
	p.flow.Lock()
	defer p.flow.Unlock()
	return p.retriever.Retrieve(ctx, query)
}

// RetrieveDocument returns the context window for query within one document.
func (p *Pipeline) RetrieveDocument(ctx context.Context, id, query string) (string, error) {
	p.flow.Lock()
	defer p.flow.Unlock()
	return p.retriever.RetrieveDocument(ctx, id, query)
}

// Ask retrieves context for req and has the chat backend answer it. A
// retrieval error aborts; an empty window sends the query unaugmented.
func (p *Pipeline) Ask(ctx context.Context, req *models.AskRequest) (*models.AskResponse, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p.flow.Lock()
	defer p.flow.Unlock()

	var (
		window string
		err    error
	)
	if req.DocumentID != "" {
		window, err = p.retriever.RetrieveDocument(ctx, req.DocumentID, req.Query)
	} else {
		window, err = p.retriever.Retrieve(ctx, req.Query)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	if window == "" {
		p.logger.Info(NoContextMessage, zap.String("query", req.Query))
	}

	answer, err := p.orchestrator.Answer(ctx, req.Query, window)
	if err != nil {
		return nil, err
	}
	return &models.AskResponse{
		Query:     req.Query,
		Context:   window,
		Answer:    answer,
		QueryTime: time.Since(start).Milliseconds(),
	}, nil
}

// RemoteQuery forwards query to the context backend's /query endpoint and
// returns its result. An empty result is logged, not an error.
func (p *Pipeline) RemoteQuery(ctx context.Context, query string) (string, error) {
	if p.remote == nil {
		return "", fmt.Errorf("remote query: context backend %w", ErrNotConfigured)
	}
	result, err := p.remote.Query(ctx, query)
	if err != nil {
		return "", fmt.Errorf("remote query: %w", err)
	}
	if result == "" {
		p.logger.Info(NoContextMessage, zap.String("query", query))
	}
	return result, nil
}
