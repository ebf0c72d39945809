package rag

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/hyperjump/ragpipe/internal/config"
	"github.com/hyperjump/ragpipe/internal/retrieval"
	"github.com/hyperjump/ragpipe/internal/store"
	"go.uber.org/zap"
)

// Retriever finds a keyword context window in the session's content.
type Retriever struct {
	session *Session
	engine  *retrieval.Engine
	source  string
	logger  *zap.Logger
}

// NewRetriever returns a retriever reading from source, one of
// config.SourceMemory or config.SourceProcessedFile. Unknown sources fall
// back to memory.
func NewRetriever(session *Session, engine *retrieval.Engine, source string, logger *zap.Logger) *Retriever {
	if engine == nil {
		engine = retrieval.NewEngine(retrieval.DefaultRadius)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if source != config.SourceProcessedFile {
		source = config.SourceMemory
	}
	return &Retriever{session: session, engine: engine, source: source, logger: logger}
}

// Source returns the configured retrieval source.
func (r *Retriever) Source() string {
	return r.source
}

// Retrieve returns the window around the first matching query keyword, or ""
// when nothing matches. It fails with ErrMissingContext if nothing has been
// ingested into the session.
func (r *Retriever) Retrieve(_ context.Context, query string) (string, error) {
	if r.session.Empty() {
		return "", ErrMissingContext
	}
	if r.source == config.SourceProcessedFile {
		return r.fromProcessedFile(query)
	}
	for _, doc := range r.session.Documents() {
		if window := r.engine.Retrieve(doc.Content, query); window != "" {
			r.logger.Debug("context found", zap.String("id", doc.ID), zap.Int("chars", utf8.RuneCountInString(window)))
			return window, nil
		}
	}
	return "", nil
}

// RetrieveDocument restricts retrieval to the document with id.
func (r *Retriever) RetrieveDocument(_ context.Context, id, query string) (string, error) {
	if r.session.Empty() {
		return "", ErrMissingContext
	}
	doc, ok := r.session.Document(id)
	if !ok {
		return "", fmt.Errorf("retrieve from %s: %w", id, ErrDocumentNotFound)
	}
	return r.engine.Retrieve(doc.Content, query), nil
}

func (r *Retriever) fromProcessedFile(query string) (string, error) {
	path, err := r.session.ProcessedPath()
	if err != nil {
		return "", err
	}
	content, err := store.ReadProcessedText(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	return r.engine.Retrieve(content, query), nil
}
