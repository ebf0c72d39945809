package rag

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/hyperjump/ragpipe/internal/embedding"
	"github.com/hyperjump/ragpipe/internal/extract"
	"github.com/hyperjump/ragpipe/internal/models"
	"github.com/hyperjump/ragpipe/internal/normalize"
	"github.com/hyperjump/ragpipe/internal/store"
	"go.uber.org/zap"
)

// Ingestor adds raw text and extracted PDF text to a Session.
type Ingestor struct {
	session   *Session
	extractor extract.Extractor
	embedder  embedding.Embedder // nil disables embedding
	logger    *zap.Logger
	now       func() time.Time
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithEmbedder enables embedding generation for every ingested document.
func WithEmbedder(e embedding.Embedder) IngestorOption {
	return func(i *Ingestor) { i.embedder = e }
}

// WithIngestLogger sets the logger for ingestion events.
func WithIngestLogger(l *zap.Logger) IngestorOption {
	return func(i *Ingestor) { i.logger = l }
}

// NewIngestor returns an ingestor writing into session. extractor may be nil
// when only raw text is added.
func NewIngestor(session *Session, extractor extract.Extractor, opts ...IngestorOption) *Ingestor {
	i := &Ingestor{
		session:   session,
		extractor: extractor,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// AddDocument stores content under id, replacing any earlier document with
// the same id. When an embedder is configured a failed embedding aborts the add.
func (i *Ingestor) AddDocument(ctx context.Context, id, content string) (models.Document, error) {
	doc := models.Document{ID: id, Content: content}
	if err := i.embed(ctx, &doc); err != nil {
		return models.Document{}, fmt.Errorf("add document %s: %w", id, err)
	}
	doc.UpdatedAt = i.now()
	i.session.commit(doc, "")
	i.logger.Debug("document added", zap.String("id", id), zap.Int("chars", utf8.RuneCountInString(content)))
	return doc, nil
}

// AddPDFDocument extracts and normalizes the text of the PDF at in.PDFPath,
// writes it to in.OutputPath when set, and stores it under in.ID (or the PDF
// path). Empty extracted text is logged and stored as an empty document.
func (i *Ingestor) AddPDFDocument(ctx context.Context, in models.PDFInput) (models.Document, error) {
	if i.extractor == nil {
		return models.Document{}, fmt.Errorf("ingest %s: extractor %w", in.PDFPath, ErrNotConfigured)
	}
	raw, err := i.extractor.Extract(ctx, in.PDFPath)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to extract text from PDF %s: %w", in.PDFPath, err)
	}
	text := normalize.Text(raw)
	if text == "" {
		i.logger.Warn("extracted content is empty", zap.String("pdf", in.PDFPath))
	} else {
		i.logger.Info("extracted text from PDF",
			zap.String("pdf", in.PDFPath),
			zap.Int("chars", utf8.RuneCountInString(text)))
	}

	id := in.ID
	if id == "" {
		id = in.PDFPath
	}
	doc := models.Document{ID: id, Content: text, Source: in.PDFPath}
	// Nothing is written until every fallible step has succeeded.
	if err := i.embed(ctx, &doc); err != nil {
		return models.Document{}, fmt.Errorf("add document %s: %w", id, err)
	}

	if in.OutputPath != "" {
		if err := store.WriteProcessedText(in.OutputPath, text); err != nil {
			return models.Document{}, fmt.Errorf("%w: %w", ErrIO, err)
		}
		i.logger.Info("processed text saved", zap.String("path", in.OutputPath))
	}
	doc.UpdatedAt = i.now()
	i.session.commit(doc, in.OutputPath)
	return doc, nil
}

func (i *Ingestor) embed(ctx context.Context, doc *models.Document) error {
	if i.embedder == nil {
		return nil
	}
	emb, err := i.embedder.Embed(ctx, doc.Content)
	if err != nil {
		return err
	}
	doc.Embedding = emb
	i.logger.Debug("embedding generated", zap.String("id", doc.ID), zap.Int("dims", len(emb)))
	return nil
}
