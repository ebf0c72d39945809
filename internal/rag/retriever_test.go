package rag

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hyperjump/ragpipe/internal/config"
	"github.com/hyperjump/ragpipe/internal/models"
	"github.com/hyperjump/ragpipe/internal/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRetriever(s *Session, source string) *Retriever {
	return NewRetriever(s, retrieval.NewEngine(retrieval.DefaultRadius), source, nil)
}

func TestRetriever_missingContext(t *testing.T) {
	for _, source := range []string{config.SourceMemory, config.SourceProcessedFile} {
		t.Run(source, func(t *testing.T) {
			r := newRetriever(NewSession(), source)
			_, err := r.Retrieve(context.Background(), "anything")
			assert.ErrorIs(t, err, ErrMissingContext)
			_, err = r.RetrieveDocument(context.Background(), "1", "anything")
			assert.ErrorIs(t, err, ErrMissingContext)
		})
	}
}

func TestRetriever_fullContentWhenShort(t *testing.T) {
	s := NewSession()
	_, err := NewIngestor(s, nil).AddDocument(context.Background(), "1", "Michael Harditya is a student.")
	require.NoError(t, err)

	got, err := newRetriever(s, config.SourceMemory).Retrieve(context.Background(), "Michael")
	require.NoError(t, err)
	assert.Equal(t, "Michael Harditya is a student.", got)
}

func TestRetriever_firstQueryKeywordWins(t *testing.T) {
	s := NewSession()
	content := strings.Repeat("x", 400) + "banana" + strings.Repeat("y", 400)
	_, err := NewIngestor(s, nil).AddDocument(context.Background(), "fruit", content)
	require.NoError(t, err)

	got, err := newRetriever(s, config.SourceMemory).Retrieve(context.Background(), "apple banana")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 300)+"banana"+strings.Repeat("y", 300), got)
}

func TestRetriever_noMatchIsEmpty(t *testing.T) {
	s := NewSession()
	_, err := NewIngestor(s, nil).AddDocument(context.Background(), "1", "nothing relevant")
	require.NoError(t, err)

	got, err := newRetriever(s, config.SourceMemory).Retrieve(context.Background(), "zebra")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetriever_documentsSearchedInIDOrder(t *testing.T) {
	s := NewSession()
	ing := NewIngestor(s, nil)
	_, _ = ing.AddDocument(context.Background(), "b", "second mentions rust")
	_, _ = ing.AddDocument(context.Background(), "a", "first mentions rust")

	got, err := newRetriever(s, config.SourceMemory).Retrieve(context.Background(), "rust")
	require.NoError(t, err)
	assert.Equal(t, "first mentions rust", got)
}

func TestRetriever_RetrieveDocument(t *testing.T) {
	s := NewSession()
	ing := NewIngestor(s, nil)
	_, _ = ing.AddDocument(context.Background(), "a", "alpha text")
	_, _ = ing.AddDocument(context.Background(), "b", "beta text")
	r := newRetriever(s, config.SourceMemory)

	got, err := r.RetrieveDocument(context.Background(), "b", "text")
	require.NoError(t, err)
	assert.Equal(t, "beta text", got)

	_, err = r.RetrieveDocument(context.Background(), "c", "text")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestRetriever_processedFile(t *testing.T) {
	s := NewSession()
	out := filepath.Join(t.TempDir(), "processed.txt")
	ing := NewIngestor(s, &fakeExtractor{text: "The   report covers\nquarterly revenue."})
	_, err := ing.AddPDFDocument(context.Background(), models.PDFInput{PDFPath: "r.pdf", OutputPath: out})
	require.NoError(t, err)

	r := newRetriever(s, config.SourceProcessedFile)
	assert.Equal(t, config.SourceProcessedFile, r.Source())
	got, err := r.Retrieve(context.Background(), "REVENUE")
	require.NoError(t, err)
	assert.Equal(t, "The report covers quarterly revenue.", got)

	require.NoError(t, os.Remove(out))
	_, err = r.Retrieve(context.Background(), "revenue")
	assert.ErrorIs(t, err, ErrIO)
}

func TestRetriever_processedFileWithoutHandle(t *testing.T) {
	s := NewSession()
	_, _ = NewIngestor(s, nil).AddDocument(context.Background(), "1", "raw text only")

	_, err := newRetriever(s, config.SourceProcessedFile).Retrieve(context.Background(), "raw")
	assert.ErrorIs(t, err, ErrMissingContext)
}

func TestNewRetriever_unknownSourceFallsBackToMemory(t *testing.T) {
	r := NewRetriever(NewSession(), nil, "vector", nil)
	assert.Equal(t, config.SourceMemory, r.Source())
}

func TestRetriever_logsWindowLengthInCharacters(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewSession()
	_, err := NewIngestor(s, nil).AddDocument(context.Background(), "1", "Café crème brûlée à Paris")
	require.NoError(t, err)

	r := NewRetriever(s, retrieval.NewEngine(retrieval.DefaultRadius), config.SourceMemory, zap.New(core))
	window, err := r.Retrieve(context.Background(), "crème")
	require.NoError(t, err)
	require.NotEmpty(t, window)

	entries := logs.FilterMessage("context found").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(utf8.RuneCountInString(window)), entries[0].ContextMap()["chars"])
	assert.Less(t, utf8.RuneCountInString(window), len(window))
}
