package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/ragpipe/internal/config"
	"github.com/hyperjump/ragpipe/internal/extract"
	"github.com/hyperjump/ragpipe/internal/fileid"
	"github.com/hyperjump/ragpipe/internal/models"
	"github.com/hyperjump/ragpipe/internal/rag"
	"github.com/hyperjump/ragpipe/internal/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoChat struct{}

func (echoChat) Complete(_ context.Context, _ string, message string) (string, error) {
	return message, nil
}

func TestIntegration_DroppedFileIsQueryable(t *testing.T) {
	inbox := t.TempDir()
	out := filepath.Join(t.TempDir(), "bin")

	session := rag.NewSession()
	pipeline := rag.NewPipeline(
		session,
		rag.NewIngestor(session, extract.NewLocal()),
		rag.NewRetriever(session, retrieval.NewEngine(0), config.SourceProcessedFile, nil),
		rag.NewOrchestrator(echoChat{}, "test", nil),
	)

	cfg := config.WatchConfig{Directories: []string{inbox}, Extensions: []string{".md"}, OutputDir: out}
	w := New(cfg, pipeline, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	src := filepath.Join(inbox, "notes.md")
	require.NoError(t, os.WriteFile(src, []byte("Michael   Harditya\n\nis a student."), 0600))

	require.Eventually(t, func() bool {
		doc, ok := session.Document(fileid.DocID(src))
		return ok && doc.Content == "Michael Harditya is a student."
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, 1, session.Len())
	doc, _ := session.Document(fileid.DocID(src))

	processed, err := os.ReadFile(filepath.Join(out, fileid.ProcessedFileName(src)))
	require.NoError(t, err)
	assert.Equal(t, doc.Content, string(processed))

	resp, err := pipeline.Ask(ctx, &models.AskRequest{Query: "who is michael"})
	require.NoError(t, err)
	assert.Equal(t, "Michael Harditya is a student.", resp.Context)
	assert.Equal(t, "Context: Michael Harditya is a student.\n\nQuestion: who is michael", resp.Answer)
}
