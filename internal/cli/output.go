// Package cli formats pipeline results for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/ragpipe/internal/models"
	"github.com/hyperjump/ragpipe/internal/rag"
	"github.com/hyperjump/ragpipe/pkg/utils"
)

// OutputFormat is the format for answer output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text" or "json", case-insensitively.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// contextPreview is how much of the retrieved window text output shows.
const contextPreview = 200

// WriteAnswer writes resp to w in the given format.
func WriteAnswer(w io.Writer, resp *models.AskResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	if resp.Context == "" {
		fmt.Fprintln(w, rag.NoContextMessage)
	} else {
		fmt.Fprintf(w, "Context (%d chars): %s\n", len([]rune(resp.Context)), utils.Truncate(resp.Context, contextPreview))
	}
	fmt.Fprintf(w, "\nQuestion: %s\n\nAnswer:\n%s\n", resp.Query, strings.TrimSpace(resp.Answer))
	if resp.QueryTime > 0 {
		fmt.Fprintf(w, "\n(%dms)\n", resp.QueryTime)
	}
	return nil
}

// WriteRetrieve writes a retrieval result to w in the given format.
func WriteRetrieve(w io.Writer, resp *models.RetrieveResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	if !resp.Found {
		fmt.Fprintln(w, "No relevant content found.")
		return nil
	}
	fmt.Fprintln(w, resp.Context)
	return nil
}

// WriteEmbedding writes the dimensions and leading values of emb.
func WriteEmbedding(w io.Writer, emb []float32, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, map[string]interface{}{"dimensions": len(emb), "embedding": emb})
	}
	fmt.Fprintf(w, "Embedding generated with %d dimensions\n", len(emb))
	n := len(emb)
	if n > 5 {
		n = 5
	}
	if n > 0 {
		fmt.Fprintf(w, "First values: %v\n", emb[:n])
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
