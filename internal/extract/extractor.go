// Package extract obtains plain text from PDF sources, either locally or by
// delegating to a remote extraction endpoint.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/ragpipe/internal/backend"
)

// Extractor turns a source path into plain text. An empty result is not an error.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Local extracts text from files on the local filesystem.
type Local struct{}

var _ Extractor = (*Local)(nil)

// NewLocal returns a local extractor.
func NewLocal() *Local {
	return &Local{}
}

// Extract reads the file at path and returns its text content.
// PDF and Excel files are decoded; .txt, .md and .rst files are read as UTF-8.
// Other files are sniffed: PDF content is decoded whatever its name, text is
// read as UTF-8 and anything else is a parse error.
func (e *Local) Extract(_ context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", &ExtractionError{Kind: KindIO, Path: path, Err: err}
	}
	text, err := e.ExtractBytes(content, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return "", &ExtractionError{Kind: KindParse, Path: path, Err: err}
	}
	return text, nil
}

var pdfMagic = []byte("%PDF-")

var textExtensions = map[string]bool{".txt": true, ".md": true, ".rst": true}

// ExtractBytes extracts text from content based on the given extension,
// falling back to the content itself when the extension is not recognized.
// ext should include the leading dot (e.g. ".pdf").
func (e *Local) ExtractBytes(content []byte, ext string) (string, error) {
	switch {
	case ext == ".pdf":
		return extractPDF(content)
	case ext == ".xlsx":
		return extractExcel(content)
	case textExtensions[ext]:
		return extractPlain(content), nil
	case bytes.HasPrefix(content, pdfMagic):
		return extractPDF(content)
	}
	if ct := http.DetectContentType(content); !strings.HasPrefix(ct, "text/") {
		return "", fmt.Errorf("unsupported content type %s", ct)
	}
	return extractPlain(content), nil
}

// PDFClient is the remote extraction capability of the context backend.
type PDFClient interface {
	ExtractPDF(ctx context.Context, path string) (string, error)
}

// Remote delegates extraction to a backend that reads the path itself.
type Remote struct {
	client PDFClient
}

var _ Extractor = (*Remote)(nil)

// NewRemote returns an extractor backed by client.
func NewRemote(client PDFClient) *Remote {
	return &Remote{client: client}
}

// Extract sends path to the remote endpoint and returns its "text" field.
func (e *Remote) Extract(ctx context.Context, path string) (string, error) {
	text, err := e.client.ExtractPDF(ctx, path)
	if err != nil {
		kind := KindProtocol
		if errors.Is(err, backend.ErrNetwork) {
			kind = KindNetwork
		}
		return "", &ExtractionError{Kind: kind, Path: path, Err: err}
	}
	return text, nil
}
