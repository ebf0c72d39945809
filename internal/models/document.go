// Package models defines core data structures for documents, queries, and answers.
package models

import "time"

// Document is a piece of ingested text keyed by a caller-supplied ID.
type Document struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	// Source is the file the content was extracted from, empty for raw text.
	Source string `json:"source,omitempty"`
	// Embedding is kept for inspection only; retrieval never reads it.
	Embedding []float32 `json:"embedding,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentInput is the input for adding raw text.
type DocumentInput struct {
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`
}

// PDFInput is the input for ingesting a PDF and persisting its processed text.
type PDFInput struct {
	// ID defaults to PDFPath when empty.
	ID         string `json:"id,omitempty"`
	PDFPath    string `json:"pdf_path"`
	OutputPath string `json:"output_path"`
}
