// Package rag ties extraction, storage, keyword retrieval and chat completion
// into a retrieval-augmented question answering pipeline.
package rag

import (
	"sync"

	"github.com/hyperjump/ragpipe/internal/models"
	"github.com/hyperjump/ragpipe/internal/store"
)

// Session is the state shared by one pipeline: the document store and the
// path of the most recently written processed-text file. All access is
// serialized by an internal mutex.
type Session struct {
	mu            sync.Mutex
	docs          store.Store
	processedPath string
}

// NewSession returns an empty session backed by an in-memory store.
func NewSession() *Session {
	return NewSessionWithStore(store.NewMemory())
}

// NewSessionWithStore returns a session backed by s.
func NewSessionWithStore(s store.Store) *Session {
	return &Session{docs: s}
}

// commit stores doc and, when path is non-empty, records it as the processed
// text handle. Both happen under one lock acquisition.
func (s *Session) commit(doc models.Document, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs.Add(doc)
	if path != "" {
		s.processedPath = path
	}
}

// Document returns the stored document with id.
func (s *Session) Document(id string) (models.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.Get(id)
}

// Documents returns every stored document in ascending ID order.
func (s *Session) Documents() []models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.docs.IDs()
	out := make([]models.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := s.docs.Get(id); ok {
			out = append(out, doc)
		}
	}
	return out
}

// IDs returns the stored document IDs in ascending order.
func (s *Session) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.IDs()
}

// Len returns the number of stored documents.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.Len()
}

// ProcessedPath returns the path of the last processed-text file written, or
// ErrMissingContext when no PDF has been ingested with an output path.
func (s *Session) ProcessedPath() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processedPath == "" {
		return "", ErrMissingContext
	}
	return s.processedPath, nil
}

// Empty reports whether nothing was ever ingested.
func (s *Session) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.Len() == 0 && s.processedPath == ""
}
