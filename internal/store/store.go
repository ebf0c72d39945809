// Package store holds ingested documents in memory for the life of a session.
package store

import (
	"sort"

	"github.com/hyperjump/ragpipe/internal/models"
)

// Store defines document operations. Documents are only ever added or replaced. Implementations are not required to be
// safe for concurrent use; callers serialize access.
type Store interface {
	Add(doc models.Document)
	Get(id string) (models.Document, bool)
	IDs() []string
	Len() int
}

// Memory is a map-backed Store. Re-adding an ID overwrites the previous content.
type Memory struct {
	docs map[string]models.Document
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]models.Document)}
}

// Add inserts or overwrites the document with doc.ID.
func (m *Memory) Add(doc models.Document) {
	m.docs[doc.ID] = doc
}

// Get returns the document with id.
func (m *Memory) Get(id string) (models.Document, bool) {
	doc, ok := m.docs[id]
	return doc, ok
}

// IDs returns the stored IDs in ascending order.
func (m *Memory) IDs() []string {
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of stored documents.
func (m *Memory) Len() int {
	return len(m.docs)
}
