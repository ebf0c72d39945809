package store

import (
	"testing"

	"github.com/hyperjump/ragpipe/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestMemory_AddGet(t *testing.T) {
	m := NewMemory()
	_, ok := m.Get("doc1")
	assert.False(t, ok)

	m.Add(models.Document{ID: "doc1", Content: "first"})
	doc, ok := m.Get("doc1")
	assert.True(t, ok)
	assert.Equal(t, "first", doc.Content)
	assert.Equal(t, 1, m.Len())
}

func TestMemory_AddOverwrites(t *testing.T) {
	m := NewMemory()
	m.Add(models.Document{ID: "doc1", Content: "first"})
	m.Add(models.Document{ID: "doc1", Content: "second"})
	doc, _ := m.Get("doc1")
	assert.Equal(t, "second", doc.Content)
	assert.Equal(t, 1, m.Len())
}

func TestMemory_EmptyContentIsStored(t *testing.T) {
	m := NewMemory()
	m.Add(models.Document{ID: "empty.pdf"})
	doc, ok := m.Get("empty.pdf")
	assert.True(t, ok)
	assert.Equal(t, "", doc.Content)
}

func TestMemory_IDsSorted(t *testing.T) {
	m := NewMemory()
	assert.Empty(t, m.IDs())
	for _, id := range []string{"c", "a", "b"} {
		m.Add(models.Document{ID: id})
	}
	assert.Equal(t, []string{"a", "b", "c"}, m.IDs())
}
