package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCached_reusesEmbedding(t *testing.T) {
	mock := NewMockEmbedder(4)
	c := NewCached(mock, time.Hour)
	ctx := context.Background()

	first, err := c.Embed(ctx, "same text")
	require.NoError(t, err)
	second, err := c.Embed(ctx, "same text")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, mock.Calls())
	assert.Equal(t, 1, c.Len())

	_, err = c.Embed(ctx, "other text")
	require.NoError(t, err)
	assert.Equal(t, 2, mock.Calls())
	assert.Equal(t, 2, c.Len())
}

type failingEmbedder struct{ calls int }

func (f *failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	f.calls++
	return nil, errors.New("backend down")
}

func TestCached_doesNotCacheErrors(t *testing.T) {
	f := &failingEmbedder{}
	c := NewCached(f, 0)
	_, err := c.Embed(context.Background(), "x")
	assert.Error(t, err)
	_, err = c.Embed(context.Background(), "x")
	assert.Error(t, err)
	assert.Equal(t, 2, f.calls)
	assert.Zero(t, c.Len())
}
