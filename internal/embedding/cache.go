package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cached memoizes another Embedder keyed by the SHA-256 of the text.
// Entries expire after ttl; failures are not cached.
type Cached struct {
	next  Embedder
	cache *cache.Cache
}

var _ Embedder = (*Cached)(nil)

// NewCached wraps next with a cache whose entries live for ttl.
// A non-positive ttl keeps entries until the process exits.
func NewCached(next Embedder, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Cached{
		next:  next,
		cache: cache.New(ttl, 10*time.Minute),
	}
}

// Embed returns the cached embedding for text or computes and stores it.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if v, ok := c.cache.Get(key); ok {
		return v.([]float32), nil
	}
	emb, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, emb)
	return emb, nil
}

// Len returns the number of unexpired cached embeddings.
func (c *Cached) Len() int {
	return c.cache.ItemCount()
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
