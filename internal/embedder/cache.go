package embedder

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 10000

// cachedEmbedder serves repeated texts from an LRU cache keyed by content
// hash, forwarding only misses to the wrapped provider.
type cachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

// WithCache wraps an embedder with an in-memory LRU embedding cache.
func WithCache(e Embedder, size int) Embedder {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		// Only reachable with a non-positive size, which we just excluded.
		cache, _ = lru.New[string, []float32](defaultCacheSize)
	}
	return &cachedEmbedder{inner: e, cache: cache}
}

func (c *cachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int

	for i, t := range texts {
		if v, ok := c.cache.Get(contentHash(t)); ok {
			// Copy so caller mutations never reach the cached vector.
			out[i] = append([]float32(nil), v...)
			continue
		}
		missTexts = append(missTexts, t)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) > 0 {
		vecs, err := c.inner.EmbedBatch(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(missTexts) {
			return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrProviderFailed, len(vecs), len(missTexts))
		}
		for j, v := range vecs {
			c.cache.Add(contentHash(missTexts[j]), append([]float32(nil), v...))
			out[missIdx[j]] = v
		}
	}
	return out, nil
}

func (c *cachedEmbedder) Provider() string { return c.inner.Provider() }
func (c *cachedEmbedder) Model() string    { return c.inner.Model() }
func (c *cachedEmbedder) Dimension() int   { return c.inner.Dimension() }
func (c *cachedEmbedder) Close() error     { return c.inner.Close() }
