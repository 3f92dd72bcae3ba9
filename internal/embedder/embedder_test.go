package embedder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder derives a deterministic vector from each text so ordering
// mistakes show up as value mismatches.
type fakeEmbedder struct {
	calls   int
	batches [][]string
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	f.batches = append(f.batches, append([]string(nil), texts...))

	out := make([][]float32, len(texts))
	for i, t := range texts {
		var sum float32
		for _, b := range []byte(t) {
			sum += float32(b)
		}
		out[i] = []float32{float32(len(t)), sum}
	}
	return out, nil
}

func (f *fakeEmbedder) Provider() string { return "fake" }
func (f *fakeEmbedder) Model() string    { return "fake-1" }
func (f *fakeEmbedder) Dimension() int   { return 2 }
func (f *fakeEmbedder) Close() error     { return nil }

func TestEmbedAllBatchSizeInvariance(t *testing.T) {
	texts := []string{"one", "two", "three", "four", "five", "six", "seven"}

	single, err := EmbedAll(context.Background(), &fakeEmbedder{}, texts, 1)
	require.NoError(t, err)

	for _, size := range []int{3, 16, 0} {
		got, err := EmbedAll(context.Background(), &fakeEmbedder{}, texts, size)
		require.NoError(t, err)
		assert.Equal(t, single, got, "batch size %d must match batch size 1", size)
	}
}

func TestEmbedAllPreservesOrder(t *testing.T) {
	texts := []string{"a", "bb", "ccc", "dddd"}

	vecs, err := EmbedAll(context.Background(), &fakeEmbedder{}, texts, 2)
	require.NoError(t, err)

	require.Len(t, vecs, len(texts))
	for i, v := range vecs {
		assert.Equal(t, float32(len(texts[i])), v[0])
	}
}

func TestEmbedAllEmptyInput(t *testing.T) {
	vecs, err := EmbedAll(context.Background(), &fakeEmbedder{}, nil, 4)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbedAllSplitsIntoBatches(t *testing.T) {
	fake := &fakeEmbedder{}
	texts := []string{"a", "b", "c", "d", "e"}

	_, err := EmbedAll(context.Background(), fake, texts, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, fake.calls)
	assert.Equal(t, []string{"a", "b"}, fake.batches[0])
	assert.Equal(t, []string{"e"}, fake.batches[2])
}

func TestCacheServesRepeatedTexts(t *testing.T) {
	fake := &fakeEmbedder{}
	cached := WithCache(fake, 100)

	first, err := cached.EmbedBatch(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)

	second, err := cached.EmbedBatch(context.Background(), []string{"alpha", "gamma"})
	require.NoError(t, err)

	assert.Equal(t, first[0], second[0])
	assert.Equal(t, 2, fake.calls)
	// Only the miss reached the provider.
	assert.Equal(t, []string{"gamma"}, fake.batches[1])
}

func TestCacheReturnsCopies(t *testing.T) {
	cached := WithCache(&fakeEmbedder{}, 100)

	first, err := cached.EmbedBatch(context.Background(), []string{"alpha"})
	require.NoError(t, err)
	want := append([]float32(nil), first[0]...)

	// A hit comes back as a copy; mutating it must not poison the cache.
	hit, err := cached.EmbedBatch(context.Background(), []string{"alpha"})
	require.NoError(t, err)
	hit[0][0] = -999

	again, err := cached.EmbedBatch(context.Background(), []string{"alpha"})
	require.NoError(t, err)
	assert.Equal(t, want, again[0])
}

func TestCacheDelegatesMetadata(t *testing.T) {
	cached := WithCache(&fakeEmbedder{}, 10)
	assert.Equal(t, "fake", cached.Provider())
	assert.Equal(t, "fake-1", cached.Model())
	assert.Equal(t, 2, cached.Dimension())
	assert.NoError(t, cached.Close())
}
