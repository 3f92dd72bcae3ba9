package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradient/internal/pagetext"
	"gradient/internal/segmenter"
	"gradient/internal/tokenizer"
)

type stubEmbedder struct {
	calls int
	fail  bool
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.fail {
		return nil, errors.New("provider unreachable")
	}
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		vecs[i] = []float32{float32(len(t))}
	}
	return vecs, nil
}

func (s *stubEmbedder) Provider() string { return "stub" }
func (s *stubEmbedder) Model() string    { return "stub-model" }
func (s *stubEmbedder) Dimension() int   { return 1 }
func (s *stubEmbedder) Close() error     { return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSegmenter(t *testing.T) *segmenter.Segmenter {
	t.Helper()
	seg, err := segmenter.New(segmenter.DefaultConfig(), tokenizer.Count)
	require.NoError(t, err)
	return seg
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	long := strings.Repeat("Documents deserve a full sentence of respectable length here. ", 8)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"),
		[]byte("## Page: 1\n"+long), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"),
		[]byte("Tiny."), 0o644))

	// Unsupported extension and subdirectory must both be skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.xyz"), []byte("ignore"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	return dir
}

func TestRunProcessesCorpusInOrder(t *testing.T) {
	dir := writeCorpus(t)
	emb := &stubEmbedder{}
	p := New(testSegmenter(t), pagetext.Options{}, emb, 16, 2, quietLogger())

	results, err := p.Run(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, results, 2)

	a := results[0]
	assert.Equal(t, "a.txt", a.Document)
	require.NoError(t, a.Err)
	require.NotEmpty(t, a.Chunks)
	assert.Equal(t, "a.txt", a.Summary.PDFName)
	assert.Equal(t, len(a.Chunks), a.Summary.ChunkCount)
	require.Len(t, a.Vectors, len(a.Chunks))
	for i, c := range a.Chunks {
		assert.Equal(t, []float32{float32(len(c.Content))}, a.Vectors[i])
	}

	// The tiny document survives as an explicit empty result.
	b := results[1]
	assert.Equal(t, "b.txt", b.Document)
	assert.NoError(t, b.Err)
	assert.Empty(t, b.Chunks)
	assert.Equal(t, 0, b.Summary.ChunkCount)
	assert.Empty(t, b.Vectors)
}

func TestRunWithoutEmbedderSkipsVectors(t *testing.T) {
	dir := writeCorpus(t)
	p := New(testSegmenter(t), pagetext.Options{}, nil, 16, 1, quietLogger())

	results, err := p.Run(context.Background(), dir)
	require.NoError(t, err)
	for _, r := range results {
		assert.Empty(t, r.Vectors)
		assert.NoError(t, r.Err)
	}
}

func TestRunKeepsChunksWhenEmbeddingFails(t *testing.T) {
	dir := writeCorpus(t)
	emb := &stubEmbedder{fail: true}
	p := New(testSegmenter(t), pagetext.Options{}, emb, 16, 1, quietLogger())

	results, err := p.Run(context.Background(), dir)
	require.NoError(t, err)

	a := results[0]
	require.Error(t, a.Err)
	assert.Equal(t, StageEmbed, a.Stage)
	assert.NotEmpty(t, a.Chunks)
	assert.Empty(t, a.Vectors)

	fails := Failures(results)
	require.Len(t, fails, 1)
	assert.Equal(t, "a.txt", fails[0].PDFName)
	assert.Equal(t, "embed", fails[0].Stage)
	assert.Contains(t, fails[0].Error, "provider unreachable")
}

func TestRunMissingDirectory(t *testing.T) {
	p := New(testSegmenter(t), pagetext.Options{}, nil, 16, 1, quietLogger())
	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
