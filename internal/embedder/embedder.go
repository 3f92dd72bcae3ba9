// Package embedder turns chunk text into fixed-width numeric vectors through
// pluggable HTTP providers. Providers are order-preserving: output vector i
// always corresponds to input text i, regardless of batching.
package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrProviderFailed = errors.New("embedding provider failed")
)

// DefaultBatchSize balances throughput against request size. Batch size is a
// resource knob only; any value yields the same vectors as batch size 1.
const DefaultBatchSize = 16

// Embedder generates embeddings for a batch of texts. Dimension reports the
// vector width observed on the first successful call, 0 before any.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Provider() string
	Model() string
	Dimension() int
	Close() error
}

// EmbedAll embeds texts in batches of batchSize, preserving input order.
func EmbedAll(ctx context.Context, e Embedder, texts []string, batchSize int) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := e.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed texts %d-%d: %w", start, end-1, err)
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrProviderFailed, len(vecs), end-start)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// contentHash keys the embedding cache by text content.
func contentHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
