package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	providerTimeout = 30 * time.Second
)

// Ollama embeds via an Ollama server's /api/embed endpoint.
type Ollama struct {
	baseURL    string
	model      string
	httpClient *http.Client
	stats      *Stats
	dim        atomic.Int64
}

func NewOllama(baseURL, model string, stats *Stats) *Ollama {
	return &Ollama{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: providerTimeout},
		stats:      stats,
	}
}

func (o *Ollama) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}

	start := time.Now()
	vecs, err := withRetry(ctx, defaultRetryPolicy(), func() ([][]float32, error) {
		return o.call(ctx, texts)
	})
	if o.stats != nil {
		o.stats.Record(time.Since(start).Milliseconds())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	if len(vecs) > 0 {
		o.dim.Store(int64(len(vecs[0])))
	}
	return vecs, nil
}

func (o *Ollama) call(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(map[string]any{
		"model": o.model,
		"input": texts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(b))
	}

	var apiResp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(apiResp.Embeddings), len(texts))
	}
	return apiResp.Embeddings, nil
}

func (o *Ollama) Provider() string { return ProviderOllama }
func (o *Ollama) Model() string    { return o.model }
func (o *Ollama) Dimension() int   { return int(o.dim.Load()) }

func (o *Ollama) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

// OpenAI embeds via an OpenAI-compatible /v1/embeddings endpoint.
type OpenAI struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	stats      *Stats
	dim        atomic.Int64
}

func NewOpenAI(apiKey, baseURL, model string, stats *Stats) *OpenAI {
	return &OpenAI{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: providerTimeout},
		stats:      stats,
	}
}

func (o *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}

	start := time.Now()
	vecs, err := withRetry(ctx, defaultRetryPolicy(), func() ([][]float32, error) {
		return o.call(ctx, texts)
	})
	if o.stats != nil {
		o.stats.Record(time.Since(start).Milliseconds())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	if len(vecs) > 0 {
		o.dim.Store(int64(len(vecs[0])))
	}
	return vecs, nil
}

func (o *OpenAI) call(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(map[string]any{
		"model": o.model,
		"input": texts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(b))
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Data) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(apiResp.Data), len(texts))
	}

	// Reassemble by index; the API does not promise response order.
	out := make([][]float32, len(texts))
	for _, d := range apiResp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (o *OpenAI) Provider() string { return ProviderOpenAI }
func (o *OpenAI) Model() string    { return o.model }
func (o *OpenAI) Dimension() int   { return int(o.dim.Load()) }

func (o *OpenAI) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}
