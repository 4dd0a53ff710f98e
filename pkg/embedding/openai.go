package embedding

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// OpenAIProvider talks to any OpenAI-compatible /embeddings endpoint
// (OpenAI itself, vLLM, text-embeddings-inference, LocalAI, ...).
type OpenAIProvider struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAIProvider builds the Provider from config. The HTTP timeout bounds
// every embedding call so a stuck service cannot hold a worker indefinitely.
func NewOpenAIProvider(cfg Config) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &OpenAIProvider{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.HTTPTimeoutS) * time.Second,
		},
	}, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed sends a single batched request. Results arrive keyed by index and are
// re-ordered to match the input.
func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var resp embeddingResponse
	err := p.postJSON(ctx, p.endpoint, embeddingRequest{
		Model: p.model,
		Input: texts,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d items for %d inputs", len(resp.Data), len(texts))
	}

	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// Close releases idle HTTP connections.
func (p *OpenAIProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}
