package embedding

import (
	"context"
	"fmt"
)

// Client is a thin facade that delegates requests to the underlying Provider
// and enforces the configured dimensionality. Ingestion and query must embed
// with the same model; a dimension mismatch here means the service is
// pointed at the wrong model and the result would silently poison the index.
type Client struct {
	provider Provider
	dim      int
}

// NewClient constructs a Client from an already-instantiated Provider.
// The Provider is created by FX (NewOpenAIProvider).
func NewClient(p Provider, cfg Config) *Client {
	return &Client{provider: p, dim: cfg.Dimension}
}

// Dimension reports the vector size this client produces.
func (c *Client) Dimension() int {
	return c.dim
}

// EmbedTexts embeds a batch of texts, one vector per input, in input order.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := c.provider.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(vectors), len(texts))
	}
	for i, v := range vectors {
		if c.dim > 0 && len(v) != c.dim {
			return nil, fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(v), c.dim)
		}
	}
	return vectors, nil
}

// EmbedQuery embeds a single text, typically a user question.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
