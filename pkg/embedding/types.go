package embedding

import "context"

// Provider contract. Implementations call an external embedding service and
// return one vector per input text, in input order.
type Provider interface {
	// Embed maps texts to vectors in a single request. len(texts) >= 1.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
