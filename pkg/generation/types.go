package generation

import "context"

// Generator produces a grounded answer from a question and an assembled
// context block. Implementations wrap an external LLM service.
type Generator interface {
	Generate(ctx context.Context, question, contextBlock string) (string, error)
}
