package embedding

import (
	"context"

	"go.uber.org/fx"
)

// FXModule wires the embedding system into Fx.
//
// It provides:
//   - Provider (NewOpenAIProvider)
//   - *Client  (NewClient)
//   - lifecycle hook closing idle connections on shutdown
var FXModule = fx.Module(
	"embedding",

	fx.Provide(
		NewOpenAIProvider, // -> Provider
		NewClient,         // -> *Client
	),

	fx.Invoke(RegisterEmbeddingLifecycle),
)

func RegisterEmbeddingLifecycle(lc fx.Lifecycle, p Provider) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if c, ok := p.(interface{ Close() error }); ok {
				return c.Close()
			}
			return nil
		},
	})
}
