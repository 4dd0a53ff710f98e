package qdrant

import (
	"context"

	"go.uber.org/fx"
)

var FXModule = fx.Module("qdrant",
	fx.Provide(
		NewQdrantClient,
		NewChunkStore,
	),
	fx.Invoke(RegisterQdrantLifecycle),
)

func RegisterQdrantLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
