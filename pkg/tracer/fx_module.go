package tracer

import (
	"context"

	"go.uber.org/fx"
)

var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle flushes pending spans on shutdown.
func RegisterTracerLifecycle(lc fx.Lifecycle, t *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return t.tracer.Shutdown(ctx)
		},
	})
}
