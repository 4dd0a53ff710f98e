package events

import (
	"context"

	"go.uber.org/fx"
)

var FXModule = fx.Module("events",
	fx.Provide(
		NewPublisher,
	),
	fx.Invoke(RegisterPublisherLifecycle),
)

func RegisterPublisherLifecycle(lifecycle fx.Lifecycle, publisher *Publisher) {
	lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})
}
