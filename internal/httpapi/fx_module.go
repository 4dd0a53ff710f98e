package httpapi

import (
	"context"

	"go.uber.org/fx"
)

var FXModule = fx.Module("httpapi",
	fx.Provide(
		NewServer,
	),
	fx.Invoke(RegisterServerLifecycle),
)

func RegisterServerLifecycle(lc fx.Lifecycle, server *Server) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go server.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}
