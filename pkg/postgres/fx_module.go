package postgres

import (
	"context"
	"sync"

	"go.uber.org/fx"
)

var FXModule = fx.Module("postgres",
	fx.Provide(
		NewPostgres,
	),
	fx.Invoke(RegisterPostgresLifecycle),
)

func RegisterPostgresLifecycle(lifecycle fx.Lifecycle, postgres *Postgres, logger Logger) {
	wg := &sync.WaitGroup{}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				postgres.monitorConnection(context.Background())
			}()

			wg.Add(1)
			go func() {
				defer wg.Done()
				postgres.retryConnection(context.Background(), logger, postgres.cfg)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			postgres.closeShutdownOnce.Do(func() {
				close(postgres.shutdownSignal)
			})
			wg.Wait()
			return nil
		},
	})
}
