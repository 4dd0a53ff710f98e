package ingest

import (
	"context"

	"go.uber.org/fx"
)

var FXModule = fx.Module("ingest",
	fx.Provide(
		NewService,
		NewPipeline,
		NewWorkerFromConfig,
	),
)

func NewWorkerFromConfig(cfg Config, p WorkerParams) *Worker {
	return NewWorker(p, cfg.Concurrency)
}

// RegisterWorkerLifecycle runs the worker loop for the lifetime of the app.
// An unexpected loop exit takes the whole process down so the orchestrator
// can restart it.
func RegisterWorkerLifecycle(lc fx.Lifecycle, w *Worker, logger WorkerLogger, shutdowner fx.Shutdowner) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := w.Run(runCtx); err != nil {
					logger.Error("worker loop exited", err, nil)
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
