package metrics

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"
)

// FXModule wires the metrics server into Fx. The HTTP server is started on
// OnStart and drained on OnStop.
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// Logger is the logging contract required by this package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

func RegisterMetricsLifecycle(lc fx.Lifecycle, m *Metrics, log Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("metrics server listening", nil, map[string]interface{}{
					"address": m.Server.Addr,
				})
				if err := m.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("metrics server stopped unexpectedly", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return m.Server.Shutdown(ctx)
		},
	})
}
