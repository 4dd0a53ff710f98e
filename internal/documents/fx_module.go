package documents

import "go.uber.org/fx"

var FXModule = fx.Module("documents",
	fx.Provide(
		NewRepository,
	),
)
