package fetcher

import "go.uber.org/fx"

var FXModule = fx.Module("fetcher",
	fx.Provide(
		New,
	),
)
