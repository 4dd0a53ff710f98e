package chunker

import "go.uber.org/fx"

var FXModule = fx.Module("chunker",
	fx.Provide(
		New,
	),
)
