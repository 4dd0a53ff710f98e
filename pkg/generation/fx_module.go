package generation

import "go.uber.org/fx"

var FXModule = fx.Module("generation",
	fx.Provide(
		NewGenerator, // -> Generator
	),
)
