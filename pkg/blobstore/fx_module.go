package blobstore

import "go.uber.org/fx"

var FXModule = fx.Module("blobstore",
	fx.Provide(
		NewStore,
	),
)
