package config

import "go.uber.org/fx"

// FXOption exposes every section as its own typed value so package modules
// can depend on just their slice of the configuration.
func (c *AppConfig) FXOption() fx.Option {
	return fx.Supply(
		c.Logger,
		c.Metrics,
		c.Tracer,
		c.Postgres,
		c.Rabbit,
		c.Qdrant,
		c.Embedding,
		c.Generation,
		c.Fetcher,
		c.Chunker,
		c.Blobstore,
		c.Events,
		c.HTTP,
		c.Ingest,
	)
}
