package retrieval

import (
	"go.uber.org/fx"

	"github.com/inferlab/ragengine/pkg/metrics"
	"github.com/inferlab/ragengine/pkg/tracer"
)

var FXModule = fx.Module("retrieval",
	fx.Provide(
		NewEngineFromDeps,
	),
)

type EngineParams struct {
	fx.In

	Embedder  QueryEmbedder
	Searcher  Searcher
	Generator Generator
	Logger    Logger

	Metrics *metrics.Metrics `optional:"true"`
	Tracer  *tracer.Tracer   `optional:"true"`
}

func NewEngineFromDeps(p EngineParams) *Engine {
	var opts []EngineOption
	if p.Metrics != nil {
		opts = append(opts, WithMetrics(p.Metrics))
	}
	if p.Tracer != nil {
		opts = append(opts, WithTracer(p.Tracer))
	}
	return NewEngine(p.Embedder, p.Searcher, p.Generator, p.Logger, opts...)
}
