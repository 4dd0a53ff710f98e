// The worker binary drains the ingestion queue: for each job it fetches the
// page, cleans and chunks the text, embeds the chunks and writes them to the
// vector index, then records the outcome on the document row.
package main

import (
	"flag"
	"log"

	"go.uber.org/fx"

	"github.com/inferlab/ragengine/internal/config"
	"github.com/inferlab/ragengine/internal/documents"
	"github.com/inferlab/ragengine/internal/ingest"
	"github.com/inferlab/ragengine/pkg/blobstore"
	"github.com/inferlab/ragengine/pkg/chunker"
	"github.com/inferlab/ragengine/pkg/embedding"
	"github.com/inferlab/ragengine/pkg/events"
	"github.com/inferlab/ragengine/pkg/fetcher"
	"github.com/inferlab/ragengine/pkg/logger"
	"github.com/inferlab/ragengine/pkg/metrics"
	"github.com/inferlab/ragengine/pkg/postgres"
	"github.com/inferlab/ragengine/pkg/qdrant"
	"github.com/inferlab/ragengine/pkg/rabbit"
	"github.com/inferlab/ragengine/pkg/tracer"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.Logger.ServiceName = "ragengine-worker"
	cfg.Metrics.ServiceName = "ragengine-worker"
	cfg.Tracer.ServiceName = "ragengine-worker"

	app := fx.New(
		cfg.FXOption(),

		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		postgres.FXModule,
		rabbit.FXModule,
		qdrant.FXModule,
		embedding.FXModule,
		fetcher.FXModule,
		chunker.FXModule,
		blobstore.FXModule,
		events.FXModule,
		documents.FXModule,
		ingest.FXModule,

		fx.Provide(
			func(l *logger.Logger) metrics.Logger { return l },
			func(l *logger.Logger) tracer.Logger { return l },
			func(l *logger.Logger) postgres.Logger { return l },
			func(l *logger.Logger) rabbit.Logger { return l },
			func(l *logger.Logger) qdrant.Logger { return l },
			func(l *logger.Logger) blobstore.Logger { return l },
			func(l *logger.Logger) events.Logger { return l },
			func(l *logger.Logger) ingest.WorkerLogger { return l },

			func(r *documents.Repository) ingest.WorkerStore { return r },
			func(q *rabbit.Rabbit) ingest.Consumer { return q },

			func(f *fetcher.Fetcher) ingest.Fetcher { return f },
			func(c *chunker.Chunker) ingest.Splitter { return c },
			func(e *embedding.Client) ingest.Embedder { return e },
			func(s *qdrant.ChunkStore) ingest.ChunkStore { return s },
			func(p *events.Publisher) ingest.EventSink { return p },
			func(s *blobstore.Store) ingest.Archive { return s },
		),

		fx.Invoke(migrate),
		fx.Invoke(ingest.RegisterWorkerLifecycle),
	)

	app.Run()
}

func migrate(pg *postgres.Postgres) error {
	return pg.Migrate(&documents.Document{})
}
