// The api binary serves the public HTTP surface: URL submission, document
// status, listings, and question answering. Ingestion itself runs in the
// worker binary; the two share the database, queue and vector index.
package main

import (
	"flag"
	"log"

	"go.uber.org/fx"

	"github.com/inferlab/ragengine/internal/config"
	"github.com/inferlab/ragengine/internal/documents"
	"github.com/inferlab/ragengine/internal/httpapi"
	"github.com/inferlab/ragengine/internal/ingest"
	"github.com/inferlab/ragengine/internal/retrieval"
	"github.com/inferlab/ragengine/pkg/blobstore"
	"github.com/inferlab/ragengine/pkg/embedding"
	"github.com/inferlab/ragengine/pkg/generation"
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
	cfg.Logger.ServiceName = "ragengine-api"
	cfg.Metrics.ServiceName = "ragengine-api"
	cfg.Tracer.ServiceName = "ragengine-api"

	app := fx.New(
		cfg.FXOption(),

		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		postgres.FXModule,
		rabbit.FXModule,
		qdrant.FXModule,
		embedding.FXModule,
		generation.FXModule,
		blobstore.FXModule,
		documents.FXModule,
		ingest.FXModule,
		retrieval.FXModule,
		httpapi.FXModule,

		fx.Provide(
			func(l *logger.Logger) metrics.Logger { return l },
			func(l *logger.Logger) tracer.Logger { return l },
			func(l *logger.Logger) postgres.Logger { return l },
			func(l *logger.Logger) rabbit.Logger { return l },
			func(l *logger.Logger) qdrant.Logger { return l },
			func(l *logger.Logger) blobstore.Logger { return l },
			func(l *logger.Logger) httpapi.Logger { return l },
			func(l *logger.Logger) ingest.ServiceLogger { return l },
			func(l *logger.Logger) retrieval.Logger { return l },

			func(r *documents.Repository) ingest.DocumentStore { return r },
			func(r *documents.Repository) httpapi.DocumentReader { return r },
			func(q *rabbit.Rabbit) ingest.Queue { return q },
			func(s *ingest.Service) httpapi.Submitter { return s },

			func(c *embedding.Client) retrieval.QueryEmbedder { return c },
			func(s *qdrant.ChunkStore) retrieval.Searcher { return s },
			func(g generation.Generator) retrieval.Generator { return g },
			func(e *retrieval.Engine) httpapi.Answerer { return e },
			func(s *blobstore.Store) httpapi.SnapshotReader { return s },
		),

		fx.Invoke(migrate),
	)

	app.Run()
}

func migrate(pg *postgres.Postgres) error {
	return pg.Migrate(&documents.Document{})
}
