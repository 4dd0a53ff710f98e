package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the Prometheus registry, its HTTP server, and the
// instruments used across the ingestion and query paths.
type Metrics struct {
	Server      *http.Server
	Registry    *prometheus.Registry
	serviceName string

	// IngestJobs counts ingestion jobs by terminal outcome (completed|failed|skipped).
	IngestJobs *prometheus.CounterVec

	// StageDuration observes per-stage pipeline latency (fetch|clean|chunk|embed|store).
	StageDuration *prometheus.HistogramVec

	// QueryDuration observes end-to-end /query latency by outcome (ok|error|empty).
	QueryDuration *prometheus.HistogramVec

	// ChunksIndexed counts chunks written to the vector store.
	ChunksIndexed prometheus.Counter
}

func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	wrappedRegistry := prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registry)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	ingestJobs := createCounterVec(
		"ragengine_ingest_jobs_total",
		"Ingestion jobs by terminal outcome.",
		[]string{"outcome"},
	)
	stageDuration := createHistogramVec(
		"ragengine_pipeline_stage_duration_seconds",
		"Duration of individual ingestion pipeline stages.",
		[]string{"stage"},
		[]float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	)
	queryDuration := createHistogramVec(
		"ragengine_query_duration_seconds",
		"End-to-end query latency.",
		[]string{"outcome"},
		[]float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	)
	chunksIndexed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ragengine_chunks_indexed_total",
		Help: "Chunks written to the vector store.",
	})

	wrappedRegistry.MustRegister(ingestJobs, stageDuration, queryDuration, chunksIndexed)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	server := &http.Server{
		Addr:    cfg.Address,
		Handler: handler,
	}

	return &Metrics{
		Server:        server,
		Registry:      registry,
		serviceName:   cfg.ServiceName,
		IngestJobs:    ingestJobs,
		StageDuration: stageDuration,
		QueryDuration: queryDuration,
		ChunksIndexed: chunksIndexed,
	}
}
