// Package httpapi exposes the public HTTP surface: URL submission, status
// and listing lookups, and question answering. Handlers are thin; submission
// logic lives in the ingest service and answering in the retrieval engine.
package httpapi

import (
	"context"
	"net/http"
	"time"
)

type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Server owns the HTTP listener and routes.
type Server struct {
	cfg       Config
	submitter Submitter
	reader    DocumentReader
	answerer  Answerer
	snapshots SnapshotReader
	logger    Logger

	httpServer *http.Server
}

func NewServer(cfg Config, submitter Submitter, reader DocumentReader, answerer Answerer, snapshots SnapshotReader, logger Logger) *Server {
	cfg.applyDefaults()
	s := &Server{
		cfg:       cfg,
		submitter: submitter,
		reader:    reader,
		answerer:  answerer,
		snapshots: snapshots,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("POST /ingest-url", s.handleIngestURL)
	mux.HandleFunc("GET /status/{job_id}", s.handleStatus)
	mux.HandleFunc("GET /documents", s.handleListDocuments)
	mux.HandleFunc("GET /documents/{job_id}/snapshot", s.handleSnapshot)
	mux.HandleFunc("POST /query", s.handleQuery)

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler exposes the routing mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() {
	s.logger.Info("http server listening", nil, map[string]interface{}{
		"address": s.cfg.Address,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Fatal("http server failed", err, nil)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
