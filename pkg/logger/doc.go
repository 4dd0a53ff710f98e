// Package logger provides structured JSON logging for the RAG engine services.
//
// It wraps Uber's Zap logger behind a small method set
// (Info/Debug/Warn/Error/Fatal) that every other package depends on through
// its own local Logger interface, so packages stay mockable in tests.
//
// Basic usage:
//
//	log := logger.NewLoggerClient(logger.Config{Level: "info", ServiceName: "ragengine-api"})
//	log.Info("document ingested", nil, map[string]interface{}{
//		"doc_id": id,
//		"chunks": n,
//	})
//
// The package ships an fx module; the lifecycle hook flushes buffered log
// entries on shutdown.
package logger
