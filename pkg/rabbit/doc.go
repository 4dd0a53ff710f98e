// Package rabbit provides the durable job queue between URL submission and
// the ingestion workers.
//
// The API server publishes one persistent message per accepted submission;
// workers consume with manual acks and a prefetch bound, so each enqueued job
// has at most one active delivery at a time. Messages the worker cannot
// decode are dead-lettered to a separate queue for inspection instead of
// being redelivered forever.
//
// Connection loss is handled by a background reconnect loop that re-declares
// the full topology (exchange, queue, DLQ, bindings) before resuming.
package rabbit
