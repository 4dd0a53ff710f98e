package ingest

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"

	"github.com/inferlab/ragengine/pkg/events"
	"github.com/inferlab/ragengine/pkg/metrics"
	"github.com/inferlab/ragengine/pkg/rabbit"
	"github.com/inferlab/ragengine/pkg/tracer"
)

// WorkerStore is the slice of the document repository the worker needs.
type WorkerStore interface {
	MarkProcessing(ctx context.Context, id string) (bool, error)
	MarkCompleted(ctx context.Context, id, title string, chunkCount int) (bool, error)
	MarkFailed(ctx context.Context, id, reason string) (bool, error)
}

// Consumer delivers queue messages until its context is cancelled.
type Consumer interface {
	Consume(ctx context.Context, wg *sync.WaitGroup) <-chan rabbit.Message
}

// EventSink publishes document status transitions.
type EventSink interface {
	Publish(ctx context.Context, event events.StatusEvent)
}

// Archive stores raw page snapshots.
type Archive interface {
	PutSnapshot(ctx context.Context, docID string, raw []byte) error
}

type WorkerLogger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Worker drains the ingestion queue with a bounded pool of goroutines. Each
// message is one document; the worker claims it, runs the pipeline, and
// records the outcome. A message is acked only once its outcome is durably
// recorded on the document row (or the claim was verifiably lost to another
// worker); when an infrastructure error prevents that, the message is nacked
// with requeue so redelivery can retry. Only undecodable payloads are
// dead-lettered.
type Worker struct {
	store    WorkerStore
	consumer Consumer
	pipeline *Pipeline
	logger   WorkerLogger

	metrics *metrics.Metrics
	events  EventSink
	archive Archive
	tracer  *tracer.Tracer

	concurrency int
}

type WorkerParams struct {
	fx.In

	Store    WorkerStore
	Consumer Consumer
	Pipeline *Pipeline
	Logger   WorkerLogger

	Metrics *metrics.Metrics `optional:"true"`
	Events  EventSink        `optional:"true"`
	Archive Archive          `optional:"true"`
	Tracer  *tracer.Tracer   `optional:"true"`
}

func NewWorker(p WorkerParams, concurrency int) *Worker {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Worker{
		store:       p.Store,
		consumer:    p.Consumer,
		pipeline:    p.Pipeline,
		logger:      p.Logger,
		metrics:     p.Metrics,
		events:      p.Events,
		archive:     p.Archive,
		tracer:      p.Tracer,
		concurrency: concurrency,
	}
}

// Run consumes until ctx is cancelled and all in-flight jobs finish.
// Cancellation stops the consumer only; jobs already dequeued, and the
// status writes that record their outcome, run on a context that survives
// shutdown so the drain cannot wedge documents mid-transition.
func (w *Worker) Run(ctx context.Context) error {
	wg := &sync.WaitGroup{}
	msgs := w.consumer.Consume(ctx, wg)

	jobCtx := context.WithoutCancel(ctx)

	g := &errgroup.Group{}
	for i := 0; i < w.concurrency; i++ {
		g.Go(func() error {
			for msg := range msgs {
				w.handle(jobCtx, msg)
			}
			return nil
		})
	}

	err := g.Wait()
	wg.Wait()
	return err
}

func (w *Worker) handle(ctx context.Context, msg rabbit.Message) {
	job, err := DecodeJob(msg.Body())
	if err != nil {
		w.logger.Error("dead-lettering undecodable job", err, nil)
		if nackErr := msg.NackMsg(false); nackErr != nil {
			w.logger.Error("failed to nack message", nackErr, nil)
		}
		return
	}

	if !w.process(ctx, job) {
		// no durable outcome; requeue so redelivery can retry once the
		// infrastructure recovers
		if nackErr := msg.NackMsg(true); nackErr != nil {
			w.logger.Error("failed to requeue message", nackErr, map[string]interface{}{
				"doc_id": job.DocID,
			})
		}
		return
	}

	if ackErr := msg.AckMsg(); ackErr != nil {
		w.logger.Error("failed to ack message", ackErr, map[string]interface{}{
			"doc_id": job.DocID,
		})
	}
}

// process runs one job and reports whether its outcome was durably recorded,
// i.e. whether the message may be acked.
func (w *Worker) process(ctx context.Context, job Job) bool {
	ctx, finish := w.startSpan(ctx, job)
	defer finish()

	claimed, err := w.store.MarkProcessing(ctx, job.DocID)
	if err != nil {
		w.logger.Error("failed to claim document", err, map[string]interface{}{
			"doc_id": job.DocID,
		})
		return false
	}
	if !claimed {
		// duplicate delivery or a racing worker got here first
		w.recordOutcome("skipped")
		w.logger.Info("skipping already-claimed document", nil, map[string]interface{}{
			"doc_id": job.DocID,
		})
		return true
	}
	w.publishEvent(ctx, job, "processing", "", 0)

	result, err := w.pipeline.Run(ctx, job)
	if err != nil {
		return w.fail(ctx, job, err)
	}
	return w.complete(ctx, job, result)
}

func (w *Worker) fail(ctx context.Context, job Job, pipelineErr error) bool {
	w.logger.Error("ingestion failed", pipelineErr, map[string]interface{}{
		"doc_id": job.DocID,
		"url":    job.URL,
	})

	recorded, err := w.store.MarkFailed(ctx, job.DocID, pipelineErr.Error())
	if err != nil {
		w.logger.Error("failed to record failure", err, map[string]interface{}{
			"doc_id": job.DocID,
		})
		return false
	}
	if !recorded {
		// the document left processing under us; whoever moved it owns
		// the outcome now
		w.logger.Warn("failure outcome lost a status race", nil, map[string]interface{}{
			"doc_id": job.DocID,
		})
		return true
	}

	w.recordOutcome("failed")
	w.publishEvent(ctx, job, "failed", pipelineErr.Error(), 0)
	return true
}

func (w *Worker) complete(ctx context.Context, job Job, result *Result) bool {
	if w.archive != nil && len(result.Raw) > 0 {
		if err := w.archive.PutSnapshot(ctx, job.DocID, result.Raw); err != nil {
			w.logger.Warn("failed to archive page snapshot", err, map[string]interface{}{
				"doc_id": job.DocID,
			})
		}
	}

	recorded, err := w.store.MarkCompleted(ctx, job.DocID, result.Title, result.ChunkCount)
	if err != nil {
		// chunks are indexed but the metadata write failed; surface that
		// instead of leaving the document stuck in processing
		return w.fail(ctx, job, &StageError{Stage: StageStore, Err: fmt.Errorf("chunks indexed but completion write failed: %w", err)})
	}
	if !recorded {
		w.logger.Warn("completion outcome lost a status race", nil, map[string]interface{}{
			"doc_id": job.DocID,
		})
		return true
	}

	w.recordOutcome("completed")
	w.recordChunks(result.ChunkCount)
	w.publishEvent(ctx, job, "completed", "", result.ChunkCount)

	w.logger.Info("document ingested", nil, map[string]interface{}{
		"doc_id": job.DocID,
		"url":    job.URL,
		"chunks": result.ChunkCount,
	})
	return true
}

func (w *Worker) recordOutcome(outcome string) {
	if w.metrics == nil {
		return
	}
	w.metrics.IngestJobs.WithLabelValues(outcome).Inc()
}

func (w *Worker) recordChunks(n int) {
	if w.metrics == nil {
		return
	}
	w.metrics.ChunksIndexed.Add(float64(n))
}

func (w *Worker) publishEvent(ctx context.Context, job Job, status, errMsg string, chunkCount int) {
	if w.events == nil {
		return
	}
	w.events.Publish(ctx, events.StatusEvent{
		DocID:      job.DocID,
		URL:        job.URL,
		Status:     status,
		Error:      errMsg,
		ChunkCount: chunkCount,
	})
}

func (w *Worker) startSpan(ctx context.Context, job Job) (context.Context, func()) {
	if w.tracer == nil {
		return ctx, func() {}
	}
	ctx, span := w.tracer.StartSpan(ctx, "ingest.process")
	w.tracer.SetAttributes(span, map[string]interface{}{
		"doc_id": job.DocID,
		"url":    job.URL,
	})
	return ctx, func() { span.End() }
}
