package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/inferlab/ragengine/pkg/chunker"
	"github.com/inferlab/ragengine/pkg/fetcher"
	"github.com/inferlab/ragengine/pkg/metrics"
	"github.com/inferlab/ragengine/pkg/qdrant"
)

// Fetcher retrieves and cleans one page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.Page, error)
}

// Splitter cuts cleaned text into embedding-sized chunks.
type Splitter interface {
	Split(text string) []chunker.Chunk
}

// Embedder turns chunk texts into vectors, one per input, in order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkStore is the vector index surface the pipeline writes to.
type ChunkStore interface {
	UpsertChunks(ctx context.Context, chunks []qdrant.ChunkRecord) error
	DeleteByDocument(ctx context.Context, docID string) error
}

// Result is what a successful pipeline run produces.
type Result struct {
	Title      string
	ChunkCount int
	Raw        []byte
}

// Pipeline runs the fetch, clean, chunk, embed and store stages for one
// document. Transient failures in fetch, embed and store are retried with
// exponential backoff up to maxAttempts; chunking is pure and never retried.
type Pipeline struct {
	fetcher  Fetcher
	splitter Splitter
	embedder Embedder
	chunks   ChunkStore
	metrics  *metrics.Metrics

	maxAttempts     uint64
	initialInterval time.Duration
}

func NewPipeline(f Fetcher, s Splitter, e Embedder, c ChunkStore, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		fetcher:         f,
		splitter:        s,
		embedder:        e,
		chunks:          c,
		metrics:         m,
		maxAttempts:     3,
		initialInterval: time.Second,
	}
}

// Run executes the full pipeline for one job. Errors are always *StageError
// so callers can persist "stage: cause" on the document.
func (p *Pipeline) Run(ctx context.Context, job Job) (*Result, error) {
	page, err := p.fetchPage(ctx, job.URL)
	if err != nil {
		if errors.Is(err, fetcher.ErrEmptyContent) {
			return nil, &StageError{Stage: StageClean, Err: err}
		}
		return nil, &StageError{Stage: StageFetch, Err: err}
	}

	chunks := p.splitText(page.Text)
	if len(chunks) == 0 {
		return nil, &StageError{Stage: StageChunk, Err: errors.New("no chunks produced")}
	}

	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return nil, &StageError{Stage: StageEmbed, Err: err}
	}

	if err := p.storeChunks(ctx, job, page, chunks, vectors); err != nil {
		return nil, &StageError{Stage: StageStore, Err: err}
	}

	return &Result{
		Title:      page.Title,
		ChunkCount: len(chunks),
		Raw:        page.Raw,
	}, nil
}

func (p *Pipeline) fetchPage(ctx context.Context, url string) (*fetcher.Page, error) {
	var page *fetcher.Page
	err := p.withRetry(ctx, StageFetch, func() error {
		var err error
		page, err = p.fetcher.Fetch(ctx, url)
		if errors.Is(err, fetcher.ErrEmptyContent) {
			// a thin page won't grow on retry
			return backoff.Permanent(err)
		}
		return err
	})
	return page, err
}

func (p *Pipeline) splitText(text string) []chunker.Chunk {
	start := time.Now()
	chunks := p.splitter.Split(text)
	p.observe(StageChunk, start)
	return chunks
}

func (p *Pipeline) embedChunks(ctx context.Context, chunks []chunker.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	var vectors [][]float32
	err := p.withRetry(ctx, StageEmbed, func() error {
		var err error
		vectors, err = p.embedder.EmbedTexts(ctx, texts)
		return err
	})
	return vectors, err
}

// storeChunks replaces the document's chunks in the vector index. Deleting
// first keeps a re-ingested document from retaining stale chunks when the
// new split produces fewer windows.
func (p *Pipeline) storeChunks(ctx context.Context, job Job, page *fetcher.Page, chunks []chunker.Chunk, vectors [][]float32) error {
	records := make([]qdrant.ChunkRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = qdrant.ChunkRecord{
			DocID:      job.DocID,
			URL:        job.URL,
			Title:      page.Title,
			Text:       chunk.Text,
			ChunkIndex: chunk.Index,
			Vector:     vectors[i],
		}
	}

	return p.withRetry(ctx, StageStore, func() error {
		if err := p.chunks.DeleteByDocument(ctx, job.DocID); err != nil {
			return err
		}
		return p.chunks.UpsertChunks(ctx, records)
	})
}

func (p *Pipeline) withRetry(ctx context.Context, stage string, op func() error) error {
	start := time.Now()
	defer p.observe(stage, start)

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(p.initialInterval),
		), p.maxAttempts-1),
		ctx,
	)
	return backoff.Retry(op, policy)
}

func (p *Pipeline) observe(stage string, start time.Time) {
	if p.metrics == nil {
		return
	}
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
