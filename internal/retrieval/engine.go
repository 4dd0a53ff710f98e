package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/inferlab/ragengine/pkg/metrics"
	"github.com/inferlab/ragengine/pkg/qdrant"
	"github.com/inferlab/ragengine/pkg/tracer"
)

const (
	// DefaultTopK is how many chunks back a question when the caller
	// doesn't ask for a specific number.
	DefaultTopK = 5

	// MaxTopK caps retrieval fan-out per question.
	MaxTopK = 20

	// NoResultsAnswer is returned verbatim when the index has nothing
	// relevant; the generator is not called in that case.
	NoResultsAnswer = "I couldn't find any relevant information in the knowledge base to answer your question."

	sourcePreviewLen = 200
)

// QueryEmbedder embeds a single question.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Searcher returns the chunks nearest to a query vector, best first.
type Searcher interface {
	Search(ctx context.Context, vector []float32, topK int) ([]qdrant.ScoredChunk, error)
}

// Generator produces the final answer from the question and the assembled
// context block.
type Generator interface {
	Generate(ctx context.Context, question, contextBlock string) (string, error)
}

type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Source is one retrieved chunk backing an answer, with a preview of the
// matched text.
type Source struct {
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	ChunkText string  `json:"chunk_text"`
	Score     float32 `json:"score"`
}

// Answer is the response to one question.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Engine answers questions over the indexed corpus: embed the question,
// pull the nearest chunks, and have the generator answer from them alone.
type Engine struct {
	embedder  QueryEmbedder
	searcher  Searcher
	generator Generator
	logger    Logger

	metrics *metrics.Metrics
	tracer  *tracer.Tracer
}

type EngineOption func(*Engine)

func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

func WithTracer(t *tracer.Tracer) EngineOption {
	return func(e *Engine) { e.tracer = t }
}

func NewEngine(embedder QueryEmbedder, searcher Searcher, generator Generator, logger Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		embedder:  embedder,
		searcher:  searcher,
		generator: generator,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Answer retrieves the topK most relevant chunks and generates an answer
// grounded on them. A non-positive topK falls back to the default; values
// above MaxTopK are capped at MaxTopK.
func (e *Engine) Answer(ctx context.Context, question string, topK int) (*Answer, error) {
	start := time.Now()
	ctx, finish := e.startSpan(ctx, question)
	defer finish()

	if strings.TrimSpace(question) == "" {
		e.observe("error", start)
		return nil, fmt.Errorf("question must not be empty")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	vector, err := e.embedder.EmbedQuery(ctx, question)
	if err != nil {
		e.observe("error", start)
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	chunks, err := e.searcher.Search(ctx, vector, topK)
	if err != nil {
		e.observe("error", start)
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	if len(chunks) == 0 {
		e.observe("empty", start)
		e.logger.Info("no relevant chunks for question", nil, nil)
		return &Answer{Answer: NoResultsAnswer, Sources: []Source{}}, nil
	}

	answer, err := e.generator.Generate(ctx, question, buildContext(chunks))
	if err != nil {
		e.observe("error", start)
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	e.observe("ok", start)
	return &Answer{
		Answer:  answer,
		Sources: buildSources(chunks),
	}, nil
}

// buildContext assembles the retrieved chunks into the prompt context,
// best match first, each attributed to its source page.
func buildContext(chunks []qdrant.ScoredChunk) string {
	blocks := make([]string, len(chunks))
	for i, chunk := range chunks {
		blocks[i] = fmt.Sprintf("[Source: %s]\n%s", chunk.URL, chunk.Text)
	}
	return strings.Join(blocks, "\n\n")
}

func buildSources(chunks []qdrant.ScoredChunk) []Source {
	sources := make([]Source, len(chunks))
	for i, chunk := range chunks {
		sources[i] = Source{
			URL:       chunk.URL,
			Title:     chunk.Title,
			ChunkText: preview(chunk.Text),
			Score:     chunk.Score,
		}
	}
	return sources
}

// preview truncates to sourcePreviewLen characters, not bytes, so multi-byte
// runes are never split.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= sourcePreviewLen {
		return text
	}
	return string(runes[:sourcePreviewLen]) + "..."
}

func (e *Engine) observe(outcome string, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.QueryDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

func (e *Engine) startSpan(ctx context.Context, question string) (context.Context, func()) {
	if e.tracer == nil {
		return ctx, func() {}
	}
	ctx, span := e.tracer.StartSpan(ctx, "retrieval.answer")
	e.tracer.SetAttributes(span, map[string]interface{}{
		"question_length": len(question),
	})
	return ctx, func() { span.End() }
}
