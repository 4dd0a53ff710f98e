// Package chunker splits cleaned page text into overlapping word windows
// sized for embedding. Splitting is deterministic: the same text always
// produces the same chunks in the same order.
package chunker

import "strings"

const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
)

// Chunk is one window of words, annotated with its position in the document.
type Chunk struct {
	Index int
	Text  string
}

// Chunker produces fixed-size overlapping word windows. Size and overlap are
// measured in words, and consecutive chunks share exactly Overlap words.
type Chunker struct {
	Size    int
	Overlap int
}

func New(cfg Config) *Chunker {
	cfg.applyDefaults()
	return &Chunker{Size: cfg.Size, Overlap: cfg.Overlap}
}

// Split tokenizes text on whitespace and emits windows of c.Size words
// advancing by c.Size-c.Overlap each step. Text at or under one window
// yields a single chunk. Empty or whitespace-only text yields none.
func (c *Chunker) Split(text string) []Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	if len(words) <= c.Size {
		return []Chunk{{Index: 0, Text: strings.Join(words, " ")}}
	}

	stride := c.Size - c.Overlap
	chunks := make([]Chunk, 0, (len(words)-c.Overlap+stride-1)/stride)
	for start := 0; start < len(words); start += stride {
		end := start + c.Size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  strings.Join(words[start:end], " "),
		})
		if end == len(words) {
			break
		}
	}
	return chunks
}
