package qdrant

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
)

// ChunkRecord is one embedded text chunk bound for the vector index.
type ChunkRecord struct {
	DocID      string
	URL        string
	Title      string
	Text       string
	ChunkIndex int
	Vector     []float32
}

// ScoredChunk is one search hit with its payload decoded.
type ScoredChunk struct {
	ID         string
	Score      float32
	DocID      string
	URL        string
	Title      string
	Text       string
	ChunkIndex int
}

// ChunkStore provides chunk-level operations (ensure, upsert, search, delete)
// backed by the Qdrant API.
type ChunkStore struct {
	client *Client
}

// NewChunkStore initializes the chunk store, creating the target collection
// if it does not exist yet.
func NewChunkStore(client *Client) (*ChunkStore, error) {
	store := &ChunkStore{client: client}

	if err := store.EnsureCollection(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	client.logger.Info("chunk store ready", nil, map[string]interface{}{
		"collection": client.cfg.Collection,
	})
	return store, nil
}

// PointID derives the Qdrant point id for a chunk deterministically from its
// document id and position. A redelivered or retried job therefore overwrites
// its own points instead of duplicating them.
func PointID(docID string, chunkIndex int) string {
	ns, err := uuid.Parse(docID)
	if err != nil {
		ns = uuid.NewSHA1(uuid.NameSpaceURL, []byte(docID))
	}
	return uuid.NewSHA1(ns, []byte(fmt.Sprintf("chunk-%d", chunkIndex))).String()
}

// EnsureCollection checks if the configured collection exists, and creates it
// (cosine distance, fixed vector size) if missing. Safe to call repeatedly.
func (s *ChunkStore) EnsureCollection(ctx context.Context) error {
	name := s.client.cfg.Collection
	if name == "" {
		return fmt.Errorf("collection name cannot be empty")
	}

	collections, err := s.client.api.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if slices.Contains(collections, name) {
		return nil
	}

	s.client.logger.Info("creating qdrant collection", nil, map[string]interface{}{
		"collection":  name,
		"vector_size": s.client.cfg.VectorSize,
	})

	req := &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.client.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	}

	if err := s.client.api.CreateCollection(ctx, req); err != nil {
		return fmt.Errorf("failed to create collection %q: %w", name, err)
	}
	return nil
}

// UpsertChunks writes a batch of chunks with Wait=true, so the points are
// durably indexed before the caller records the document as completed.
func (s *ChunkStore) UpsertChunks(ctx context.Context, chunks []ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, ch := range chunks {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(PointID(ch.DocID, ch.ChunkIndex)),
			Vectors: qdrant.NewVectors(ch.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"text":        ch.Text,
				"doc_id":      ch.DocID,
				"url":         ch.URL,
				"title":       ch.Title,
				"chunk_index": int64(ch.ChunkIndex),
			}),
		})
	}

	wait := true
	req := &qdrant.UpsertPoints{
		CollectionName: s.client.cfg.Collection,
		Points:         points,
		Wait:           &wait,
	}

	if _, err := s.client.api.Upsert(ctx, req); err != nil {
		return fmt.Errorf("upsert of %d chunks failed: %w", len(points), err)
	}

	s.client.logger.Debug("chunks upserted", nil, map[string]interface{}{
		"count":      len(points),
		"collection": s.client.cfg.Collection,
	})
	return nil
}

// Search performs a cosine similarity search and returns up to topK chunks in
// descending score order, payload decoded.
func (s *ChunkStore) Search(ctx context.Context, vector []float32, topK int) ([]ScoredChunk, error) {
	limit := uint64(topK)
	req := &qdrant.QueryPoints{
		CollectionName: s.client.cfg.Collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}

	resp, err := s.client.api.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]ScoredChunk, 0, len(resp))
	for _, r := range resp {
		var id string
		switch v := r.Id.PointIdOptions.(type) {
		case *qdrant.PointId_Num:
			id = fmt.Sprintf("%d", v.Num)
		case *qdrant.PointId_Uuid:
			id = v.Uuid
		default:
			return nil, fmt.Errorf("unexpected PointId type: %T", v)
		}

		results = append(results, ScoredChunk{
			ID:         id,
			Score:      r.Score,
			DocID:      payloadString(r.Payload, "doc_id"),
			URL:        payloadString(r.Payload, "url"),
			Title:      payloadString(r.Payload, "title"),
			Text:       payloadString(r.Payload, "text"),
			ChunkIndex: int(payloadInt(r.Payload, "chunk_index")),
		})
	}

	return results, nil
}

// DeleteByDocument removes every chunk belonging to the given document.
// Called before re-ingesting a previously failed document so a shorter chunk
// sequence cannot leave stale points behind.
func (s *ChunkStore) DeleteByDocument(ctx context.Context, docID string) error {
	wait := true
	req := &qdrant.DeletePoints{
		CollectionName: s.client.cfg.Collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("doc_id", docID),
			},
		}),
		Wait: &wait,
	}

	if _, err := s.client.api.Delete(ctx, req); err != nil {
		return fmt.Errorf("delete of chunks for document %s failed: %w", docID, err)
	}
	return nil
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

func payloadInt(payload map[string]*qdrant.Value, key string) int64 {
	v, ok := payload[key]
	if !ok {
		return 0
	}
	return v.GetIntegerValue()
}
