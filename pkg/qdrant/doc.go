// Package qdrant adapts the Qdrant vector database for chunk storage and
// similarity search.
//
// Chunks live in a single collection with cosine distance and a fixed vector
// size matching the embedding model. Point ids are derived deterministically
// from (document id, chunk index), which makes the batch upsert idempotent:
// a retried or redelivered ingestion job overwrites its own points rather
// than inserting duplicates. Upserts run with Wait=true so a document is only
// marked completed after its chunks are durably indexed.
package qdrant
