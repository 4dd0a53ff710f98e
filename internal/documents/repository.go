package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/inferlab/ragengine/pkg/postgres"
)

// ErrNotFound is returned when no document matches the requested id or URL.
var ErrNotFound = errors.New("document not found")

// db is the slice of the postgres client the repository needs. Narrowed so
// tests can swap in an in-memory implementation.
type db interface {
	Create(ctx context.Context, value interface{}) error
	First(ctx context.Context, dest interface{}, conditions ...interface{}) error
	FindPage(ctx context.Context, dest interface{}, limit, offset int, orderBy, condition string, args ...interface{}) error
	Count(ctx context.Context, model interface{}, count *int64, condition string, args ...interface{}) error
	UpdateWhere(ctx context.Context, model interface{}, attrs map[string]interface{}, condition string, args ...interface{}) (int64, error)
}

// Repository persists documents and enforces the status transitions. All
// transitions are compare-and-set on the current status, so concurrent
// workers racing on the same document resolve to exactly one winner.
type Repository struct {
	db db
}

func NewRepository(pg *postgres.Postgres) *Repository {
	return &Repository{db: pg}
}

// Create inserts a new pending document. Returns postgres.ErrDuplicateKey
// when the URL is already registered.
func (r *Repository) Create(ctx context.Context, doc *Document) error {
	if err := r.db.Create(ctx, doc); err != nil {
		return postgres.TranslateError(err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Document, error) {
	var doc Document
	if err := r.db.First(ctx, &doc, "id = ?", id); err != nil {
		if errors.Is(postgres.TranslateError(err), postgres.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *Repository) GetByURL(ctx context.Context, url string) (*Document, error) {
	var doc Document
	if err := r.db.First(ctx, &doc, "url = ?", url); err != nil {
		if errors.Is(postgres.TranslateError(err), postgres.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// List returns a page of documents, newest first, optionally filtered by
// status, along with the total count for the filter.
func (r *Repository) List(ctx context.Context, status string, limit, offset int) ([]Document, int64, error) {
	condition := ""
	var args []interface{}
	if status != "" {
		condition = "status = ?"
		args = append(args, status)
	}

	var total int64
	if err := r.db.Count(ctx, &Document{}, &total, condition, args...); err != nil {
		return nil, 0, err
	}

	docs := []Document{}
	if err := r.db.FindPage(ctx, &docs, limit, offset, "created_at DESC", condition, args...); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// MarkProcessing claims a pending document. Returns false without error when
// another worker already claimed it.
func (r *Repository) MarkProcessing(ctx context.Context, id string) (bool, error) {
	return r.transition(ctx, id, StatusPending, map[string]interface{}{
		"status":        StatusProcessing,
		"error_message": "",
	})
}

// MarkCompleted finalizes a processing document with its extracted title and
// the number of chunks indexed.
func (r *Repository) MarkCompleted(ctx context.Context, id, title string, chunkCount int) (bool, error) {
	return r.transition(ctx, id, StatusProcessing, map[string]interface{}{
		"status":      StatusCompleted,
		"title":       title,
		"chunk_count": chunkCount,
	})
}

// MarkFailed records the failure reason on a processing document.
func (r *Repository) MarkFailed(ctx context.Context, id, reason string) (bool, error) {
	return r.transition(ctx, id, StatusProcessing, map[string]interface{}{
		"status":        StatusFailed,
		"error_message": reason,
	})
}

// MarkDispatchFailed records that a document's ingestion job never reached
// the queue. The document moves from pending straight to failed, so a later
// resubmission takes the reset path and retries the enqueue.
func (r *Repository) MarkDispatchFailed(ctx context.Context, id, reason string) (bool, error) {
	return r.transition(ctx, id, StatusPending, map[string]interface{}{
		"status":        StatusFailed,
		"error_message": reason,
	})
}

// Reset returns a failed document to pending so it can be reprocessed.
func (r *Repository) Reset(ctx context.Context, id string) (bool, error) {
	return r.transition(ctx, id, StatusFailed, map[string]interface{}{
		"status":        StatusPending,
		"error_message": "",
		"chunk_count":   0,
	})
}

func (r *Repository) transition(ctx context.Context, id, fromStatus string, attrs map[string]interface{}) (bool, error) {
	affected, err := r.db.UpdateWhere(ctx, &Document{}, attrs, "id = ? AND status = ?", id, fromStatus)
	if err != nil {
		return false, fmt.Errorf("failed to transition document %s from %s: %w", id, fromStatus, err)
	}
	return affected == 1, nil
}
