package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/inferlab/ragengine/internal/documents"
	"github.com/inferlab/ragengine/pkg/postgres"
)

// Submission response messages, stable across resubmissions of the same URL.
const (
	MsgSubmitted  = "URL submitted for processing"
	MsgProcessing = "URL is currently being processed"
	MsgCompleted  = "URL already processed"
)

// DocumentStore is the slice of the document repository the service needs.
type DocumentStore interface {
	Create(ctx context.Context, doc *documents.Document) error
	GetByURL(ctx context.Context, url string) (*documents.Document, error)
	Reset(ctx context.Context, id string) (bool, error)
	MarkDispatchFailed(ctx context.Context, id, reason string) (bool, error)
}

// Queue publishes encoded jobs for the worker fleet.
type Queue interface {
	Publish(ctx context.Context, msg []byte) error
}

type ServiceLogger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Service handles URL submission. Submission is idempotent on the URL: a
// URL that is pending, processing or completed is never enqueued twice,
// and a failed URL is reset and retried.
type Service struct {
	store  DocumentStore
	queue  Queue
	logger ServiceLogger
}

func NewService(store DocumentStore, queue Queue, logger ServiceLogger) *Service {
	return &Service{store: store, queue: queue, logger: logger}
}

// Submit registers a URL for ingestion and returns the document plus a
// human-readable disposition message.
func (s *Service) Submit(ctx context.Context, url string) (*documents.Document, string, error) {
	existing, err := s.store.GetByURL(ctx, url)
	if err != nil && !errors.Is(err, documents.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to look up url: %w", err)
	}

	if existing != nil {
		return s.resubmit(ctx, existing)
	}

	doc := &documents.Document{URL: url, Status: documents.StatusPending}
	if err := s.store.Create(ctx, doc); err != nil {
		if errors.Is(err, postgres.ErrDuplicateKey) {
			// lost a submission race; defer to the winner's row
			if existing, err = s.store.GetByURL(ctx, url); err != nil {
				return nil, "", fmt.Errorf("failed to look up url after duplicate: %w", err)
			}
			return s.resubmit(ctx, existing)
		}
		return nil, "", fmt.Errorf("failed to register url: %w", err)
	}

	if err := s.enqueue(ctx, doc); err != nil {
		return nil, "", err
	}

	s.logger.Info("url submitted for ingestion", nil, map[string]interface{}{
		"doc_id": doc.ID,
		"url":    url,
	})
	return doc, MsgSubmitted, nil
}

func (s *Service) resubmit(ctx context.Context, doc *documents.Document) (*documents.Document, string, error) {
	switch doc.Status {
	case documents.StatusCompleted:
		return doc, MsgCompleted, nil

	case documents.StatusPending, documents.StatusProcessing:
		return doc, MsgProcessing, nil

	case documents.StatusFailed:
		reset, err := s.store.Reset(ctx, doc.ID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to reset document %s: %w", doc.ID, err)
		}
		if !reset {
			// someone else reset and enqueued it first
			return doc, MsgProcessing, nil
		}
		if err := s.enqueue(ctx, doc); err != nil {
			return nil, "", err
		}
		doc.Status = documents.StatusPending
		doc.ErrorMessage = ""

		s.logger.Info("failed url resubmitted for ingestion", nil, map[string]interface{}{
			"doc_id": doc.ID,
			"url":    doc.URL,
		})
		return doc, MsgSubmitted, nil

	default:
		return nil, "", fmt.Errorf("document %s has unknown status %q", doc.ID, doc.Status)
	}
}

func (s *Service) enqueue(ctx context.Context, doc *documents.Document) error {
	payload, err := Job{DocID: doc.ID, URL: doc.URL}.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := s.queue.Publish(ctx, payload); err != nil {
		// without a queue entry the document would sit in pending forever;
		// mark it failed so resubmission takes the reset-and-retry path
		if _, mErr := s.store.MarkDispatchFailed(ctx, doc.ID, "failed to enqueue ingestion job: "+err.Error()); mErr != nil {
			s.logger.Error("failed to record enqueue failure", mErr, map[string]interface{}{
				"doc_id": doc.ID,
			})
		}
		return fmt.Errorf("failed to enqueue job for %s: %w", doc.ID, err)
	}
	return nil
}
