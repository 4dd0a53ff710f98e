// Package blobstore archives raw fetched HTML in object storage, keyed by
// document id. The archive is optional: when disabled the store is a no-op,
// and archive failures never fail an ingestion.
package blobstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Store writes and reads raw page snapshots. A nil inner client (archive
// disabled) turns every call into a no-op.
type Store struct {
	client *minio.Client
	cfg    Config
	logger Logger
}

func NewStore(cfg Config, logger Logger) (*Store, error) {
	if !cfg.Enabled {
		logger.Info("raw page archive disabled", nil)
		return &Store{cfg: cfg, logger: logger}, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	store := &Store{client: client, cfg: cfg, logger: logger}
	if err := store.ensureBucket(context.Background()); err != nil {
		return nil, err
	}

	logger.Info("connected to object storage", nil, map[string]interface{}{
		"endpoint": cfg.Endpoint,
		"bucket":   cfg.Bucket,
	})
	return store, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.cfg.Bucket, err)
	}
	return nil
}

// Enabled reports whether snapshots are being archived.
func (s *Store) Enabled() bool {
	return s.client != nil
}

// PutSnapshot stores the raw HTML for a document. Key layout is
// <docID>.html at the bucket root.
func (s *Store) PutSnapshot(ctx context.Context, docID string, raw []byte) error {
	if !s.Enabled() {
		return nil
	}

	key := docID + ".html"
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key,
		bytes.NewReader(raw), int64(len(raw)),
		minio.PutObjectOptions{ContentType: "text/html"})
	if err != nil {
		return fmt.Errorf("failed to archive snapshot for %s: %w", docID, err)
	}
	return nil
}

// GetSnapshot returns the archived HTML for a document.
func (s *Store) GetSnapshot(ctx context.Context, docID string) ([]byte, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("raw page archive is disabled")
	}

	obj, err := s.client.GetObject(ctx, s.cfg.Bucket, docID+".html", minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot for %s: %w", docID, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(obj); err != nil {
		return nil, fmt.Errorf("failed to read snapshot for %s: %w", docID, err)
	}
	return buf.Bytes(), nil
}
