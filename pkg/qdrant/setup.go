package qdrant

import (
	"context"
	"fmt"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// Logger defines the logging contract used by this package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Client wraps the official Qdrant Go client.
//
// It manages connection lifecycle and configuration; the chunk-level
// operations live on ChunkStore.
type Client struct {
	api    *qdrant.Client
	cfg    Config
	logger Logger
}

// NewQdrantClient constructs and initializes a new Qdrant client and verifies
// connectivity with a health check.
func NewQdrantClient(cfg Config, logger Logger) (*Client, error) {
	logger.Info("connecting to qdrant", nil, map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
	})

	api, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize qdrant client: %w", err)
	}

	c := &Client{
		api:    api,
		cfg:    cfg,
		logger: logger,
	}

	if err := c.healthCheck(); err != nil {
		return nil, fmt.Errorf("qdrant health check failed: %w", err)
	}

	logger.Info("qdrant client connected", nil, nil)
	return c, nil
}

func (c *Client) healthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := c.api.HealthCheck(ctx); err != nil {
		return err
	}
	return nil
}

// Close shuts down the underlying gRPC connection.
func (c *Client) Close() error {
	return c.api.Close()
}
