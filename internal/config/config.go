// Package config assembles the configuration for both binaries from a YAML
// file plus environment overrides. A .env file is honored for local runs;
// in deployed environments the variables come from the orchestrator.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/inferlab/ragengine/internal/httpapi"
	"github.com/inferlab/ragengine/internal/ingest"
	"github.com/inferlab/ragengine/pkg/blobstore"
	"github.com/inferlab/ragengine/pkg/chunker"
	"github.com/inferlab/ragengine/pkg/embedding"
	"github.com/inferlab/ragengine/pkg/events"
	"github.com/inferlab/ragengine/pkg/fetcher"
	"github.com/inferlab/ragengine/pkg/generation"
	"github.com/inferlab/ragengine/pkg/logger"
	"github.com/inferlab/ragengine/pkg/metrics"
	"github.com/inferlab/ragengine/pkg/postgres"
	"github.com/inferlab/ragengine/pkg/qdrant"
	"github.com/inferlab/ragengine/pkg/rabbit"
	"github.com/inferlab/ragengine/pkg/tracer"
)

// AppConfig is the root configuration for the api and worker binaries.
type AppConfig struct {
	Logger     logger.Config     `yaml:"logger"`
	Metrics    metrics.Config    `yaml:"metrics"`
	Tracer     tracer.Config     `yaml:"tracer"`
	Postgres   postgres.Config   `yaml:"postgres"`
	Rabbit     rabbit.Config     `yaml:"rabbit"`
	Qdrant     qdrant.Config     `yaml:"qdrant"`
	Embedding  embedding.Config  `yaml:"embedding"`
	Generation generation.Config `yaml:"generation"`
	Fetcher    fetcher.Config    `yaml:"fetcher"`
	Chunker    chunker.Config    `yaml:"chunker"`
	Blobstore  blobstore.Config  `yaml:"blobstore"`
	Events     events.Config     `yaml:"events"`
	HTTP       httpapi.Config    `yaml:"http"`
	Ingest     ingest.Config     `yaml:"ingest"`
}

// Load reads the config file at path (or ./config.yaml when empty), then
// applies environment overrides. A missing file is not an error; everything
// can come from the environment.
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	if path == "" {
		path = "config.yaml"
	}

	cfg := defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// environment-only configuration
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Generation.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation config: %w", err)
	}
	if err := cfg.Embedding.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding config: %w", err)
	}
	return cfg, nil
}

func defaults() *AppConfig {
	cfg := &AppConfig{}

	cfg.Logger.Level = logger.Info
	cfg.Metrics.Address = ":9090"

	cfg.Postgres.Connection.Host = "localhost"
	cfg.Postgres.Connection.Port = "5432"
	cfg.Postgres.Connection.SSLMode = "disable"

	cfg.Rabbit.Connection.Host = "localhost"
	cfg.Rabbit.Connection.Port = 5672
	cfg.Rabbit.Channel.ExchangeName = "ragengine"
	cfg.Rabbit.Channel.ExchangeType = "direct"
	cfg.Rabbit.Channel.RoutingKey = "ingest"
	cfg.Rabbit.Channel.QueueName = "ingest-jobs"
	cfg.Rabbit.Channel.PrefetchCount = 8
	cfg.Rabbit.Channel.ContentType = "application/json"
	cfg.Rabbit.DeadLetter.ExchangeName = "ragengine-dlx"
	cfg.Rabbit.DeadLetter.QueueName = "ingest-jobs-dead"
	cfg.Rabbit.DeadLetter.RoutingKey = "ingest-dead"

	cfg.Qdrant.Host = "localhost"
	cfg.Qdrant.Port = 6334
	cfg.Qdrant.Collection = "web_documents"
	cfg.Qdrant.VectorSize = 768

	cfg.Embedding.Endpoint = "http://localhost:11434/v1/embeddings"
	cfg.Embedding.Model = "nomic-embed-text"
	cfg.Embedding.Dimension = 768
	cfg.Generation.Provider = generation.ProviderOllama

	return cfg
}

// applyEnvOverrides lets deployment environments override the file settings
// without mounting one. Only connection endpoints and secrets are mapped;
// tuning knobs stay in the file.
func applyEnvOverrides(cfg *AppConfig) {
	setString(&cfg.Logger.Level, "LOG_LEVEL")

	setString(&cfg.Postgres.Connection.Host, "POSTGRES_HOST")
	setString(&cfg.Postgres.Connection.Port, "POSTGRES_PORT")
	setString(&cfg.Postgres.Connection.User, "POSTGRES_USER")
	setString(&cfg.Postgres.Connection.Password, "POSTGRES_PASSWORD")
	setString(&cfg.Postgres.Connection.DbName, "POSTGRES_DB")
	setString(&cfg.Postgres.Connection.SSLMode, "POSTGRES_SSLMODE")

	setString(&cfg.Rabbit.Connection.Host, "RABBIT_HOST")
	setUint(&cfg.Rabbit.Connection.Port, "RABBIT_PORT")
	setString(&cfg.Rabbit.Connection.User, "RABBIT_USER")
	setString(&cfg.Rabbit.Connection.Password, "RABBIT_PASSWORD")

	setString(&cfg.Qdrant.Host, "QDRANT_HOST")
	setInt(&cfg.Qdrant.Port, "QDRANT_PORT")
	setString(&cfg.Qdrant.APIKey, "QDRANT_API_KEY")
	setString(&cfg.Qdrant.Collection, "QDRANT_COLLECTION")

	setString(&cfg.Embedding.Endpoint, "EMBEDDING_ENDPOINT")
	setString(&cfg.Embedding.APIKey, "EMBEDDING_API_KEY")
	setString(&cfg.Embedding.Model, "EMBEDDING_MODEL")
	setInt(&cfg.Embedding.Dimension, "EMBEDDING_DIMENSION")

	setString(&cfg.Generation.Provider, "GENERATION_PROVIDER")
	setString(&cfg.Generation.Model, "GENERATION_MODEL")
	setString(&cfg.Generation.OllamaBaseURL, "GENERATION_OLLAMA_BASE_URL")
	setString(&cfg.Generation.OpenAIAPIKey, "GENERATION_OPENAI_API_KEY")

	setString(&cfg.Blobstore.Endpoint, "BLOBSTORE_ENDPOINT")
	setString(&cfg.Blobstore.AccessKey, "BLOBSTORE_ACCESS_KEY")
	setString(&cfg.Blobstore.SecretKey, "BLOBSTORE_SECRET_KEY")

	setString(&cfg.HTTP.Address, "HTTP_ADDRESS")
	setString(&cfg.Metrics.Address, "METRICS_ADDRESS")
	setInt(&cfg.Ingest.Concurrency, "INGEST_CONCURRENCY")

	if cfg.Embedding.Dimension > 0 {
		// the index must match the embedder; one knob rules both
		cfg.Qdrant.VectorSize = uint64(cfg.Embedding.Dimension)
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setUint(dst *uint, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			*dst = uint(n)
		}
	}
}
