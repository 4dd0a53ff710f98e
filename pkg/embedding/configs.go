package embedding

import "fmt"

type Config struct {
	// Endpoint is an OpenAI-compatible /embeddings URL.
	Endpoint string `yaml:"endpoint" envconfig:"EMBEDDING_ENDPOINT"`

	// APIKey is sent as a bearer token when non-empty.
	APIKey string `yaml:"api_key" envconfig:"EMBEDDING_API_KEY"`

	// Model is the embedding model name requested from the service.
	Model string `yaml:"model" envconfig:"EMBEDDING_MODEL"`

	// Dimension is the expected vector size (e.g. 384 for MiniLM-class
	// models). Must match the vector store's collection configuration.
	Dimension int `yaml:"dimension" envconfig:"EMBEDDING_DIMENSION"`

	// HTTPTimeoutS bounds each embedding call, in seconds. Default 30.
	HTTPTimeoutS int `yaml:"http_timeout_seconds" envconfig:"EMBEDDING_HTTP_TIMEOUT_SECONDS"`
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("embedding endpoint is required")
	}
	if c.Model == "" {
		return fmt.Errorf("embedding model is required")
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive")
	}
	if c.HTTPTimeoutS <= 0 {
		c.HTTPTimeoutS = 30
	}
	return nil
}
