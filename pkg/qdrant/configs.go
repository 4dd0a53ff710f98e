package qdrant

type Config struct {
	Host   string `yaml:"host" envconfig:"QDRANT_HOST"`
	Port   int    `yaml:"port" envconfig:"QDRANT_PORT"`
	APIKey string `yaml:"api_key" envconfig:"QDRANT_API_KEY"`
	UseTLS bool   `yaml:"use_tls" envconfig:"QDRANT_USE_TLS"`

	// Collection holds the chunk points for all documents.
	Collection string `yaml:"collection" envconfig:"QDRANT_COLLECTION"`

	// VectorSize must match the dimensionality of the embedding model in use.
	// Vectors from a different model are not comparable, so changing the
	// model means re-ingesting into a fresh collection.
	VectorSize uint64 `yaml:"vector_size" envconfig:"QDRANT_VECTOR_SIZE"`
}
