package ingest

type Config struct {
	// Concurrency is how many pipeline goroutines drain the queue. Default 4.
	Concurrency int `yaml:"concurrency" envconfig:"INGEST_CONCURRENCY"`
}
