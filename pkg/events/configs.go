package events

type Config struct {
	// Enabled turns status event publishing on. Off by default.
	Enabled bool `yaml:"enabled" envconfig:"EVENTS_ENABLED"`

	Brokers []string `yaml:"brokers" envconfig:"EVENTS_BROKERS"`
	Topic   string   `yaml:"topic" envconfig:"EVENTS_TOPIC"`
}
