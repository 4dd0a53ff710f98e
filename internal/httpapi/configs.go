package httpapi

import "time"

type Config struct {
	// Address the API listens on. Default ":8000".
	Address string `yaml:"address" envconfig:"HTTP_ADDRESS"`

	// Version reported by the health endpoint.
	Version string `yaml:"version" envconfig:"HTTP_VERSION"`

	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"HTTP_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"HTTP_WRITE_TIMEOUT"`
}

func (c *Config) applyDefaults() {
	if c.Address == "" {
		c.Address = ":8000"
	}
	if c.Version == "" {
		c.Version = "1.0.0"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		// query generation can be slow on local models
		c.WriteTimeout = 180 * time.Second
	}
}
