package fetcher

import "time"

type Config struct {
	// Timeout bounds the whole HTTP request. Default 30s.
	Timeout time.Duration `yaml:"timeout" envconfig:"FETCHER_TIMEOUT"`

	// RateLimit is the maximum number of outbound requests per second
	// across all jobs on this worker. Default 2.
	RateLimit float64 `yaml:"rate_limit" envconfig:"FETCHER_RATE_LIMIT"`

	// MinContentLength rejects pages whose readable text is shorter than
	// this many characters. Default 100.
	MinContentLength int `yaml:"min_content_length" envconfig:"FETCHER_MIN_CONTENT_LENGTH"`

	// UserAgent sent with every request.
	UserAgent string `yaml:"user_agent" envconfig:"FETCHER_USER_AGENT"`

	// MaxBodyBytes caps how much of a response body is read. Default 10 MiB.
	MaxBodyBytes int64 `yaml:"max_body_bytes" envconfig:"FETCHER_MAX_BODY_BYTES"`
}

func (c *Config) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RateLimit == 0 {
		c.RateLimit = 2
	}
	if c.MinContentLength == 0 {
		c.MinContentLength = 100
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; ragengine/1.0)"
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = 10 << 20
	}
}
