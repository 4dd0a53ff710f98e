package chunker

type Config struct {
	// Size is the window length in words. Default 500.
	Size int `yaml:"size" envconfig:"CHUNKER_SIZE"`

	// Overlap is how many words consecutive windows share. Must be
	// smaller than Size. Default 50.
	Overlap int `yaml:"overlap" envconfig:"CHUNKER_OVERLAP"`
}

func (c *Config) applyDefaults() {
	if c.Size <= 0 {
		c.Size = DefaultChunkSize
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		c.Overlap = DefaultOverlap
		if c.Overlap >= c.Size {
			c.Overlap = c.Size / 10
		}
	}
}
