package refresh

import "time"

// Config controls the refresh orchestrator and its background worker.
type Config struct {
	// TopN entries rendered into the summary artifact.
	TopN int
	// Interval enables the background worker when > 0.
	Interval time.Duration
}

func DefaultConfig() Config {
	return Config{
		TopN: 5,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.TopN <= 0 {
		c.TopN = defaults.TopN
	}
	return c
}
