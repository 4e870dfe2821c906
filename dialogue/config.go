package dialogue

const defaultTimeoutSeconds = 30

// Config holds orchestrator tuning.
type Config struct {
	// TimeoutSeconds bounds each outbound completion call. A call that
	// exceeds it resolves through the caution fallback and releases the
	// session's dialogue slot; the slot is never held indefinitely.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// DefaultConfig returns the default orchestrator configuration.
func DefaultConfig() Config {
	return Config{TimeoutSeconds: defaultTimeoutSeconds}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
}
