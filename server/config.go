package server

const (
	defaultAddr          = ":8000"
	defaultMaxMessageLen = 4000
	defaultMaxAudioBytes = 16 << 20
)

// Config holds HTTP server settings.
type Config struct {
	Addr          string `json:"addr,omitempty"`
	MaxMessageLen int    `json:"max_message_len,omitempty"`
	MaxAudioBytes int64  `json:"max_audio_bytes,omitempty"`
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:          defaultAddr,
		MaxMessageLen: defaultMaxMessageLen,
		MaxAudioBytes: defaultMaxAudioBytes,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Addr != "" {
		c.Addr = source.Addr
	}
	if source.MaxMessageLen > 0 {
		c.MaxMessageLen = source.MaxMessageLen
	}
	if source.MaxAudioBytes > 0 {
		c.MaxAudioBytes = source.MaxAudioBytes
	}
}
