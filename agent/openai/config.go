package openai

const (
	defaultBaseURL         = "https://api.openai.com/v1"
	defaultModel           = "gpt-4o-mini"
	defaultTranscribeModel = "whisper-1"
	defaultSpeechModel     = "tts-1"
	defaultVoice           = "alloy"
	defaultTimeoutSeconds  = 60
)

// Config holds client settings for an OpenAI-compatible API.
type Config struct {
	BaseURL         string `json:"base_url,omitempty"`
	APIKey          string `json:"api_key,omitempty"`
	Model           string `json:"model,omitempty"`
	TranscribeModel string `json:"transcribe_model,omitempty"`
	SpeechModel     string `json:"speech_model,omitempty"`
	Voice           string `json:"voice,omitempty"`
	TimeoutSeconds  int    `json:"timeout_seconds,omitempty"`
}

// DefaultConfig returns a Config with the stock OpenAI endpoint and models.
func DefaultConfig() Config {
	return Config{
		BaseURL:         defaultBaseURL,
		Model:           defaultModel,
		TranscribeModel: defaultTranscribeModel,
		SpeechModel:     defaultSpeechModel,
		Voice:           defaultVoice,
		TimeoutSeconds:  defaultTimeoutSeconds,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.TranscribeModel != "" {
		c.TranscribeModel = source.TranscribeModel
	}
	if source.SpeechModel != "" {
		c.SpeechModel = source.SpeechModel
	}
	if source.Voice != "" {
		c.Voice = source.Voice
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
}
