// Package openai is a focused client for an OpenAI-compatible API covering
// the three collaborators the dialogue core depends on: chat completion,
// audio transcription, and speech synthesis.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/polyglot-labs/interpreter/core/protocol"
)

// chatRequest is the minimal request shape for the Chat Completions
// endpoint. Temperature is always serialized: the dialogue core mandates
// zero for reproducible replies and stable summaries.
type chatRequest struct {
	Model       string             `json:"model"`
	Messages    []protocol.Message `json:"messages"`
	Temperature float64            `json:"temperature"`
}

// chatResponse is the minimal response shape returned by the Chat
// Completions endpoint.
type chatResponse struct {
	Choices []struct {
		Message protocol.Message `json:"message"`
	} `json:"choices"`
}

// transcriptionResponse is the minimal response shape of the audio
// transcription endpoint.
type transcriptionResponse struct {
	Text string `json:"text"`
}

// speechRequest is the request shape for the speech synthesis endpoint.
type speechRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

// HTTPStatusError captures non-2xx upstream responses with status-aware
// context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("openai: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client calls an OpenAI-compatible API.
type Client struct {
	cfg        Config
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client after config-driven initialization.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates a Client from configuration. A nil cfg uses defaults.
// The API key comes from cfg or, failing that, the OPENAI_API_KEY
// environment variable.
func NewClient(cfg *Config, opts ...Option) (*Client, error) {
	merged := DefaultConfig()
	if cfg != nil {
		merged.Merge(cfg)
	}

	apiKey := merged.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("openai: API key not configured")
	}

	c := &Client{
		cfg:    merged,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: time.Duration(merged.TimeoutSeconds) * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Complete performs one chat completion over the given message history and
// returns the single reply text.
func (c *Client) Complete(ctx context.Context, messages []protocol.Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("openai: messages must not be empty")
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	url := c.endpoint("/chat/completions")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	raw, err := c.do(req, url)
	if err != nil {
		return "", fmt.Errorf("openai: completion request failed: %w", err)
	}

	var payload chatResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if len(payload.Choices) == 0 {
		return "", errors.New("openai: no choices in response")
	}
	return payload.Choices[0].Message.Content, nil
}

// Transcribe sends WAV audio to the transcription endpoint and returns the
// recognized text. Language is a hint (BCP-47 or ISO-639-1); empty lets the
// model detect it.
func (c *Client) Transcribe(ctx context.Context, wav []byte, language string) (string, error) {
	if len(wav) == 0 {
		return "", errors.New("openai: audio data must not be empty")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("openai: build form: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return "", fmt.Errorf("openai: write audio part: %w", err)
	}
	fields := map[string]string{
		"model":       c.cfg.TranscribeModel,
		"temperature": "0",
	}
	if language != "" {
		fields["language"] = language
	}
	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return "", fmt.Errorf("openai: write form field %s: %w", k, err)
		}
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("openai: close form: %w", err)
	}

	url := c.endpoint("/audio/transcriptions")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("openai: create transcription request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	raw, err := c.do(req, url)
	if err != nil {
		return "", fmt.Errorf("openai: transcription request failed: %w", err)
	}

	var payload transcriptionResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("openai: decode transcription response: %w", err)
	}
	return strings.TrimSpace(payload.Text), nil
}

// Speak synthesizes speech for the given text and returns the audio bytes.
// The language tag accompanies the text for engines that need it; this
// endpoint infers the language from the input itself, so only the
// configured voice applies.
func (c *Client) Speak(ctx context.Context, text, language string) ([]byte, error) {
	_ = language

	if strings.TrimSpace(text) == "" {
		return nil, errors.New("openai: speech input must not be empty")
	}

	body, err := json.Marshal(speechRequest{
		Model: c.cfg.SpeechModel,
		Input: text,
		Voice: c.cfg.Voice,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: marshal speech request: %w", err)
	}

	url := c.endpoint("/audio/speech")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: create speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	raw, err := c.do(req, url)
	if err != nil {
		return nil, fmt.Errorf("openai: speech request failed: %w", err)
	}
	return raw, nil
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

func (c *Client) do(req *http.Request, url string) ([]byte, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
