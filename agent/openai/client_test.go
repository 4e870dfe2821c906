package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyglot-labs/interpreter/agent/openai"
	"github.com/polyglot-labs/interpreter/core/protocol"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *openai.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := openai.NewClient(&openai.Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := openai.NewClient(&openai.Config{})
	assert.Error(t, err)

	_, err = openai.NewClient(&openai.Config{APIKey: "k"})
	assert.NoError(t, err)
}

func TestComplete(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"[TARGET] 你好"}}]}`))
	})

	reply, err := client.Complete(context.Background(), []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, "rules"),
		protocol.NewMessage(protocol.RoleUser, "hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "[TARGET] 你好", reply)

	// Temperature is pinned to zero on the wire; summary stability depends
	// on it.
	temp, ok := gotBody["temperature"]
	require.True(t, ok, "temperature must always be serialized")
	assert.Equal(t, float64(0), temp)

	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestComplete_EmptyMessages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.Complete(context.Background(), nil)
	assert.Error(t, err)
}

func TestComplete_HTTPStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), []protocol.Message{
		protocol.NewMessage(protocol.RoleUser, "hello"),
	})
	require.Error(t, err)

	var statusErr *openai.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}

func TestComplete_NoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), []protocol.Message{
		protocol.NewMessage(protocol.RoleUser, "hello"),
	})
	assert.Error(t, err)
}

func TestTranscribe(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("fake-wav"), data)

		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "en", r.FormValue("language"))
		assert.Equal(t, "0", r.FormValue("temperature"))

		_, _ = w.Write([]byte(`{"text":"  take me to the station  "}`))
	})

	text, err := client.Transcribe(context.Background(), []byte("fake-wav"), "en")
	require.NoError(t, err)
	assert.Equal(t, "take me to the station", text)
}

func TestTranscribe_EmptyAudio(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.Transcribe(context.Background(), nil, "en")
	assert.Error(t, err)
}

func TestSpeak(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tts-1", req["model"])
		assert.Equal(t, "alloy", req["voice"])
		assert.Equal(t, "你好", req["input"])

		_, _ = w.Write([]byte("mp3-bytes"))
	})

	data, err := client.Speak(context.Background(), "你好", "zh")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), data)
}

func TestSpeak_EmptyText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.Speak(context.Background(), "  ", "en")
	assert.Error(t, err)
}
