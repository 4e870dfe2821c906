// Package server exposes the dialogue core over HTTP. The endpoints mirror
// the hosted service's public surface: objective submission, text and audio
// turn submission, summary retrieval, history replay, and speech synthesis.
// No orchestration logic lives here; handlers validate input, compose core
// operations, and map the error taxonomy to status codes.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/polyglot-labs/interpreter/dialogue"
)

// Transcriber converts captured audio into plain text. Errors are surfaced
// to the caller as request-level failures; they occur before any session
// turn is attempted, so no session state is touched.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte, language string) (string, error)
}

// Speaker synthesizes speech for a text and language tag. Fire-and-forget
// from the core's perspective; the audio goes straight back to the caller.
type Speaker interface {
	Speak(ctx context.Context, text, language string) ([]byte, error)
}

// Option configures a Server after construction.
type Option func(*Server)

// WithTranscriber enables the audio submission endpoint.
func WithTranscriber(t Transcriber) Option {
	return func(s *Server) { s.transcriber = t }
}

// WithSpeaker enables the speech synthesis endpoint.
func WithSpeaker(sp Speaker) Option {
	return func(s *Server) { s.speaker = sp }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// Server serves the dialogue core over HTTP.
type Server struct {
	orchestrator *dialogue.Orchestrator
	transcriber  Transcriber
	speaker      Speaker
	logger       *slog.Logger
	cfg          Config
}

// New creates a Server over the given orchestrator. A nil cfg uses
// defaults. Audio and speech endpoints answer 501 until their collaborators
// are provided via options.
func New(orchestrator *dialogue.Orchestrator, cfg *Config, opts ...Option) *Server {
	merged := DefaultConfig()
	if cfg != nil {
		merged.Merge(cfg)
	}

	s := &Server{
		orchestrator: orchestrator,
		logger:       slog.Default(),
		cfg:          merged,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the route table as an http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /set_objective", s.handleSetObjective)
	mux.HandleFunc("POST /send_message/{session_id}", s.handleSendMessage)
	mux.HandleFunc("POST /process_audio/{session_id}", s.handleProcessAudio)
	mux.HandleFunc("GET /summary/{session_id}", s.handleSummary)
	mux.HandleFunc("GET /history/{session_id}", s.handleHistory)
	mux.HandleFunc("POST /synthesize_text", s.handleSynthesize)
	return mux
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("server listening", "addr", s.cfg.Addr)

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
