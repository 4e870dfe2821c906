package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/polyglot-labs/interpreter/audio"
	"github.com/polyglot-labs/interpreter/core/protocol"
	"github.com/polyglot-labs/interpreter/dialogue"
	"github.com/polyglot-labs/interpreter/session"
)

type setObjectiveRequest struct {
	Objective      string `json:"objective"`
	TargetLanguage string `json:"target_language"`
	UserLanguage   string `json:"user_language"`
	Country        string `json:"country"`
}

type setObjectiveResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

type turnResponse struct {
	UserText  string             `json:"user_text,omitempty"`
	Kind      protocol.Kind      `json:"kind"`
	Recipient protocol.Recipient `json:"recipient"`
	Content   string             `json:"content"`
	Status    session.Status     `json:"status"`
	Summary   string             `json:"summary,omitempty"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type historyResponse struct {
	SessionID string          `json:"session_id"`
	Objective string          `json:"objective"`
	Status    session.Status  `json:"status"`
	History   []protocol.Turn `json:"history"`
}

type synthesizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSetObjective(w http.ResponseWriter, r *http.Request) {
	var req setObjectiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, err := s.orchestrator.Create(req.Objective, req.UserLanguage, req.TargetLanguage, req.Country)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, setObjectiveResponse{
		SessionID: sess.ID(),
		Message:   "objective and languages set successfully",
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Message) > s.cfg.MaxMessageLen {
		writeError(w, http.StatusBadRequest, "message too long")
		return
	}

	s.submitAndRespond(w, r, r.PathValue("session_id"), req.Message, "")
}

func (s *Server) handleProcessAudio(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		writeError(w, http.StatusNotImplemented, "audio processing not configured")
		return
	}

	sessionID := r.PathValue("session_id")
	sess, err := s.orchestrator.Session(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown session id")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing audio file")
		return
	}
	defer func() { _ = file.Close() }()

	wav, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxAudioBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio file")
		return
	}

	// Normalization and transcription happen before any session mutation:
	// a failure here is a request-level error with no session side effect.
	normalized, err := audio.Normalize(wav)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userText, err := s.transcriber.Transcribe(r.Context(), normalized, sess.UserLanguage())
	if err != nil {
		s.logger.Error("transcription failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusBadGateway, "transcription failed")
		return
	}

	s.submitAndRespond(w, r, sessionID, userText, userText)
}

// submitAndRespond runs one turn exchange and writes the shared turn
// response shape. The summary is attached only when this exchange reports a
// fulfilled session, per the submission contract.
func (s *Server) submitAndRespond(w http.ResponseWriter, r *http.Request, sessionID, message, userText string) {
	result, err := s.orchestrator.Submit(r.Context(), sessionID, message)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown session id")
			return
		}
		writeError(w, http.StatusInternalServerError, "submit failed")
		return
	}

	resp := turnResponse{
		UserText:  userText,
		Kind:      result.Turn.Kind,
		Recipient: result.Turn.Recipient(),
		Content:   result.Turn.Content,
		Status:    result.Status,
	}

	if result.Status == session.StatusFulfilled {
		summary, err := s.orchestrator.Summarize(r.Context(), sessionID)
		if err != nil {
			// The turn itself succeeded; a failed summary degrades the
			// response rather than the exchange.
			s.logger.Error("summary generation failed", "session_id", sessionID, "error", err)
		} else {
			resp.Summary = summary
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.orchestrator.Summarize(r.Context(), r.PathValue("session_id"))
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "unknown session id")
		case errors.Is(err, dialogue.ErrEmptyHistory):
			writeError(w, http.StatusBadRequest, "no conversation history available")
		default:
			writeError(w, http.StatusBadGateway, "summary generation failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, err := s.orchestrator.Session(r.PathValue("session_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown session id")
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{
		SessionID: sess.ID(),
		Objective: sess.Objective(),
		Status:    sess.Status(),
		History:   sess.History(),
	})
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	if s.speaker == nil {
		writeError(w, http.StatusNotImplemented, "speech synthesis not configured")
		return
	}

	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}

	data, err := s.speaker.Speak(r.Context(), req.Text, req.Language)
	if err != nil {
		s.logger.Error("speech synthesis failed", "error", err)
		writeError(w, http.StatusBadGateway, "speech synthesis failed")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
