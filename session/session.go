// Package session holds in-memory conversation sessions and the store that
// owns them.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polyglot-labs/interpreter/core/protocol"
)

// Status describes where a session is in its lifecycle.
type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusFulfilled Status = "fulfilled"
	// StatusFailed is reserved for unrecoverable session errors. No code
	// path drives it today; upstream failures degrade to CAUTION turns and
	// the session stays ongoing.
	StatusFailed Status = "failed"
)

// Params carries the immutable creation inputs for a session. Country
// informs cultural-sensitivity behavior in the system prompt, not
// translation.
type Params struct {
	Objective      string
	UserLanguage   string
	TargetLanguage string
	Country        string
	SystemPrompt   string
}

// Session is one conversation pursued toward a single objective. Identity
// and locale parameters are immutable after creation; history is
// append-only and always starts with the SYSTEM turn.
//
// Two locks guard a session. dialMu serializes dialogue-producing
// operations and is held across the outbound completion call, so
// overlapping submits on one session cannot interleave or double-call the
// model. mu guards the data and is never held during network I/O, so
// history reads do not wait on an in-flight call.
type Session struct {
	id             string
	objective      string
	userLanguage   string
	targetLanguage string
	country        string

	dialMu sync.Mutex

	mu      sync.RWMutex
	status  Status
	history []protocol.Turn
}

// New creates a Session with a fresh UUIDv7 identifier, seeded with the
// SYSTEM turn from p.SystemPrompt.
func New(p Params) *Session {
	return &Session{
		id:             uuid.Must(uuid.NewV7()).String(),
		objective:      p.Objective,
		userLanguage:   p.UserLanguage,
		targetLanguage: p.TargetLanguage,
		country:        p.Country,
		status:         StatusOngoing,
		history: []protocol.Turn{{
			Kind:      protocol.KindSystem,
			Origin:    protocol.OriginHuman,
			Content:   p.SystemPrompt,
			Timestamp: time.Now(),
		}},
	}
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// Objective returns the free-text goal set at creation.
func (s *Session) Objective() string { return s.objective }

// UserLanguage returns the language the user is addressed in.
func (s *Session) UserLanguage() string { return s.userLanguage }

// TargetLanguage returns the language the target is addressed in.
func (s *Session) TargetLanguage() string { return s.targetLanguage }

// Country returns the cultural-context locale set at creation.
func (s *Session) Country() string { return s.country }

// Acquire claims the session's dialogue slot, blocking until it is free.
// Exactly one dialogue-producing operation may hold the slot at a time;
// callers must Release once their turn exchange is complete.
func (s *Session) Acquire() { s.dialMu.Lock() }

// Release frees the dialogue slot claimed by Acquire.
func (s *Session) Release() { s.dialMu.Unlock() }

// Status returns the current lifecycle status.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Fulfill transitions the session from ongoing to fulfilled. The transition
// is terminal and one-way: calling Fulfill on a session that already left
// the ongoing state is a no-op.
func (s *Session) Fulfill() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusOngoing {
		s.status = StatusFulfilled
	}
}

// Append adds a turn to history, stamping it with a monotonically
// non-decreasing timestamp, and returns the turn as stored. Only the
// creation path may write a SYSTEM turn; every Turn constructor available to
// callers and every decodable reply produces a non-SYSTEM kind.
func (s *Session) Append(t protocol.Turn) protocol.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if last := s.history[len(s.history)-1].Timestamp; now.Before(last) {
		now = last
	}
	t.Timestamp = now

	s.history = append(s.history, t)
	return t
}

// History returns a defensive copy of the conversation history.
func (s *Session) History() []protocol.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]protocol.Turn, len(s.history))
	copy(copied, s.history)
	return copied
}

// Last returns the most recently appended turn.
func (s *Session) Last() protocol.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history[len(s.history)-1]
}

// Len reports the number of turns in history, the SYSTEM turn included.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}
