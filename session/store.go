package session

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound reports a lookup for a session id the store has never issued.
var ErrNotFound = errors.New("session: not found")

// Store is an in-memory session registry keyed by session id. The map has
// its own lock, independent of per-session locking: a Get on one session
// never waits on another session's in-flight dialogue. Sessions are never
// evicted by the core; cleanup belongs to the hosting service.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a new session built from p and returns it.
func (st *Store) Create(p Params) *Session {
	s := New(p)

	st.mu.Lock()
	st.sessions[s.ID()] = s
	st.mu.Unlock()

	return s
}

// Get returns the session for id, or an error wrapping ErrNotFound.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Len reports how many sessions the store holds.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
