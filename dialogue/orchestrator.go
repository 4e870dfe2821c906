// Package dialogue implements the orchestration loop that relays a
// conversation between the user and a third party ("the target") through a
// language model acting as translator and intermediary.
//
// Each Submit runs one turn exchange: serialize access to the session,
// append the human's turn if any, replay the full history to the completion
// service, decode the tagged reply, and evaluate whether the objective is
// fulfilled. The completion service is an untrusted text generator; a
// malformed or failed reply degrades to a synthetic caution turn so the
// session stays usable.
package dialogue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/polyglot-labs/interpreter/core/protocol"
	"github.com/polyglot-labs/interpreter/observability"
	"github.com/polyglot-labs/interpreter/session"
)

// SystemErrorNotice is the fixed content of the synthetic CAUTION turn
// appended when the completion call fails or its reply cannot be decoded.
// The underlying error goes to the observer, never into the conversation.
const SystemErrorNotice = "system error: invalid response format"

// Completer is the completion collaborator: one stateless call over the full
// message history, returning a single reply. Implementations must pin
// temperature to zero; summary stability depends on it.
type Completer interface {
	Complete(ctx context.Context, messages []protocol.Message) (string, error)
}

// Result holds the outcome of one Submit exchange.
type Result struct {
	Turn   protocol.Turn
	Status session.Status
}

// Option configures an Orchestrator after construction.
type Option func(*Orchestrator)

// WithObserver overrides the default no-op observer.
func WithObserver(o observability.Observer) Option {
	return func(orc *Orchestrator) { orc.observer = o }
}

// Orchestrator drives turn exchanges over sessions held in its store.
type Orchestrator struct {
	store     *session.Store
	completer Completer
	observer  observability.Observer
	timeout   time.Duration
}

// New creates an Orchestrator over the given store and completion
// collaborator. A nil cfg uses defaults.
func New(store *session.Store, completer Completer, cfg *Config, opts ...Option) *Orchestrator {
	merged := DefaultConfig()
	if cfg != nil {
		merged.Merge(cfg)
	}

	orc := &Orchestrator{
		store:     store,
		completer: completer,
		observer:  observability.NoopObserver{},
		timeout:   time.Duration(merged.TimeoutSeconds) * time.Second,
	}
	for _, opt := range opts {
		opt(orc)
	}
	return orc
}

// Create registers a new session whose SYSTEM turn carries the protocol
// instructions for the given objective and locales. Country may be empty;
// the other parameters are required.
func (o *Orchestrator) Create(objective, userLanguage, targetLanguage, country string) (*session.Session, error) {
	objective = strings.TrimSpace(objective)
	if objective == "" {
		return nil, errors.New("dialogue: objective must not be empty")
	}
	if strings.TrimSpace(userLanguage) == "" || strings.TrimSpace(targetLanguage) == "" {
		return nil, errors.New("dialogue: user and target languages must not be empty")
	}

	s := o.store.Create(session.Params{
		Objective:      objective,
		UserLanguage:   userLanguage,
		TargetLanguage: targetLanguage,
		Country:        country,
		SystemPrompt:   buildSystemPrompt(objective, userLanguage, targetLanguage, country),
	})

	o.observer.OnEvent(context.Background(), observability.Event{
		Type:      EventSessionCreate,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "dialogue.Create",
		Data: map[string]any{
			"session_id":      s.ID(),
			"user_language":   userLanguage,
			"target_language": targetLanguage,
		},
	})

	return s, nil
}

// Session returns the session for id. Surfaces use it for history replay
// and locale lookups; all mutation goes through Submit.
func (o *Orchestrator) Session(id string) (*session.Session, error) {
	return o.store.Get(id)
}

// Submit runs one turn exchange on the named session. An empty inbound is
// valid and appends nothing: it is used once per session, right after
// creation, to let the model open the exchange from the stored objective.
// The SYSTEM turn already carries the objective, so the opening move must
// not restate it as a user message.
//
// The session's dialogue slot is held for the whole exchange, so concurrent
// submits on one session serialize in arrival order and each completion
// call sees exactly the history available up to its own turn. Completion
// failures and malformed replies never surface as errors here; they append
// the synthetic CAUTION turn instead. The only error returned is
// session.ErrNotFound.
func (o *Orchestrator) Submit(ctx context.Context, sessionID, inbound string) (*Result, error) {
	s, err := o.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	s.Acquire()
	defer s.Release()

	o.observer.OnEvent(ctx, observability.Event{
		Type:      EventSubmitStart,
		Level:     observability.LevelDebug,
		Timestamp: time.Now(),
		Source:    "dialogue.Submit",
		Data: map[string]any{
			"session_id":     sessionID,
			"inbound_length": len(inbound),
		},
	})

	if inbound = strings.TrimSpace(inbound); inbound != "" {
		s.Append(protocol.HumanTurn(inbound))
	}

	turn := o.exchange(ctx, sessionID, s)
	turn = s.Append(turn)

	if Fulfills(turn) {
		s.Fulfill()
		o.observer.OnEvent(ctx, observability.Event{
			Type:      EventFulfilled,
			Level:     observability.LevelInfo,
			Timestamp: time.Now(),
			Source:    "dialogue.Submit",
			Data:      map[string]any{"session_id": sessionID},
		})
	}

	status := s.Status()

	o.observer.OnEvent(ctx, observability.Event{
		Type:      EventSubmitComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "dialogue.Submit",
		Data: map[string]any{
			"session_id": sessionID,
			"kind":       turn.Kind,
			"status":     status,
		},
	})

	return &Result{Turn: turn, Status: status}, nil
}

// exchange performs the single completion call for this turn and decodes
// the reply, falling back to the synthetic caution turn on any failure.
func (o *Orchestrator) exchange(ctx context.Context, sessionID string, s *session.Session) protocol.Turn {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	raw, err := o.completer.Complete(callCtx, protocol.Encode(s.History()))
	if err != nil {
		o.observer.OnEvent(ctx, observability.Event{
			Type:      EventCompletionError,
			Level:     observability.LevelError,
			Timestamp: time.Now(),
			Source:    "dialogue.Submit",
			Data: map[string]any{
				"session_id": sessionID,
				"error":      err.Error(),
			},
		})
		return protocol.CautionTurn(SystemErrorNotice)
	}

	turn, err := protocol.DecodeReply(raw)
	if err != nil {
		o.observer.OnEvent(ctx, observability.Event{
			Type:      EventDecodeError,
			Level:     observability.LevelWarning,
			Timestamp: time.Now(),
			Source:    "dialogue.Submit",
			Data: map[string]any{
				"session_id": sessionID,
				"error":      err.Error(),
			},
		})
		return protocol.CautionTurn(SystemErrorNotice)
	}

	return turn
}
