package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/polyglot-labs/interpreter/core/protocol"
	"github.com/polyglot-labs/interpreter/observability"
)

// ErrEmptyHistory is returned by Summarize when the session has no turns
// beyond the SYSTEM prompt to summarize.
var ErrEmptyHistory = errors.New("dialogue: no conversation to summarize")

const summaryInstruction = "You summarize conversations. Produce a concise summary of the " +
	"transcript you are given, focusing on progress toward the stated objective " +
	"and any unresolved items."

// Summarize runs a second, independent completion call over the session's
// full history rendered as a plain transcript. It may be called any time at
// least one turn exists beyond the SYSTEM prompt; surfaces call it after
// Submit reports a fulfilled session. With temperature pinned to zero,
// repeated calls over unchanged history return equivalent summaries.
func (o *Orchestrator) Summarize(ctx context.Context, sessionID string) (string, error) {
	s, err := o.store.Get(sessionID)
	if err != nil {
		return "", err
	}

	transcript := renderTranscript(s.History())
	if transcript == "" {
		return "", ErrEmptyHistory
	}

	messages := []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, summaryInstruction),
		protocol.NewMessage(protocol.RoleUser, transcript),
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	raw, err := o.completer.Complete(callCtx, messages)
	if err != nil {
		o.observer.OnEvent(ctx, observability.Event{
			Type:      EventSummaryError,
			Level:     observability.LevelError,
			Timestamp: time.Now(),
			Source:    "dialogue.Summarize",
			Data: map[string]any{
				"session_id": sessionID,
				"error":      err.Error(),
			},
		})
		return "", fmt.Errorf("dialogue: summary completion: %w", err)
	}

	o.observer.OnEvent(ctx, observability.Event{
		Type:      EventSummary,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "dialogue.Summarize",
		Data:      map[string]any{"session_id": sessionID},
	})

	return strings.TrimSpace(raw), nil
}

// renderTranscript flattens history into human-readable speaker lines. The
// SYSTEM turn is protocol plumbing and is excluded; the summary model sees
// the conversation, not the instructions that produced it.
func renderTranscript(history []protocol.Turn) string {
	var b strings.Builder
	for _, t := range history {
		if t.Kind == protocol.KindSystem {
			continue
		}
		if t.Origin == protocol.OriginHuman {
			b.WriteString("User: ")
		} else {
			fmt.Fprintf(&b, "Assistant (to %s): ", t.Recipient())
		}
		b.WriteString(t.Content)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}
