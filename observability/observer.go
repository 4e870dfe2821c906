// Package observability provides event-based diagnostics for the dialogue
// core. Severity values align with OpenTelemetry SeverityNumbers so events
// translate to OTel collectors without mapping.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level is an event severity aligned with OTel SeverityNumber ranges.
type Level int

const (
	LevelDebug   Level = 5  // OTel DEBUG (5-8)
	LevelInfo    Level = 9  // OTel INFO (9-12)
	LevelWarning Level = 13 // OTel WARN (13-16)
	LevelError   Level = 17 // OTel ERROR (17-20)
)

// SlogLevel maps the level to the corresponding slog.Level for log emission.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType identifies the kind of event. Each subsystem defines its own
// constants using this type (e.g. "dialogue.submit.start").
type EventType string

// Event is one diagnostic event. Events are the channel for detail that must
// stay out of conversation text, such as the underlying error behind a
// synthetic caution turn.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer receives events from subsystems for logging, tracing, or metrics.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// NoopObserver discards all events. It is the default when no diagnostics
// sink is configured.
type NoopObserver struct{}

func (NoopObserver) OnEvent(context.Context, Event) {}
