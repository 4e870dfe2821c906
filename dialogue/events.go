package dialogue

import "github.com/polyglot-labs/interpreter/observability"

// Dialogue event types emitted during session creation, turn exchanges, and
// summarization.
const (
	EventSessionCreate   observability.EventType = "dialogue.session.create"
	EventSubmitStart     observability.EventType = "dialogue.submit.start"
	EventSubmitComplete  observability.EventType = "dialogue.submit.complete"
	EventCompletionError observability.EventType = "dialogue.completion.error"
	EventDecodeError     observability.EventType = "dialogue.decode.error"
	EventFulfilled       observability.EventType = "dialogue.fulfilled"
	EventSummary         observability.EventType = "dialogue.summary"
	EventSummaryError    observability.EventType = "dialogue.summary.error"
)
