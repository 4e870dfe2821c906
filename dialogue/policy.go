package dialogue

import "github.com/polyglot-labs/interpreter/core/protocol"

// Fulfills reports whether the most recently appended turn completes the
// session objective. The rule is the SUMMARY tag and nothing else. An
// earlier draft scanned reply text for words like "completed" or "done";
// that false-positives on ordinary chatter and was rejected.
//
// The transition it gates is one-way: once a session is fulfilled, further
// submits still append turns but never move the status back.
func Fulfills(t protocol.Turn) bool {
	return t.Kind == protocol.KindSummary
}
