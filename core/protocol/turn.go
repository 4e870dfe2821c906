package protocol

import (
	"encoding/json"
	"time"
)

// Kind classifies a turn by its bracket tag. SYSTEM appears exactly once per
// session, as the first history element; it carries the protocol
// instructions and is never shown to end users.
type Kind string

const (
	KindSystem  Kind = "SYSTEM"
	KindUser    Kind = "USER"
	KindTarget  Kind = "TARGET"
	KindCaution Kind = "CAUTION"
	KindSummary Kind = "SUMMARY"
)

// Recipient identifies the human-facing addressee of a turn.
type Recipient string

const (
	RecipientUser      Recipient = "user"
	RecipientTarget    Recipient = "target"
	RecipientAssistant Recipient = "assistant"
)

// Origin records who authored a turn. The codec needs it to tell a USER turn
// typed by the human apart from a USER-tagged reply the model addressed to
// the human: the former keeps the user role on the wire, the latter is
// replayed to the model as its own assistant output.
type Origin string

const (
	OriginHuman Origin = "human"
	OriginModel Origin = "model"
)

// Turn is one tagged unit of conversation history. Content is stored with
// the bracket tag already stripped. Timestamp is stamped at append time by
// the owning session.
type Turn struct {
	Kind      Kind      `json:"kind"`
	Origin    Origin    `json:"origin"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Recipient derives the addressee from the turn kind. SYSTEM configures the
// assistant, TARGET turns address the target, and everything else addresses
// the user. Deriving instead of storing makes a kind/recipient mismatch
// unrepresentable.
func (t Turn) Recipient() Recipient {
	switch t.Kind {
	case KindSystem:
		return RecipientAssistant
	case KindTarget:
		return RecipientTarget
	default:
		return RecipientUser
	}
}

// MarshalJSON includes the derived recipient so serialized history is
// self-describing for replay consumers.
func (t Turn) MarshalJSON() ([]byte, error) {
	type turn Turn
	return json.Marshal(struct {
		turn
		Recipient Recipient `json:"recipient"`
	}{turn(t), t.Recipient()})
}

// SystemTurn builds the SYSTEM turn that seeds a session's history.
func SystemTurn(content string) Turn {
	return Turn{Kind: KindSystem, Origin: OriginHuman, Content: content}
}

// HumanTurn builds a USER turn authored by the human.
func HumanTurn(content string) Turn {
	return Turn{Kind: KindUser, Origin: OriginHuman, Content: content}
}

// CautionTurn builds a model-origin CAUTION turn. The orchestrator
// substitutes one when a reply cannot be decoded, so it encodes the same way
// a genuine model caution would.
func CautionTurn(content string) Turn {
	return Turn{Kind: KindCaution, Origin: OriginModel, Content: content}
}
