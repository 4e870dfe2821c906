package protocol

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// replyTag matches one bracket tag anywhere in a reply. DecodeReply demands
// exactly one match, at offset zero. SYSTEM is deliberately absent: the
// model may never emit a system turn.
var replyTag = regexp.MustCompile(`(?i)\[(USER|TARGET|CAUTION|SUMMARY)\] `)

// ErrMalformedReply reports a completion reply that does not carry exactly
// one leading bracket tag followed by non-empty content.
var ErrMalformedReply = errors.New("protocol: malformed completion reply")

// Encode renders session history as the flat message list the completion
// endpoint accepts. SYSTEM turns keep the system role and human-authored
// USER turns keep the user role, both verbatim. Every model-authored turn is
// re-prefixed with its bracket tag under the assistant role: the endpoint
// only understands three roles, and the tag is how the model is shown its
// own past multi-party behavior.
func Encode(history []Turn) []Message {
	messages := make([]Message, 0, len(history))
	for _, t := range history {
		switch {
		case t.Kind == KindSystem:
			messages = append(messages, NewMessage(RoleSystem, t.Content))
		case t.Kind == KindUser && t.Origin == OriginHuman:
			messages = append(messages, NewMessage(RoleUser, t.Content))
		default:
			messages = append(messages, NewMessage(RoleAssistant, fmt.Sprintf("[%s] %s", t.Kind, t.Content)))
		}
	}
	return messages
}

// DecodeReply parses a raw completion reply into a Turn. The reply must
// start with exactly one of the four bracket tags (case-insensitive), one
// space before the content. Replies with no tag, a tag away from the start,
// more than one tag, or empty content fail with ErrMalformedReply; the
// upstream generator cannot be trusted to honor the format, and callers are
// expected to degrade the conversation rather than the session.
func DecodeReply(raw string) (Turn, error) {
	trimmed := strings.TrimSpace(raw)

	locs := replyTag.FindAllStringSubmatchIndex(trimmed, -1)
	if len(locs) != 1 || locs[0][0] != 0 {
		return Turn{}, fmt.Errorf("%w: %q", ErrMalformedReply, clip(trimmed))
	}

	kind := Kind(strings.ToUpper(trimmed[locs[0][2]:locs[0][3]]))
	content := strings.TrimSpace(trimmed[locs[0][1]:])
	if content == "" {
		return Turn{}, fmt.Errorf("%w: empty content after tag", ErrMalformedReply)
	}

	return Turn{Kind: kind, Origin: OriginModel, Content: content}, nil
}

func clip(s string) string {
	const max = 120
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
