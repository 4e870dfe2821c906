// Package protocol defines the conversation types this module exchanges with
// the completion service: the flat role-tagged messages the service accepts
// and the tagged-turn model the dialogue core works with, plus the codec
// mapping between the two.
package protocol

// Role identifies the sender of a completion message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single message in the flat form the completion endpoint
// accepts. The completion service is stateless between calls, so the full
// message list is rebuilt from session history on every invocation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a Message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}
