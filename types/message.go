package types

import "time"

// Role represents the role of a conversation turn. Message kinds are an
// explicit enumerated tag rather than distinct runtime types.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single role-tagged conversation turn. Name carries
// the identity of the agent that produced an assistant turn.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// NewMessage creates a new message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return NewMessage(RoleSystem, content)
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message attributed to the
// named agent.
func NewAssistantMessage(agent, content string) Message {
	m := NewMessage(RoleAssistant, content)
	m.Name = agent
	return m
}

// LastUserMessage returns the content of the most recent user turn, or ""
// when the conversation has none.
func LastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// FirstUserMessage returns the content of the earliest user turn, or ""
// when the conversation has none.
func FirstUserMessage(messages []Message) string {
	for _, m := range messages {
		if m.Role == RoleUser {
			return m.Content
		}
	}
	return ""
}
