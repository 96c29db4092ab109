package domain

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	// MaxContentLength is measured in characters, not bytes.
	MaxContentLength = 2000
	// EmailPromptThreshold is the number of user turns after which the widget asks for an email.
	EmailPromptThreshold = 3

	conversationPrefix = "conv_"
)

// Message 对话中的一条消息
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// IsUser checks if the message is from a user
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// RawMessage is a message as the client sent it. Neither field is trusted.
type RawMessage struct {
	Role    json.RawMessage `json:"role"`
	Content json.RawMessage `json:"content"`
}

// Normalize coerces a client-supplied history into forwardable messages.
// Order is preserved.
func Normalize(raw []RawMessage) []Message {
	out := make([]Message, 0, len(raw))
	for _, r := range raw {
		out = append(out, Message{
			Role:    coerceRole(r.Role),
			Content: Truncate(stringify(r.Content), MaxContentLength),
		})
	}
	return out
}

// CountUser returns how many messages in history were authored by the user.
func CountUser(history []Message) int {
	n := 0
	for _, m := range history {
		if m.IsUser() {
			n++
		}
	}
	return n
}

// ShouldPromptEmail reports whether the history has reached the email prompt threshold.
func ShouldPromptEmail(history []Message) bool {
	return CountUser(history) >= EmailPromptThreshold
}

// Truncate cuts s to at most max characters. Shorter strings are returned as is.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// NewConversationID returns id when set, otherwise a fresh conversation id.
func NewConversationID(id string) string {
	if id != "" {
		return id
	}
	return conversationPrefix + uuid.NewString()
}

func coerceRole(raw json.RawMessage) Role {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && Role(s) == RoleUser {
		return RoleUser
	}
	return RoleAssistant
}

func stringify(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
