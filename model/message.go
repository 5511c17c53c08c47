package model

import (
	"strings"
	"time"
)

// Message roles accepted by every provider adapter.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message represents a chat message in the conversation
type Message struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// ContextTag selects the system prompt and the fallback response pool.
type ContextTag string

const (
	ContextCosmic    ContextTag = "cosmic"
	ContextAerospace ContextTag = "aerospace"
	ContextAI        ContextTag = "ai"
	ContextTechnical ContextTag = "technical"
	ContextGeneral   ContextTag = "general"
)

// DefaultContext is used when the caller supplies no tag.
const DefaultContext = ContextCosmic

// ContextTags lists the fixed set of recognized tags.
func ContextTags() []ContextTag {
	return []ContextTag{ContextCosmic, ContextAerospace, ContextAI, ContextTechnical, ContextGeneral}
}

// ParseContextTag normalizes s. An empty string yields DefaultContext;
// unknown values are returned as-is so lookups can apply their own defaults.
func ParseContextTag(s string) ContextTag {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultContext
	}
	return ContextTag(s)
}

// Valid reports whether t is one of the fixed tags.
func (t ContextTag) Valid() bool {
	for _, known := range ContextTags() {
		if t == known {
			return true
		}
	}
	return false
}

// LastUserMessage returns the content of the most recent user message,
// or "" if there is none.
func LastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// TrailingWindow returns at most n of the newest messages.
func TrailingWindow(messages []Message, n int) []Message {
	if n <= 0 || len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
