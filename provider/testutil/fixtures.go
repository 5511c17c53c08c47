package testutil

import (
	"fmt"
	"time"

	"cosmic/model"
)

// TestMessages returns a sample conversation for testing
func TestMessages() []model.Message {
	return []model.Message{
		{
			Role:      model.RoleUser,
			Content:   "What is the tallest volcano?",
			Timestamp: time.Now(),
		},
		{
			Role:      model.RoleAssistant,
			Content:   "Olympus Mons on Mars, about 22 km high.",
			Timestamp: time.Now(),
		},
		{
			Role:      model.RoleUser,
			Content:   "How was it formed?",
			Timestamp: time.Now(),
		},
	}
}

// SingleUserMessage returns a single user message for simple tests
func SingleUserMessage(content string) []model.Message {
	return []model.Message{
		{
			Role:      model.RoleUser,
			Content:   content,
			Timestamp: time.Now(),
		},
	}
}

// LongConversation returns n alternating user/assistant messages, numbered
// from 1, ending with a user message when n is odd.
func LongConversation(n int) []model.Message {
	messages := make([]model.Message, n)
	for i := range messages {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		messages[i] = model.Message{
			Role:      role,
			Content:   fmt.Sprintf("message %d", i+1),
			Timestamp: time.Now(),
		}
	}
	return messages
}

// EmptyMessages returns an empty message slice for edge case testing
func EmptyMessages() []model.Message {
	return []model.Message{}
}

// SystemMessage returns a system message for testing
func SystemMessage(content string) model.Message {
	return model.Message{
		Role:      model.RoleSystem,
		Content:   content,
		Timestamp: time.Now(),
	}
}
