package provider

import (
	"strings"

	"cosmic/model"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

// ConvertToOpenAIMessages converts the window to the OpenAI chat shape with
// system leading the list.
//
// Example:
//
//	msgs := ConvertToOpenAIMessages("You are helpful.", []model.Message{
//	    {Role: "user", Content: "Hello"},
//	})
//	// msgs[0] is the system message, msgs[1] the user message
func ConvertToOpenAIMessages(system string, messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		result = append(result, openai.SystemMessage(system))
	}
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case model.RoleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}

// convertToAnthropicMessages converts the window to Anthropic format.
// Anthropic takes the system prompt as a separate top-level parameter, so any
// system messages in the window are appended to the returned system blocks.
// The conversation must open with a user turn; assistant turns before the
// first user turn are dropped.
func convertToAnthropicMessages(system string, messages []model.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var systemBlocks []anthropic.TextBlockParam
	if system != "" {
		systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: system})
	}
	anthropicMsgs := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{
				Text: msg.Content,
			})

		case model.RoleAssistant:
			if len(anthropicMsgs) == 0 {
				continue
			}
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)),
			)

		default:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)),
			)
		}
	}

	return anthropicMsgs, systemBlocks
}

// ConvertToGenAIContents converts the window to Gemini contents. Gemini only
// knows the user and model roles; system messages become user turns. Model
// turns ahead of the first user turn are dropped.
func ConvertToGenAIContents(messages []model.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := genai.Role(genai.RoleUser)
		if msg.Role == model.RoleAssistant {
			if len(contents) == 0 {
				continue
			}
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return contents
}

// ConvertToOllamaMessages converts the window to Ollama api.Message with the
// system prompt first.
func ConvertToOllamaMessages(system string, messages []model.Message) []api.Message {
	result := make([]api.Message, 0, len(messages)+1)
	if system != "" {
		result = append(result, api.Message{Role: model.RoleSystem, Content: system})
	}
	for _, msg := range messages {
		result = append(result, api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return result
}

// CohereTurn is one chat_history entry of the Cohere v1 chat API.
type CohereTurn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// ConvertToCohereChat splits the window into Cohere's (history, message) pair:
// message is the last user turn, history is everything before it.
func ConvertToCohereChat(messages []model.Message) ([]CohereTurn, string) {
	last := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleUser {
			last = i
			break
		}
	}
	if last < 0 {
		return nil, ""
	}

	history := make([]CohereTurn, 0, last)
	for _, msg := range messages[:last] {
		role := "USER"
		switch msg.Role {
		case model.RoleAssistant:
			role = "CHATBOT"
		case model.RoleSystem:
			role = "SYSTEM"
		}
		history = append(history, CohereTurn{Role: role, Message: msg.Content})
	}
	return history, messages[last].Content
}

// BuildTextPrompt flattens the window into a single prompt for text-generation
// endpoints that take no message list:
//
//	System: ...
//	User: ...
//	Assistant: ...
//	Assistant:
func BuildTextPrompt(system string, messages []model.Message) string {
	var b strings.Builder
	if system != "" {
		b.WriteString("System: ")
		b.WriteString(system)
		b.WriteString("\n")
	}
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleAssistant:
			b.WriteString("Assistant: ")
		case model.RoleSystem:
			b.WriteString("System: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	b.WriteString("Assistant:")
	return b.String()
}
