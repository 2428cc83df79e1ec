package core

import "context"

// Message roles understood by every LLMProvider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry of a prompt.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest is a single prompt sent to a text-generation provider.
type CompletionRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

type LLMProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
