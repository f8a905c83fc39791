package llm

import "context"

// Message roles understood by every backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is everything a backend needs for one completion.
// Schema is nil for free-form completions.
type Request struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Messages    []Message
	Schema      *Schema
}

// Backend sends a single request to a language model and returns the raw
// reply text. Implementations do not retry.
type Backend interface {
	Send(ctx context.Context, req Request) (string, error)
}
