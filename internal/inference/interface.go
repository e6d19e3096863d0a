package inference

import (
	"context"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client is the opaque chat-completion capability of the generation provider.
// The API key travels with each request because it is resolved per user.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged message in a completion request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest holds one chat-completion call.
type CompletionRequest struct {
	APIKey      string
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// CompletionResponse is the free-text result of a completion call.
type CompletionResponse struct {
	Content string
	Model   string
}
