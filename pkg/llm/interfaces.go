// Package llm provides the completion-service clients used by the
// conversation, generation and conflict-analysis services. Two backends
// are supported: any OpenAI-compatible endpoint and Anthropic.
package llm

import "context"

// Message role constants.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a chat message sent to a completion backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionClient is the contract the engine requires from the AI
// completion service: a single-shot structured completion and a
// token-streaming chat completion. Use this interface for dependency
// injection to enable mocking in tests.
type CompletionClient interface {
	// Complete generates a single-shot completion for prompt under the
	// given system message.
	Complete(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// StreamChat streams a chat completion. onDelta is invoked for every
	// received text chunk, in arrival order; returning a non-nil error
	// from onDelta aborts the stream and surfaces that error. A nil
	// return from StreamChat is the explicit end-of-stream signal.
	StreamChat(ctx context.Context, messages []Message, systemMessage string, onDelta func(chunk string) error) error

	// GetModel returns the configured model name.
	GetModel() string
}
