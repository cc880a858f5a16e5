package llm

import "context"

// MockCompletionClient is a configurable mock for testing completion
// flows. Set the function fields to control behavior in tests.
type MockCompletionClient struct {
	// CompleteFunc is called when Complete is invoked. If nil, returns
	// empty string and nil error.
	CompleteFunc func(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// StreamChatFunc is called when StreamChat is invoked. If nil, the
	// chunks in StreamChunks are delivered in order and the stream ends.
	StreamChatFunc func(ctx context.Context, messages []Message, systemMessage string, onDelta func(chunk string) error) error

	// StreamChunks is the default token script for StreamChat.
	StreamChunks []string

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// Call tracking for verification
	CompleteCalls   int
	StreamChatCalls int
}

// NewMockCompletionClient creates a new mock with sensible defaults.
func NewMockCompletionClient() *MockCompletionClient {
	return &MockCompletionClient{Model: "mock-model"}
}

// Complete implements CompletionClient.
func (m *MockCompletionClient) Complete(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error) {
	m.CompleteCalls++
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, systemMessage, temperature)
	}
	return "", nil
}

// StreamChat implements CompletionClient.
func (m *MockCompletionClient) StreamChat(ctx context.Context, messages []Message, systemMessage string, onDelta func(chunk string) error) error {
	m.StreamChatCalls++
	if m.StreamChatFunc != nil {
		return m.StreamChatFunc(ctx, messages, systemMessage, onDelta)
	}
	for _, chunk := range m.StreamChunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := onDelta(chunk); err != nil {
			return err
		}
	}
	return nil
}

// GetModel implements CompletionClient.
func (m *MockCompletionClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// Reset clears call tracking counters.
func (m *MockCompletionClient) Reset() {
	m.CompleteCalls = 0
	m.StreamChatCalls = 0
}

// Ensure MockCompletionClient implements CompletionClient at compile time.
var _ CompletionClient = (*MockCompletionClient)(nil)
