package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// anthropicMaxTokens bounds every Anthropic completion; the Messages
// API requires an explicit limit.
const anthropicMaxTokens = 4096

// AnthropicClient provides access to the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// NewAnthropicClient creates a new Anthropic completion client.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	opts := []anthropic.ClientOption{}
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.Endpoint))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		model:  cfg.Model,
		logger: logger.Named("llm"),
	}, nil
}

// Complete implements CompletionClient.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error) {
	start := time.Now()
	temp := float32(temperature)

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		System:      systemMessage,
		MaxTokens:   anthropicMaxTokens,
		Temperature: &temp,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err)
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	c.logger.Info("LLM request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

// StreamChat implements CompletionClient.
func (c *AnthropicClient) StreamChat(ctx context.Context, messages []Message, systemMessage string, onDelta func(chunk string) error) error {
	amsgs := make([]anthropic.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleAssistant:
			amsgs = append(amsgs, anthropic.NewAssistantTextMessage(m.Content))
		default:
			amsgs = append(amsgs, anthropic.NewUserTextMessage(m.Content))
		}
	}

	// The stream callbacks cannot return an error, so a rejected delta
	// cancels the request context and the recorded error wins.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var deltaErr error
	start := time.Now()
	chunks := 0

	_, err := c.client.CreateMessagesStream(streamCtx, anthropic.MessagesStreamRequest{
		MessagesRequest: anthropic.MessagesRequest{
			Model:     anthropic.Model(c.model),
			System:    systemMessage,
			MaxTokens: anthropicMaxTokens,
			Messages:  amsgs,
		},
		OnContentBlockDelta: func(data anthropic.MessagesEventContentBlockDeltaData) {
			if deltaErr != nil || data.Delta.Text == nil || *data.Delta.Text == "" {
				return
			}
			chunks++
			if err := onDelta(*data.Delta.Text); err != nil {
				deltaErr = err
				cancel()
			}
		},
	})

	if deltaErr != nil {
		return deltaErr
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Error("Stream receive error", zap.Error(err))
		return ClassifyError(err)
	}

	c.logger.Info("Stream completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("chunks", chunks))
	return nil
}

// GetModel returns the configured model name.
func (c *AnthropicClient) GetModel() string {
	return c.model
}

func extractText(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}

// Ensure AnthropicClient implements CompletionClient at compile time.
var _ CompletionClient = (*AnthropicClient)(nil)
