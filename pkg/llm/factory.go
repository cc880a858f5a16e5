package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/planstack-io/planstack-engine/pkg/config"
)

// NewCompletionClient builds a CompletionClient for the configured
// provider.
func NewCompletionClient(cfg *config.AIConfig, logger *zap.Logger) (CompletionClient, error) {
	switch cfg.Provider {
	case config.AIProviderOpenAI:
		return NewOpenAIClient(&Config{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
			APIKey:   cfg.APIKey,
		}, logger)
	case config.AIProviderAnthropic:
		return NewAnthropicClient(&Config{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
			APIKey:   cfg.APIKey,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
