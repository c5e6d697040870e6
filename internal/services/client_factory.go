package services

import (
	"fmt"

	"aegis/pkg/aegistypes"
)

// NewChatModel creates the capability for a provider configuration.
// Offline configurations yield a nil model, which puts every bot in simulation mode.
func NewChatModel(cfg ProviderConfig) (aegistypes.ChatModel, error) {
	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiModel(cfg), nil
	case ProviderOpenAI:
		return NewOpenAIModel(cfg), nil
	case ProviderAnthropic:
		return NewAnthropicModel(cfg), nil
	case ProviderOffline, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
