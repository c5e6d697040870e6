package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"aegis/internal/logger"
	"aegis/pkg/aegistypes"
)

const anthropicMaxTokens = 1024

// AnthropicModel implements aegistypes.ChatModel on the Anthropic messages API.
type AnthropicModel struct {
	config ProviderConfig

	mu     sync.Mutex
	client *anthropic.Client
}

// NewAnthropicModel creates an Anthropic capability with lazy client initialization.
func NewAnthropicModel(config ProviderConfig) *AnthropicModel {
	return &AnthropicModel{config: config}
}

// ProviderName implements aegistypes.ChatModel.
func (m *AnthropicModel) ProviderName() string {
	return ProviderAnthropic
}

func (m *AnthropicModel) initializeClientIfNeeded() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return nil
	}
	if m.config.APIKey == "" {
		return fmt.Errorf("anthropic API key not configured")
	}

	options := []option.RequestOption{option.WithAPIKey(m.config.APIKey)}
	if m.config.BaseURL != "" {
		options = append(options, option.WithBaseURL(m.config.BaseURL))
	}
	client := anthropic.NewClient(options...)
	m.client = &client

	logger.Debug("Anthropic client initialized", "provider", ProviderAnthropic, "model", m.config.Model)
	return nil
}

// StartChat implements aegistypes.ChatModel.
func (m *AnthropicModel) StartChat(_ context.Context, history []aegistypes.Turn) (aegistypes.ChatSession, error) {
	if err := m.initializeClientIfNeeded(); err != nil {
		return nil, err
	}
	return newHistorySession(m, history), nil
}

// GenerateStateless implements aegistypes.ChatModel.
func (m *AnthropicModel) GenerateStateless(ctx context.Context, history []aegistypes.Turn, prompt string) (string, error) {
	if err := m.initializeClientIfNeeded(); err != nil {
		return "", err
	}
	return m.complete(ctx, history, prompt)
}

func (m *AnthropicModel) complete(ctx context.Context, history []aegistypes.Turn, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.config.Model),
		MaxTokens: anthropicMaxTokens,
		Messages:  convertTurnsToAnthropic(history, prompt),
	}

	logger.Debug("Sending Anthropic request", "model", m.config.Model, "message_count", len(params.Messages))
	message, err := m.client.Messages.New(ctx, params)
	if err != nil {
		logger.Error("Anthropic request failed", "error", err)
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		sb.WriteString(block.Text)
	}
	content := sb.String()
	if content == "" {
		return "", fmt.Errorf("empty response content")
	}

	logger.Debug("Anthropic response received", "content_length", len(content))
	return content, nil
}

func convertTurnsToAnthropic(history []aegistypes.Turn, prompt string) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, turn := range history {
		block := anthropic.NewTextBlock(turn.Content)
		if turn.Role == aegistypes.RoleModel {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}
	return append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))
}
