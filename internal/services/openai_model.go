package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"aegis/internal/logger"
	"aegis/pkg/aegistypes"
)

// OpenAIModel implements aegistypes.ChatModel on the OpenAI chat completions API.
type OpenAIModel struct {
	config ProviderConfig

	mu     sync.Mutex
	client *openai.Client
}

// NewOpenAIModel creates an OpenAI capability with lazy client initialization.
func NewOpenAIModel(config ProviderConfig) *OpenAIModel {
	return &OpenAIModel{config: config}
}

// ProviderName implements aegistypes.ChatModel.
func (m *OpenAIModel) ProviderName() string {
	return ProviderOpenAI
}

func (m *OpenAIModel) initializeClientIfNeeded() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return nil
	}
	if m.config.APIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}

	options := []option.RequestOption{option.WithAPIKey(m.config.APIKey)}
	if m.config.BaseURL != "" {
		options = append(options, option.WithBaseURL(m.config.BaseURL))
	}
	client := openai.NewClient(options...)
	m.client = &client

	logger.Debug("OpenAI client initialized", "provider", ProviderOpenAI, "model", m.config.Model)
	return nil
}

// StartChat implements aegistypes.ChatModel.
func (m *OpenAIModel) StartChat(_ context.Context, history []aegistypes.Turn) (aegistypes.ChatSession, error) {
	if err := m.initializeClientIfNeeded(); err != nil {
		return nil, err
	}
	return newHistorySession(m, history), nil
}

// GenerateStateless implements aegistypes.ChatModel.
func (m *OpenAIModel) GenerateStateless(ctx context.Context, history []aegistypes.Turn, prompt string) (string, error) {
	if err := m.initializeClientIfNeeded(); err != nil {
		return "", err
	}
	return m.complete(ctx, history, prompt)
}

func (m *OpenAIModel) complete(ctx context.Context, history []aegistypes.Turn, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(m.config.Model),
		Messages: convertTurnsToOpenAI(history, prompt),
	}

	logger.Debug("Sending OpenAI request", "model", m.config.Model, "message_count", len(params.Messages))
	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("OpenAI request failed", "error", err)
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}
	content := completion.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty response content")
	}

	logger.Debug("OpenAI response received", "content_length", len(content))
	return content, nil
}

func convertTurnsToOpenAI(history []aegistypes.Turn, prompt string) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	for _, turn := range history {
		if turn.Role == aegistypes.RoleModel {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	return append(messages, openai.UserMessage(prompt))
}
