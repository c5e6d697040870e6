package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"aegis/internal/logger"
	"aegis/pkg/aegistypes"
)

// GeminiModel implements aegistypes.ChatModel on the Google Gemini API.
// The underlying client is created lazily on first use.
type GeminiModel struct {
	config ProviderConfig

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiModel creates a Gemini capability. No network traffic happens until the first request.
func NewGeminiModel(config ProviderConfig) *GeminiModel {
	return &GeminiModel{config: config}
}

// ProviderName implements aegistypes.ChatModel.
func (m *GeminiModel) ProviderName() string {
	return ProviderGemini
}

func (m *GeminiModel) initializeClientIfNeeded(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return nil
	}
	if m.config.APIKey == "" {
		return fmt.Errorf("google API key not configured")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  m.config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if m.config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: m.config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	m.client = client
	logger.Debug("Gemini client initialized", "provider", ProviderGemini, "model", m.config.Model)
	return nil
}

// StartChat implements aegistypes.ChatModel.
func (m *GeminiModel) StartChat(ctx context.Context, history []aegistypes.Turn) (aegistypes.ChatSession, error) {
	if err := m.initializeClientIfNeeded(ctx); err != nil {
		return nil, err
	}
	return newHistorySession(m, history), nil
}

// GenerateStateless implements aegistypes.ChatModel.
func (m *GeminiModel) GenerateStateless(ctx context.Context, history []aegistypes.Turn, prompt string) (string, error) {
	if err := m.initializeClientIfNeeded(ctx); err != nil {
		return "", err
	}
	return m.complete(ctx, history, prompt)
}

func (m *GeminiModel) complete(ctx context.Context, history []aegistypes.Turn, prompt string) (string, error) {
	contents := convertTurnsToGemini(history, prompt)
	logger.Debug("Sending Gemini request", "model", m.config.Model, "content_count", len(contents))

	result, err := m.client.Models.GenerateContent(ctx, m.config.Model, contents, &genai.GenerateContentConfig{})
	if err != nil {
		logger.Error("Gemini request failed", "error", err)
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	content, thoughts := extractGeminiText(result)
	if content == "" {
		return "", fmt.Errorf("empty response content")
	}
	logger.Debug("Gemini response received", "content_length", len(content), "thinking_blocks", thoughts)
	return content, nil
}

// convertTurnsToGemini maps the conversation plus the new prompt onto Gemini contents.
func convertTurnsToGemini(history []aegistypes.Turn, prompt string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		role := "user"
		if turn.Role == aegistypes.RoleModel {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: turn.Content}},
			Role:  role,
		})
	}
	return append(contents, &genai.Content{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	})
}

// extractGeminiText concatenates the text parts of every candidate, skipping thought parts.
func extractGeminiText(result *genai.GenerateContentResponse) (string, int) {
	var sb strings.Builder
	thoughts := 0
	if result == nil {
		return "", 0
	}
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text == "" {
				continue
			}
			if part.Thought {
				thoughts++
				continue
			}
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), thoughts
}
