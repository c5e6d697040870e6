package testutils

import (
	"context"
	"fmt"
	"sync"

	"aegis/pkg/aegistypes"
)

// FakeCall records one request that reached a FakeModel.
type FakeCall struct {
	Stateless bool
	History   []aegistypes.Turn
	Prompt    string
}

// FakeModel is a deterministic in-memory aegistypes.ChatModel.
// By default it answers every prompt with "Echo: <prompt>".
type FakeModel struct {
	mu       sync.Mutex
	respond  func(history []aegistypes.Turn, prompt string) (string, error)
	failures []error
	startErr error
	calls    []FakeCall
	sessions int
}

// NewFakeModel creates a fake that echoes prompts.
func NewFakeModel() *FakeModel {
	return &FakeModel{
		respond: func(_ []aegistypes.Turn, prompt string) (string, error) {
			return "Echo: " + prompt, nil
		},
	}
}

// SetResponder replaces the response function.
func (m *FakeModel) SetResponder(fn func(history []aegistypes.Turn, prompt string) (string, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.respond = fn
}

// FailNext makes the next request fail with err. Calls queue up.
func (m *FakeModel) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, err)
}

// FailStartChat makes every StartChat call fail with err (nil restores success).
func (m *FakeModel) FailStartChat(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startErr = err
}

// Calls returns every request seen so far.
func (m *FakeModel) Calls() []FakeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]FakeCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// LastPrompt returns the most recent prompt, or "" if none was sent.
func (m *FakeModel) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return ""
	}
	return m.calls[len(m.calls)-1].Prompt
}

// SessionsStarted returns how many chat sessions were opened.
func (m *FakeModel) SessionsStarted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions
}

// ProviderName implements aegistypes.ChatModel.
func (m *FakeModel) ProviderName() string {
	return "fake"
}

// StartChat implements aegistypes.ChatModel.
func (m *FakeModel) StartChat(_ context.Context, history []aegistypes.Turn) (aegistypes.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return nil, m.startErr
	}
	m.sessions++
	return &FakeSession{model: m, history: append([]aegistypes.Turn(nil), history...)}, nil
}

// GenerateStateless implements aegistypes.ChatModel.
func (m *FakeModel) GenerateStateless(_ context.Context, history []aegistypes.Turn, prompt string) (string, error) {
	return m.answer(true, history, prompt)
}

func (m *FakeModel) answer(stateless bool, history []aegistypes.Turn, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, FakeCall{
		Stateless: stateless,
		History:   append([]aegistypes.Turn(nil), history...),
		Prompt:    prompt,
	})

	if len(m.failures) > 0 {
		err := m.failures[0]
		m.failures = m.failures[1:]
		return "", err
	}
	return m.respond(history, prompt)
}

// FakeSession is the aegistypes.ChatSession handed out by FakeModel.
type FakeSession struct {
	model   *FakeModel
	mu      sync.Mutex
	history []aegistypes.Turn
}

// Send implements aegistypes.ChatSession. History grows only on success.
func (s *FakeSession) Send(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	response, err := s.model.answer(false, s.history, prompt)
	if err != nil {
		return "", fmt.Errorf("fake send: %w", err)
	}
	s.history = append(s.history,
		aegistypes.NewTurn(aegistypes.RoleUser, prompt),
		aegistypes.NewTurn(aegistypes.RoleModel, response),
	)
	return response, nil
}

// History implements aegistypes.ChatSession.
func (s *FakeSession) History() []aegistypes.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]aegistypes.Turn(nil), s.history...)
}
