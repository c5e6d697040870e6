package services

import (
	"context"
	"sync"

	"aegis/pkg/aegistypes"
)

// completer answers a prompt given prior turns. Providers implement it; the history
// slice is read-only for the duration of the call.
type completer interface {
	complete(ctx context.Context, history []aegistypes.Turn, prompt string) (string, error)
}

// historySession is a ChatSession that keeps its own turn history and replays it to
// the provider on every send. History only grows after a successful completion.
type historySession struct {
	mu      sync.Mutex
	backend completer
	history []aegistypes.Turn
}

func newHistorySession(backend completer, history []aegistypes.Turn) *historySession {
	seeded := make([]aegistypes.Turn, len(history))
	copy(seeded, history)
	return &historySession{backend: backend, history: seeded}
}

// Send implements aegistypes.ChatSession.
func (s *historySession) Send(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	response, err := s.backend.complete(ctx, s.history, prompt)
	if err != nil {
		return "", err
	}

	s.history = append(s.history,
		aegistypes.NewTurn(aegistypes.RoleUser, prompt),
		aegistypes.NewTurn(aegistypes.RoleModel, response),
	)
	return response, nil
}

// History implements aegistypes.ChatSession.
func (s *historySession) History() []aegistypes.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]aegistypes.Turn, len(s.history))
	copy(out, s.history)
	return out
}
