package services

import (
	"context"
	"errors"
	"fmt"

	"aegis/internal/journal"
	"aegis/internal/logger"
	"aegis/internal/workspace"
	"aegis/pkg/aegistypes"
)

// ProgressIndicator displays activity while a remote query is in flight.
// Start returns a stop function that blocks until the indicator has fully stopped.
type ProgressIndicator interface {
	Start(label string) (stop func())
}

// Recorder stores completed exchanges. *journal.Journal implements it.
type Recorder interface {
	Record(ctx context.Context, entry journal.Entry) (journal.Entry, error)
}

// OfflineResponse is the placeholder returned for bots without a live session.
func OfflineResponse(bot string) string {
	return fmt.Sprintf("Simulated response for '%s' (OFFLINE)", bot)
}

// SessionService binds workspace bots to chat sessions and routes prompts to them.
type SessionService struct {
	workspace *workspace.Workspace
	model     aegistypes.ChatModel
	progress  ProgressIndicator
	recorder  Recorder
}

// NewSessionService creates a session service. A nil model means offline mode.
func NewSessionService(ws *workspace.Workspace, model aegistypes.ChatModel) *SessionService {
	return &SessionService{workspace: ws, model: model}
}

// Name returns the service name.
func (s *SessionService) Name() string {
	return "session"
}

// SetProgressIndicator installs the indicator shown during remote queries.
func (s *SessionService) SetProgressIndicator(p ProgressIndicator) {
	s.progress = p
}

// SetRecorder installs the exchange recorder.
func (s *SessionService) SetRecorder(r Recorder) {
	s.recorder = r
}

// Online reports whether a live capability is configured.
func (s *SessionService) Online() bool {
	return s.model != nil
}

// ProviderName returns the configured provider or "offline".
func (s *SessionService) ProviderName() string {
	if s.model == nil {
		return ProviderOffline
	}
	return s.model.ProviderName()
}

// Bind starts a chat session seeded with the bot's conversation. Without a capability
// the bot is left offline and no error is returned. If the capability fails to start
// a session the bot stays loaded but offline.
func (s *SessionService) Bind(ctx context.Context, name string) error {
	bot, err := s.workspace.Get(name)
	if err != nil {
		return err
	}

	if s.model == nil {
		logger.Debug("Bot bound offline", "bot", bot.Name)
		return s.workspace.Bind(bot.Name, nil)
	}

	session, err := s.model.StartChat(ctx, bot.Conversation.Turns())
	if err != nil {
		_ = s.workspace.Bind(bot.Name, nil)
		return &aegistypes.RemoteQueryError{Bot: bot.Name, Err: err}
	}

	logger.Debug("Bot bound", "bot", bot.Name, "provider", s.model.ProviderName(), "turns", bot.Conversation.Len())
	return s.workspace.Bind(bot.Name, session)
}

// BindAll binds every loaded bot, returning the joined failures.
func (s *SessionService) BindAll(ctx context.Context) error {
	var errs []error
	for _, bot := range s.workspace.Bots() {
		if err := s.Bind(ctx, bot.Name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Send submits prompt to the bot's session and appends the exchange once the response
// has arrived. A failed query appends nothing. Offline bots answer with a placeholder
// and still record the exchange.
func (s *SessionService) Send(ctx context.Context, name, prompt string) (string, error) {
	return s.SendAs(ctx, name, prompt, journal.KindChat, "")
}

// SendAs is Send with an explicit journal kind and source.
func (s *SessionService) SendAs(ctx context.Context, name, prompt string, kind journal.Kind, source string) (string, error) {
	bot, err := s.workspace.Get(name)
	if err != nil {
		return "", err
	}

	if bot.Offline() {
		response := OfflineResponse(bot.Name)
		if err := s.workspace.AppendExchange(bot.Name, prompt, response); err != nil {
			return "", err
		}
		s.record(ctx, journal.Entry{Kind: kind, Bot: bot.Name, Source: source, Prompt: prompt, Response: response, Offline: true})
		return response, nil
	}

	stop := s.startProgress(bot.Name)
	response, err := bot.Session.Send(ctx, prompt)
	stop()

	if err != nil {
		logger.Error("Remote query failed", "bot", bot.Name, "error", err)
		return "", &aegistypes.RemoteQueryError{Bot: bot.Name, Err: err}
	}

	if err := s.workspace.AppendExchange(bot.Name, prompt, response); err != nil {
		return "", err
	}
	logger.Debug("Exchange appended", "bot", bot.Name, "prompt_length", len(prompt), "response_length", len(response))
	s.record(ctx, journal.Entry{Kind: kind, Bot: bot.Name, Source: source, Prompt: prompt, Response: response})
	return response, nil
}

// SendStateless answers prompt using the bot's current conversation as read-only
// context. Neither the conversation nor the bound session changes.
func (s *SessionService) SendStateless(ctx context.Context, name, prompt string) (string, error) {
	bot, err := s.workspace.Get(name)
	if err != nil {
		return "", err
	}

	if s.model == nil {
		response := OfflineResponse(bot.Name)
		s.record(ctx, journal.Entry{Kind: journal.KindStateless, Bot: bot.Name, Prompt: prompt, Response: response, Offline: true})
		return response, nil
	}

	stop := s.startProgress(bot.Name)
	response, err := s.model.GenerateStateless(ctx, bot.Conversation.Turns(), prompt)
	stop()

	if err != nil {
		logger.Error("Stateless query failed", "bot", bot.Name, "error", err)
		return "", &aegistypes.RemoteQueryError{Bot: bot.Name, Err: err}
	}

	s.record(ctx, journal.Entry{Kind: journal.KindStateless, Bot: bot.Name, Prompt: prompt, Response: response})
	return response, nil
}

func (s *SessionService) startProgress(bot string) func() {
	if s.progress == nil {
		return func() {}
	}
	return s.progress.Start(fmt.Sprintf("Sending to %s...", bot))
}

func (s *SessionService) record(ctx context.Context, entry journal.Entry) {
	if s.recorder == nil {
		return
	}
	if _, err := s.recorder.Record(ctx, entry); err != nil {
		logger.Warn("Failed to journal exchange", "bot", entry.Bot, "kind", entry.Kind, "error", err)
	}
}
