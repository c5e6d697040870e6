// Package workspace holds the in-memory set of loaded bots for one Aegis process.
// It is the conversation store: bots are keyed case-insensitively, kept in insertion
// order, and track which turns have not been persisted yet.
package workspace

import (
	"iter"
	"strings"
	"sync"

	"aegis/pkg/aegistypes"
)

// Bot is a named conversation plus its optional bound chat session.
type Bot struct {
	Name         string                   // Canonical name as registered
	FilePath     string                   // Bot file backing this conversation ("" if never persisted)
	Conversation *aegistypes.Conversation // Append-only history
	Session      aegistypes.ChatSession   // nil when offline

	savedLen int // Conversation length at the last load or save
}

// Dirty reports whether the conversation has turns that were appended since the last save.
func (b *Bot) Dirty() bool {
	return b.Conversation.Len() != b.savedLen
}

// Offline reports whether the bot has no bound chat session.
func (b *Bot) Offline() bool {
	return b.Session == nil
}

// Workspace is the process-wide conversation store, scoped to at most one active project.
type Workspace struct {
	mu            sync.RWMutex
	bots          map[string]*Bot // keyed by lower-cased name
	order         []string        // lower-cased names in insertion order
	activeProject string
}

// New creates an empty workspace with no active project.
func New() *Workspace {
	return &Workspace{
		bots: make(map[string]*Bot),
	}
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register inserts a bot or replaces an existing one with the same case-insensitive name.
// A replaced bot keeps its position in the insertion order. The conversation is treated
// as freshly loaded (not dirty).
func (w *Workspace) Register(name, filePath string, conv *aegistypes.Conversation) *Bot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.registerLocked(name, filePath, conv)
}

// RegisterUnique inserts a new bot, failing with DuplicateBotError if the name is taken.
func (w *Workspace) RegisterUnique(name, filePath string, conv *aegistypes.Conversation) (*Bot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if existing, ok := w.bots[key(name)]; ok {
		return nil, &aegistypes.DuplicateBotError{Name: existing.Name}
	}
	return w.registerLocked(name, filePath, conv), nil
}

func (w *Workspace) registerLocked(name, filePath string, conv *aegistypes.Conversation) *Bot {
	if conv == nil {
		conv = aegistypes.NewConversation()
	}
	k := key(name)
	bot := &Bot{
		Name:         strings.TrimSpace(name),
		FilePath:     filePath,
		Conversation: conv,
		savedLen:     conv.Len(),
	}
	if _, exists := w.bots[k]; !exists {
		w.order = append(w.order, k)
	}
	w.bots[k] = bot
	return bot
}

// Contains reports whether a bot with the given case-insensitive name is loaded.
func (w *Workspace) Contains(name string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.bots[key(name)]
	return ok
}

// Get looks a bot up case-insensitively.
func (w *Workspace) Get(name string) (*Bot, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	bot, ok := w.bots[key(name)]
	if !ok {
		return nil, &aegistypes.UnknownBotError{Name: name}
	}
	return bot, nil
}

// Append adds one turn to a bot's conversation.
func (w *Workspace) Append(name string, role aegistypes.Role, content string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	bot, ok := w.bots[key(name)]
	if !ok {
		return &aegistypes.UnknownBotError{Name: name}
	}
	bot.Conversation.Append(role, content)
	return nil
}

// AppendExchange appends a user prompt and its model response as one step,
// so no reader observes the prompt without its response.
func (w *Workspace) AppendExchange(name, prompt, response string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	bot, ok := w.bots[key(name)]
	if !ok {
		return &aegistypes.UnknownBotError{Name: name}
	}
	bot.Conversation.Append(aegistypes.RoleUser, prompt)
	bot.Conversation.Append(aegistypes.RoleModel, response)
	return nil
}

// Bind associates a chat session with a loaded bot. A nil session puts the bot offline.
func (w *Workspace) Bind(name string, session aegistypes.ChatSession) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	bot, ok := w.bots[key(name)]
	if !ok {
		return &aegistypes.UnknownBotError{Name: name}
	}
	bot.Session = session
	return nil
}

// MarkSaved records that a bot's conversation was persisted at its current length.
func (w *Workspace) MarkSaved(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	bot, ok := w.bots[key(name)]
	if !ok {
		return &aegistypes.UnknownBotError{Name: name}
	}
	bot.savedLen = bot.Conversation.Len()
	return nil
}

// Remove drops a bot and its session from the workspace.
func (w *Workspace) Remove(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	k := key(name)
	if _, ok := w.bots[k]; !ok {
		return &aegistypes.UnknownBotError{Name: name}
	}
	delete(w.bots, k)
	for i, existing := range w.order {
		if existing == k {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear empties the workspace. Nothing is persisted; callers save first if needed.
func (w *Workspace) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.bots = make(map[string]*Bot)
	w.order = nil
}

// Len returns the number of loaded bots.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}

// Bots returns the loaded bots in insertion order.
func (w *Workspace) Bots() []*Bot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*Bot, 0, len(w.order))
	for _, k := range w.order {
		out = append(out, w.bots[k])
	}
	return out
}

// DirtyBots returns, in insertion order, the bots with unsaved turns.
func (w *Workspace) DirtyBots() []*Bot {
	var out []*Bot
	for _, bot := range w.Bots() {
		if bot.Dirty() {
			out = append(out, bot)
		}
	}
	return out
}

// Status yields (name, turn count) pairs in insertion order. The sequence is
// evaluated lazily against a snapshot of the bot list taken when iteration starts.
func (w *Workspace) Status() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		for _, bot := range w.Bots() {
			if !yield(bot.Name, bot.Conversation.Len()) {
				return
			}
		}
	}
}

// ActiveProject returns the active project name, or "" when none is active.
func (w *Workspace) ActiveProject() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.activeProject
}

// SetActiveProject records the active project. It does not load or clear bots.
func (w *Workspace) SetActiveProject(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.activeProject = name
}
