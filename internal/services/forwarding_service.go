package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"aegis/internal/journal"
	"aegis/internal/logger"
	"aegis/internal/stringprocessing"
	"aegis/internal/workspace"
	"aegis/pkg/aegistypes"
)

// ForwardResult describes a dispatched forward or MCF request.
type ForwardResult struct {
	Target   string // Canonical target bot name
	Prompt   string // Composite prompt that was sent
	Response string
}

// ForwardingService copies context between bots.
type ForwardingService struct {
	workspace *workspace.Workspace
	sessions  *SessionService
	log       *log.Logger
}

// NewForwardingService creates a forwarding service on top of a session service.
func NewForwardingService(ws *workspace.Workspace, sessions *SessionService) *ForwardingService {
	return &ForwardingService{workspace: ws, sessions: sessions, log: logger.NewStyledLogger("Forward")}
}

// Name returns the service name.
func (f *ForwardingService) Name() string {
	return "forwarding"
}

// ResolveMessage looks up a turn of a loaded bot by display id.
func (f *ForwardingService) ResolveMessage(botName, displayID string) (*workspace.Bot, stringprocessing.DisplayEntry, error) {
	bot, err := f.workspace.Get(botName)
	if err != nil {
		return nil, stringprocessing.DisplayEntry{}, err
	}

	entry, ok := stringprocessing.FindByDisplayID(bot.Conversation.Turns(), displayID)
	if !ok {
		return bot, stringprocessing.DisplayEntry{}, &aegistypes.MessageNotFoundError{Bot: bot.Name, ID: displayID}
	}
	return bot, entry, nil
}

// Forward sends one turn of origin, wrapped as context, plus instruction to target.
// Nothing is appended anywhere unless the target's send succeeds.
func (f *ForwardingService) Forward(ctx context.Context, origin, displayID, target, instruction string) (ForwardResult, error) {
	originBot, entry, err := f.ResolveMessage(origin, displayID)
	if err != nil {
		return ForwardResult{}, err
	}

	targetBot, err := f.workspace.Get(target)
	if err != nil {
		return ForwardResult{}, err
	}

	if strings.TrimSpace(instruction) == "" {
		return ForwardResult{}, &aegistypes.PreconditionError{Reason: "instruction cannot be empty"}
	}

	prompt := BuildForwardPrompt(originBot.Name, entry.ID, entry.Turn.Content, instruction)
	f.log.Debug("Forwarding message", "origin", originBot.Name, "id", entry.ID, "target", targetBot.Name, "payload_length", len(prompt))

	response, err := f.sessions.SendAs(ctx, targetBot.Name, prompt, journal.KindForward, originBot.Name+":"+entry.ID)
	if err != nil {
		return ForwardResult{}, err
	}
	return ForwardResult{Target: targetBot.Name, Prompt: prompt, Response: response}, nil
}

// NewMCF starts a multi-context forward, optionally seeded with prior snippets.
func (f *ForwardingService) NewMCF(seed ...aegistypes.ContextSnippet) *MCFBuilder {
	snippets := make([]aegistypes.ContextSnippet, len(seed))
	copy(snippets, seed)
	return &MCFBuilder{forwarding: f, snippets: snippets}
}

// MCFBuilder accumulates context snippets from one or more bots and dispatches them
// as one payload. Snippets keep insertion order.
type MCFBuilder struct {
	forwarding *ForwardingService
	snippets   []aegistypes.ContextSnippet
}

// AddTurn appends a snippet copying one turn of origin.
func (b *MCFBuilder) AddTurn(origin, displayID string) (aegistypes.ContextSnippet, error) {
	bot, entry, err := b.forwarding.ResolveMessage(origin, displayID)
	if err != nil {
		return aegistypes.ContextSnippet{}, err
	}

	snippet := aegistypes.ContextSnippet{
		Origin:    bot.Name,
		Source:    aegistypes.SnippetFromTurn,
		DisplayID: entry.ID,
		Content:   entry.Turn.Content,
	}
	b.snippets = append(b.snippets, snippet)
	b.forwarding.log.Debug("MCF snippet added", "origin", bot.Name, "id", entry.ID, "snippets", len(b.snippets))
	return snippet, nil
}

// AddJIT runs a stateless query against origin and appends its question and answer.
func (b *MCFBuilder) AddJIT(ctx context.Context, origin, prompt string) (aegistypes.ContextSnippet, error) {
	if strings.TrimSpace(prompt) == "" {
		return aegistypes.ContextSnippet{}, &aegistypes.PreconditionError{Reason: "JIT query cannot be empty"}
	}

	bot, err := b.forwarding.workspace.Get(origin)
	if err != nil {
		return aegistypes.ContextSnippet{}, err
	}

	response, err := b.forwarding.sessions.SendStateless(ctx, bot.Name, prompt)
	if err != nil {
		return aegistypes.ContextSnippet{}, err
	}

	snippet := aegistypes.ContextSnippet{
		Origin:  bot.Name,
		Source:  aegistypes.SnippetFromJIT,
		Prompt:  prompt,
		Content: response,
	}
	b.snippets = append(b.snippets, snippet)
	b.forwarding.log.Debug("MCF JIT snippet added", "origin", bot.Name, "snippets", len(b.snippets))
	return snippet, nil
}

// Len returns the number of collected snippets.
func (b *MCFBuilder) Len() int {
	return len(b.snippets)
}

// Snippets returns a copy of the collected snippets in insertion order.
func (b *MCFBuilder) Snippets() []aegistypes.ContextSnippet {
	out := make([]aegistypes.ContextSnippet, len(b.snippets))
	copy(out, b.snippets)
	return out
}

// Finish sends every collected snippet plus instruction to target.
// Finishing without snippets is rejected before anything is sent.
func (b *MCFBuilder) Finish(ctx context.Context, target, instruction string) (ForwardResult, error) {
	if len(b.snippets) == 0 {
		return ForwardResult{}, &aegistypes.PreconditionError{Reason: "no context collected; add at least one snippet before finishing"}
	}
	if strings.TrimSpace(instruction) == "" {
		return ForwardResult{}, &aegistypes.PreconditionError{Reason: "instruction cannot be empty"}
	}

	targetBot, err := b.forwarding.workspace.Get(target)
	if err != nil {
		return ForwardResult{}, err
	}

	prompt := BuildMCFPrompt(b.snippets, instruction)
	b.forwarding.log.Debug("Dispatching MCF", "target", targetBot.Name, "snippets", len(b.snippets), "payload_length", len(prompt))

	response, err := b.forwarding.sessions.SendAs(ctx, targetBot.Name, prompt, journal.KindMCF, snippetSources(b.snippets))
	if err != nil {
		return ForwardResult{}, err
	}
	return ForwardResult{Target: targetBot.Name, Prompt: prompt, Response: response}, nil
}

// BuildForwardPrompt wraps a single message from origin as context for instruction.
func BuildForwardPrompt(origin, displayID, content, instruction string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "I am providing you with context from a different agent, '%s'.\n", origin)
	fmt.Fprintf(&sb, "--- CONTEXT from %s (msg %s) ---\n", origin, displayID)
	sb.WriteString(content)
	sb.WriteString("\n--- END CONTEXT ---\n\n")
	fmt.Fprintf(&sb, "Based on that context, here is my request: %s", instruction)
	return sb.String()
}

// BuildMCFPrompt concatenates snippets in order, followed by instruction.
func BuildMCFPrompt(snippets []aegistypes.ContextSnippet, instruction string) string {
	var sb strings.Builder
	sb.WriteString("I am providing you with context from multiple sources.\n")
	for _, snippet := range snippets {
		fmt.Fprintf(&sb, "--- CONTEXT from %s (%s) ---\n", snippet.Origin, snippet.Label())
		if snippet.Source == aegistypes.SnippetFromJIT {
			fmt.Fprintf(&sb, "Q: %s\nA: %s", snippet.Prompt, snippet.Content)
		} else {
			sb.WriteString(snippet.Content)
		}
		sb.WriteString("\n--- END CONTEXT ---\n\n")
	}
	fmt.Fprintf(&sb, "Based on all of the above context, here is my request: %s", instruction)
	return sb.String()
}

func snippetSources(snippets []aegistypes.ContextSnippet) string {
	sources := make([]string, 0, len(snippets))
	for _, s := range snippets {
		if s.Source == aegistypes.SnippetFromJIT {
			sources = append(sources, s.Origin+":JIT")
		} else {
			sources = append(sources, s.Origin+":"+s.DisplayID)
		}
	}
	return strings.Join(sources, ",")
}
