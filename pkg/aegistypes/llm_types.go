// Package aegistypes defines LLM capability interfaces consumed by Aegis.
// The remote model is opaque to the rest of the program: only these operations are used.
package aegistypes

import "context"

// ChatModel is a configured language-model capability.
// Providers (Gemini, OpenAI, Anthropic) implement it; a nil ChatModel means offline mode.
type ChatModel interface {
	// StartChat opens a stateful chat session seeded with the given turns.
	StartChat(ctx context.Context, history []Turn) (ChatSession, error)

	// GenerateStateless answers prompt using history as read-only context.
	// Neither history nor any session is modified.
	GenerateStateless(ctx context.Context, history []Turn, prompt string) (string, error)

	// ProviderName returns the provider identifier (e.g. "gemini").
	ProviderName() string
}

// ChatSession is a stateful conversation with the remote model.
type ChatSession interface {
	// Send submits prompt and blocks until the response arrives.
	// On error the session's history is left unchanged.
	Send(ctx context.Context, prompt string) (string, error)

	// History returns the session's current view of the conversation.
	History() []Turn
}
