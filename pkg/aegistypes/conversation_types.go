// Package aegistypes defines the conversation, capability and error types shared across Aegis.
// This file contains the core types for turn-by-turn bot conversations and context snippets.
package aegistypes

import "fmt"

// Role identifies who authored a turn.
type Role string

const (
	// RoleUser marks a turn written by the user (including system instructions).
	RoleUser Role = "user"
	// RoleModel marks a turn produced by the language model.
	RoleModel Role = "model"
)

// ParseRole maps a persisted role marker to a Role.
// Only the explicit "model" marker yields RoleModel; anything else, including "", is a user turn.
func ParseRole(marker string) Role {
	if marker == string(RoleModel) {
		return RoleModel
	}
	return RoleUser
}

// Turn is one message in a conversation. Its role never changes after creation.
type Turn struct {
	Role    Role
	Content string
}

// NewTurn creates a turn with the given role and content.
func NewTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content}
}

// Conversation is the ordered, append-only sequence of turns for one bot.
type Conversation struct {
	turns []Turn
}

// NewConversation creates a conversation holding a copy of the given turns.
func NewConversation(turns ...Turn) *Conversation {
	c := &Conversation{turns: make([]Turn, 0, len(turns))}
	c.turns = append(c.turns, turns...)
	return c
}

// Append adds a turn at the end of the conversation.
func (c *Conversation) Append(role Role, content string) {
	c.turns = append(c.turns, NewTurn(role, content))
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Turns returns a snapshot copy of the turns; mutating it does not affect the conversation.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Clone returns an independent copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	return NewConversation(c.turns...)
}

// Equal reports whether both conversations hold the same turns in the same order.
func (c *Conversation) Equal(other *Conversation) bool {
	if c == nil || other == nil {
		return c == other
	}
	if len(c.turns) != len(other.turns) {
		return false
	}
	for i := range c.turns {
		if c.turns[i] != other.turns[i] {
			return false
		}
	}
	return true
}

// SnippetSource tells whether a context snippet copies a stored turn or a fresh stateless query.
type SnippetSource int

const (
	// SnippetFromTurn is a snippet copied from an existing turn addressed by display id.
	SnippetFromTurn SnippetSource = iota
	// SnippetFromJIT is a snippet produced by a just-in-time stateless query.
	SnippetFromJIT
)

// ContextSnippet is an immutable block of context destined for another bot's prompt.
type ContextSnippet struct {
	Origin    string        // Canonical name of the bot the context came from
	Source    SnippetSource // Turn copy or JIT query
	DisplayID string        // Display id of the copied turn (SnippetFromTurn only)
	Prompt    string        // Prompt sent to the origin bot (SnippetFromJIT only)
	Content   string        // Turn content or JIT response
}

// Label describes where the snippet came from, e.g. "msg A3" or "JIT query".
func (s ContextSnippet) Label() string {
	if s.Source == SnippetFromJIT {
		return "JIT query"
	}
	return fmt.Sprintf("msg %s", s.DisplayID)
}
