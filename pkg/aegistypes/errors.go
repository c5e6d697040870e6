package aegistypes

import "fmt"

// UnknownBotError is returned when a bot name has no case-insensitive match in the workspace.
type UnknownBotError struct {
	Name string
}

func (e *UnknownBotError) Error() string {
	return fmt.Sprintf("bot '%s' not found", e.Name)
}

// DuplicateBotError is returned by creation paths when a bot name is already taken.
type DuplicateBotError struct {
	Name string
}

func (e *DuplicateBotError) Error() string {
	return fmt.Sprintf("bot '%s' already exists", e.Name)
}

// MessageNotFoundError is returned when a display id does not resolve in a bot's conversation.
type MessageNotFoundError struct {
	Bot string
	ID  string
}

func (e *MessageNotFoundError) Error() string {
	return fmt.Sprintf("message '%s' not found in '%s'", e.ID, e.Bot)
}

// RemoteQueryError wraps a failure of the configured model capability.
type RemoteQueryError struct {
	Bot string
	Err error
}

func (e *RemoteQueryError) Error() string {
	return fmt.Sprintf("remote query for '%s' failed: %v", e.Bot, e.Err)
}

func (e *RemoteQueryError) Unwrap() error {
	return e.Err
}

// PersistenceError represents a bot file or project read/parse/write failure.
type PersistenceError struct {
	Op   string // "read", "parse", "write", "create", "delete"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PreconditionError is returned when an operation is rejected before any side effect.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}
