// Package botfile reads and writes bot conversations in the chunked-prompt JSON format.
//
// A bot file looks like:
//
//	{"chunkedPrompt": {"chunks": [{"text": "...", "role": "user", "isThought": false}]}}
//
// Thought chunks and chunks with empty text are dropped on load. Any role other than
// "model" loads as a user turn. Saving writes one chunk per turn in order, so a saved
// conversation loads back unchanged.
package botfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"aegis/internal/logger"
	"aegis/internal/stringprocessing"
	"aegis/pkg/aegistypes"
)

// chunkedPromptKey is the top-level key holding the conversation.
const chunkedPromptKey = "chunkedPrompt"

// Chunk is one entry of the persisted chunk list.
type Chunk struct {
	Text      string `json:"text"`
	Role      string `json:"role,omitempty"`
	IsThought bool   `json:"isThought,omitempty"`
}

// ChunkedPrompt is the persisted conversation body.
type ChunkedPrompt struct {
	Chunks []Chunk `json:"chunks"`
}

// File is the top-level bot file document.
type File struct {
	ChunkedPrompt ChunkedPrompt `json:"chunkedPrompt"`
}

// Decode parses bot file bytes into a conversation.
func Decode(data []byte) (*aegistypes.Conversation, error) {
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bot file: %w", err)
	}

	conv := aegistypes.NewConversation()
	for _, chunk := range file.ChunkedPrompt.Chunks {
		if chunk.IsThought || chunk.Text == "" {
			continue
		}
		conv.Append(aegistypes.ParseRole(chunk.Role), chunk.Text)
	}
	return conv, nil
}

// Encode renders a conversation as an indented bot file document.
func Encode(conv *aegistypes.Conversation) ([]byte, error) {
	return encodeWithExtras(conv, nil)
}

// encodeWithExtras writes the chunked prompt alongside top-level keys carried over
// from an existing file (e.g. model settings written by other tools).
func encodeWithExtras(conv *aegistypes.Conversation, extras map[string]json.RawMessage) ([]byte, error) {
	turns := conv.Turns()
	chunks := make([]Chunk, 0, len(turns))
	for _, turn := range turns {
		chunks = append(chunks, Chunk{Text: turn.Content, Role: string(turn.Role)})
	}

	body, err := marshalIndent(ChunkedPrompt{Chunks: chunks})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chunks: %w", err)
	}

	doc := make(map[string]json.RawMessage, len(extras)+1)
	for k, v := range extras {
		doc[k] = v
	}
	doc[chunkedPromptKey] = body

	return marshalIndent(doc)
}

func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads and decodes a bot file.
func Load(path string) (*aegistypes.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &aegistypes.PersistenceError{Op: "read", Path: path, Err: err}
	}

	conv, err := Decode(data)
	if err != nil {
		return nil, &aegistypes.PersistenceError{Op: "parse", Path: path, Err: err}
	}

	logger.Debug("Bot file loaded", "path", path, "turns", conv.Len())
	return conv, nil
}

// Save writes the conversation to path, replacing the chunk list. Other top-level keys
// of an existing, parseable file are preserved. The write goes through a temporary file
// in the same directory so a failed save never leaves a truncated bot file behind.
func Save(path string, conv *aegistypes.Conversation) error {
	extras := readExtras(path)

	data, err := encodeWithExtras(conv, extras)
	if err != nil {
		return &aegistypes.PersistenceError{Op: "write", Path: path, Err: err}
	}

	if err := writeFileAtomic(path, data); err != nil {
		return &aegistypes.PersistenceError{Op: "write", Path: path, Err: err}
	}

	logger.Debug("Bot file saved", "path", path, "turns", conv.Len())
	return nil
}

// Create bootstraps a new bot: a one-turn conversation holding systemInstruction as a
// user turn, persisted to path. It refuses to overwrite an existing file.
func Create(path, systemInstruction string) (*aegistypes.Conversation, error) {
	if strings.TrimSpace(systemInstruction) == "" {
		return nil, &aegistypes.PreconditionError{Reason: "system instruction cannot be empty"}
	}

	if _, err := os.Stat(path); err == nil {
		return nil, &aegistypes.DuplicateBotError{Name: stringprocessing.BotNameFromPath(path)}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, &aegistypes.PersistenceError{Op: "create", Path: path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &aegistypes.PersistenceError{Op: "create", Path: path, Err: err}
	}

	conv := aegistypes.NewConversation(aegistypes.NewTurn(aegistypes.RoleUser, systemInstruction))
	data, err := Encode(conv)
	if err != nil {
		return nil, &aegistypes.PersistenceError{Op: "create", Path: path, Err: err}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, &aegistypes.DuplicateBotError{Name: stringprocessing.BotNameFromPath(path)}
		}
		return nil, &aegistypes.PersistenceError{Op: "create", Path: path, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return nil, &aegistypes.PersistenceError{Op: "create", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return nil, &aegistypes.PersistenceError{Op: "create", Path: path, Err: err}
	}

	logger.Debug("Bot file created", "path", path)
	return conv, nil
}

// IsBotFile reports whether path is a regular file containing valid JSON.
// Project and standalone listings only consider such files.
func IsBotFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Valid(data)
}

func readExtras(path string) map[string]json.RawMessage {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	delete(doc, chunkedPromptKey)
	return doc
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace bot file: %w", err)
	}
	return nil
}
