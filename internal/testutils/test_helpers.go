package testutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"aegis/pkg/aegistypes"
)

// Exchange returns a user turn followed by its model reply.
func Exchange(user, model string) []aegistypes.Turn {
	return []aegistypes.Turn{
		aegistypes.NewTurn(aegistypes.RoleUser, user),
		aegistypes.NewTurn(aegistypes.RoleModel, model),
	}
}

// Turns builds alternating user/model turns starting with a user turn.
func Turns(contents ...string) []aegistypes.Turn {
	turns := make([]aegistypes.Turn, 0, len(contents))
	for i, content := range contents {
		role := aegistypes.RoleUser
		if i%2 == 1 {
			role = aegistypes.RoleModel
		}
		turns = append(turns, aegistypes.NewTurn(role, content))
	}
	return turns
}

// BotFileJSON renders turns in the chunkedPrompt bot-file format.
func BotFileJSON(t *testing.T, turns ...aegistypes.Turn) string {
	t.Helper()

	type chunk struct {
		Text string `json:"text"`
		Role string `json:"role"`
	}
	chunks := make([]chunk, 0, len(turns))
	for _, turn := range turns {
		chunks = append(chunks, chunk{Text: turn.Content, Role: string(turn.Role)})
	}
	doc := map[string]any{"chunkedPrompt": map[string]any{"chunks": chunks}}

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(data)
}

// WriteBotFile writes a bot file named <name>.json into dir and returns its path.
func WriteBotFile(t *testing.T, dir, name string, turns ...aegistypes.Turn) string {
	t.Helper()
	return WriteFile(t, filepath.Join(dir, name+".json"), BotFileJSON(t, turns...))
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// NewRoot creates a temporary Aegis root with projects/ and templates/ directories.
func NewRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"projects", "templates"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0755))
	}
	return root
}
