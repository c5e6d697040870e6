package stringprocessing

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/pkg/aegistypes"
)

func TestShortenPreview(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{
			name:     "fits unchanged",
			input:    "short text",
			width:    37,
			expected: "short text",
		},
		{
			name:     "newlines collapsed",
			input:    "line one\nline two\n\n  line three",
			width:    37,
			expected: "line one line two line three",
		},
		{
			name:     "cut at word boundary",
			input:    "the quick brown fox jumps over the lazy dog",
			width:    20,
			expected: "the quick brown...",
		},
		{
			name:     "single long word",
			input:    "supercalifragilisticexpialidocious",
			width:    10,
			expected: "superca...",
		},
		{
			name:     "empty",
			input:    "",
			width:    10,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShortenPreview(tt.input, tt.width)
			assert.Equal(t, tt.expected, got)
			assert.LessOrEqual(t, ansi.StringWidth(got), tt.width)
		})
	}
}

func TestSanitizeFileBase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{input: " Code Reviewer ", expected: "Code_Reviewer"},
		{input: "plain", expected: "plain"},
		{input: "v1.2", expected: "v1.2"},
		{input: "..hidden", expected: "..hidden"},
		{input: "", wantErr: true},
		{input: "   ", wantErr: true},
		{input: ".", wantErr: true},
		{input: "..", wantErr: true},
		{input: " .. ", wantErr: true},
		{input: "x/../../y", wantErr: true},
		{input: "a/b", wantErr: true},
		{input: `a\b`, wantErr: true},
		{input: "/etc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := SanitizeFileBase(tt.input)
			if tt.wantErr {
				var precondition *aegistypes.PreconditionError
				assert.ErrorAs(t, err, &precondition)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBotNameFromPath(t *testing.T) {
	assert.Equal(t, "Alpha", BotNameFromPath("projects/demo/Alpha.json"))
	assert.Equal(t, "Hypothesis Engine", BotNameFromPath("projects/Hypothesis Engine"))
	assert.Equal(t, "notes.txt", BotNameFromPath("/tmp/notes.txt"))
}

func TestTemplateDisplayName(t *testing.T) {
	assert.Equal(t, "Code Reviewer", TemplateDisplayName("Code_Reviewer.txt"))
}

func TestIsConfirmed(t *testing.T) {
	assert.True(t, IsConfirmed("yes"))
	assert.True(t, IsConfirmed(" yes\n"))
	assert.False(t, IsConfirmed("y"))
	assert.False(t, IsConfirmed("YES"))
	assert.False(t, IsConfirmed(""))
}
