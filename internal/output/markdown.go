package output

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
)

// MarkdownRenderer renders model responses as terminal markdown.
// When glamour cannot be initialized it falls back to word-wrapped plain text.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewMarkdownRenderer creates a renderer for the given glamour theme ("dark", "light",
// "notty" or "auto") wrapping at width columns.
func NewMarkdownRenderer(theme string, width int) *MarkdownRenderer {
	if width <= 0 {
		width = DefaultWrapWidth
	}

	var renderer *glamour.TermRenderer
	var err error

	if theme != "" && theme != "auto" {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStylePath(theme),
			glamour.WithWordWrap(width),
		)
	}

	// Fallback to auto-detection if theme-specific rendering fails
	if renderer == nil || err != nil {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
			glamour.WithEnvironmentConfig(),
		)
	}
	if err != nil {
		renderer = nil
	}

	return &MarkdownRenderer{renderer: renderer, width: width}
}

// Render returns text rendered as markdown, or wrapped plain text when rendering fails.
func (m *MarkdownRenderer) Render(text string) string {
	if m.renderer != nil {
		rendered, err := m.renderer.Render(text)
		if err == nil && strings.TrimSpace(rendered) != "" {
			return strings.Trim(rendered, "\n")
		}
	}
	return WrapText(text, m.width)
}

// IsAvailable reports whether glamour rendering is active.
func (m *MarkdownRenderer) IsAvailable() bool {
	return m.renderer != nil
}

// WrapText word-wraps text at width columns, keeping existing line breaks.
func WrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	return ansi.Wordwrap(text, width, "")
}
