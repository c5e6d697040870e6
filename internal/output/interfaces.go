// Package output renders everything Aegis prints to the console: plain and styled
// messages, the workspace views, markdown bodies, and the progress spinner.
// Styling is injected through StyleProvider so views stay testable as plain text.
package output

// StyleProvider maps semantic output types to styles.
type StyleProvider interface {
	GetStyle(semantic string) TextStyle
	// IsAvailable is false when the provider cannot style the current terminal.
	IsAvailable() bool
	// GetThemeType names the glamour style used for markdown bodies.
	GetThemeType() string
}

type TextStyle interface {
	Render(text string) string
}

// SemanticType tags a piece of output with its meaning so every theme styles it
// the same way.
type SemanticType string

const (
	SemanticPlain   SemanticType = "plain"
	SemanticInfo    SemanticType = "info"
	SemanticSuccess SemanticType = "success"
	SemanticWarning SemanticType = "warning"
	SemanticError   SemanticType = "error"
	SemanticHeading SemanticType = "heading"
	SemanticMuted   SemanticType = "muted"
	SemanticPrompt  SemanticType = "prompt"
	SemanticSpinner SemanticType = "spinner"

	// SemanticUser and SemanticModel color conversation text by author.
	SemanticUser  SemanticType = "user"
	SemanticModel SemanticType = "model"
)
