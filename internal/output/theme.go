package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme names accepted by NewThemeStyleProvider.
const (
	ThemeDefault = "default"
	ThemeDark    = "dark"
	ThemeLight   = "light"
	ThemePlain   = "plain"
)

// lipglossTextStyle adapts lipgloss.Style to TextStyle.
type lipglossTextStyle struct {
	style lipgloss.Style
}

func (s lipglossTextStyle) Render(text string) string {
	return s.style.Render(text)
}

// ThemeStyleProvider implements StyleProvider with lipgloss styles.
type ThemeStyleProvider struct {
	name   string
	styles map[SemanticType]lipgloss.Style
}

// NewThemeStyleProvider builds the named theme. Unknown names are an error;
// an empty name selects the default theme.
func NewThemeStyleProvider(name string) (*ThemeStyleProvider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = ThemeDefault
	}

	var palette map[SemanticType]lipgloss.TerminalColor
	switch name {
	case ThemeDefault:
		palette = map[SemanticType]lipgloss.TerminalColor{
			SemanticInfo:    lipgloss.AdaptiveColor{Light: "#0969da", Dark: "#58a6ff"},
			SemanticSuccess: lipgloss.AdaptiveColor{Light: "#1a7f37", Dark: "#3fb950"},
			SemanticWarning: lipgloss.AdaptiveColor{Light: "#9a6700", Dark: "#d29922"},
			SemanticError:   lipgloss.AdaptiveColor{Light: "#cf222e", Dark: "#f85149"},
			SemanticHeading: lipgloss.AdaptiveColor{Light: "#8250df", Dark: "#bc8cff"},
			SemanticUser:    lipgloss.AdaptiveColor{Light: "#0550ae", Dark: "#79c0ff"},
			SemanticModel:   lipgloss.AdaptiveColor{Light: "#116329", Dark: "#7ee787"},
			SemanticMuted:   lipgloss.AdaptiveColor{Light: "#6e7781", Dark: "#8b949e"},
			SemanticPrompt:  lipgloss.AdaptiveColor{Light: "#953800", Dark: "#ffa657"},
			SemanticSpinner: lipgloss.AdaptiveColor{Light: "#0969da", Dark: "#58a6ff"},
		}
	case ThemeDark:
		palette = map[SemanticType]lipgloss.TerminalColor{
			SemanticInfo:    lipgloss.Color("39"),
			SemanticSuccess: lipgloss.Color("42"),
			SemanticWarning: lipgloss.Color("214"),
			SemanticError:   lipgloss.Color("203"),
			SemanticHeading: lipgloss.Color("141"),
			SemanticUser:    lipgloss.Color("117"),
			SemanticModel:   lipgloss.Color("120"),
			SemanticMuted:   lipgloss.Color("245"),
			SemanticPrompt:  lipgloss.Color("215"),
			SemanticSpinner: lipgloss.Color("39"),
		}
	case ThemeLight:
		palette = map[SemanticType]lipgloss.TerminalColor{
			SemanticInfo:    lipgloss.Color("25"),
			SemanticSuccess: lipgloss.Color("28"),
			SemanticWarning: lipgloss.Color("130"),
			SemanticError:   lipgloss.Color("160"),
			SemanticHeading: lipgloss.Color("91"),
			SemanticUser:    lipgloss.Color("24"),
			SemanticModel:   lipgloss.Color("22"),
			SemanticMuted:   lipgloss.Color("243"),
			SemanticPrompt:  lipgloss.Color("166"),
			SemanticSpinner: lipgloss.Color("25"),
		}
	case ThemePlain:
		palette = map[SemanticType]lipgloss.TerminalColor{}
	default:
		return nil, fmt.Errorf("unknown theme %q (available: default, dark, light, plain)", name)
	}

	styles := make(map[SemanticType]lipgloss.Style, len(palette))
	for semantic, color := range palette {
		style := lipgloss.NewStyle().Foreground(color)
		switch semantic {
		case SemanticHeading, SemanticError:
			style = style.Bold(true)
		case SemanticMuted:
			style = style.Faint(true)
		}
		styles[semantic] = style
	}

	return &ThemeStyleProvider{name: name, styles: styles}, nil
}

// Name returns the theme name.
func (t *ThemeStyleProvider) Name() string {
	return t.name
}

// GetStyle implements StyleProvider.GetStyle. Semantics without a themed style render unchanged.
func (t *ThemeStyleProvider) GetStyle(semantic string) TextStyle {
	if style, ok := t.styles[SemanticType(semantic)]; ok {
		return lipglossTextStyle{style: style}
	}
	return lipglossTextStyle{style: lipgloss.NewStyle()}
}

// IsAvailable implements StyleProvider.IsAvailable.
func (t *ThemeStyleProvider) IsAvailable() bool {
	return true
}

// GetThemeType implements StyleProvider.GetThemeType.
func (t *ThemeStyleProvider) GetThemeType() string {
	switch t.name {
	case ThemeDark, ThemeLight:
		return t.name
	case ThemePlain:
		return "notty"
	default:
		return "auto"
	}
}
