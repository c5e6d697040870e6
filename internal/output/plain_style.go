package output

// glyphStyle prefixes text with a status glyph so the meaning of a status line
// survives without color.
type glyphStyle string

func (g glyphStyle) Render(text string) string {
	return string(g) + text
}

var statusGlyphs = map[SemanticType]glyphStyle{
	SemanticSuccess: "✓ ",
	SemanticWarning: "⚠ ",
	SemanticError:   "✗ ",
	SemanticInfo:    "ℹ ",
}

// plainStyle is the fallback used when a printer has no usable StyleProvider.
// Semantics without a glyph render unchanged.
func plainStyle(semantic SemanticType) TextStyle {
	return statusGlyphs[semantic]
}
