// Package stringprocessing provides text utilities for Aegis.
// It contains display-id addressing for conversations and the helpers used to
// turn messages and file names into short, user-facing text.
package stringprocessing

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"aegis/pkg/aegistypes"
)

// PreviewPlaceholder is appended to previews that had to be shortened.
const PreviewPlaceholder = "..."

// BotFileExt is the extension used for bot files written by Aegis.
const BotFileExt = ".json"

// TemplateFileExt is the extension of system-instruction template files.
const TemplateFileExt = ".txt"

// ShortenPreview collapses all whitespace (including newlines) to single spaces and
// shortens the text to at most width terminal cells, cutting at word boundaries and
// appending PreviewPlaceholder when anything was dropped.
func ShortenPreview(text string, width int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if ansi.StringWidth(collapsed) <= width {
		return collapsed
	}

	budget := width - ansi.StringWidth(PreviewPlaceholder)
	if budget <= 0 {
		return ansi.Truncate(PreviewPlaceholder, width, "")
	}

	var b strings.Builder
	for _, word := range strings.Fields(collapsed) {
		sep := ""
		if b.Len() > 0 {
			sep = " "
		}
		if ansi.StringWidth(b.String()+sep+word) > budget {
			break
		}
		b.WriteString(sep)
		b.WriteString(word)
	}

	if b.Len() == 0 {
		// First word alone is wider than the budget.
		return ansi.Truncate(collapsed, budget, "") + PreviewPlaceholder
	}
	return b.String() + PreviewPlaceholder
}

// SanitizeFileBase turns a user-typed name into a file base name: surrounding
// whitespace is trimmed and inner spaces become underscores. The result must name
// an entry directly inside its directory; anything else is a PreconditionError.
func SanitizeFileBase(name string) (string, error) {
	base := strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	if base == "" {
		return "", &aegistypes.PreconditionError{Reason: "name cannot be empty"}
	}
	if !IsSafeFileBase(base) {
		return "", &aegistypes.PreconditionError{Reason: fmt.Sprintf("invalid name '%s': path separators, '.' and '..' are not allowed", name)}
	}
	return base, nil
}

// IsSafeFileBase reports whether base is a single path element other than "." and "..".
func IsSafeFileBase(base string) bool {
	return base != "" && base != "." && filepath.IsLocal(base) && !strings.ContainsAny(base, `/\`)
}

// BotNameFromPath derives a bot name from its file path by dropping the directory
// and a trailing ".json". Files without the extension keep their full base name.
func BotNameFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), BotFileExt)
}

// TemplateDisplayName converts a template file name into its user-facing name.
func TemplateDisplayName(fileName string) string {
	return strings.ReplaceAll(strings.TrimSuffix(fileName, TemplateFileExt), "_", " ")
}

// IsConfirmed reports whether a destructive-action prompt was answered with exactly "yes".
func IsConfirmed(answer string) bool {
	return strings.TrimSpace(answer) == "yes"
}
