package output

import (
	"fmt"
	"iter"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"aegis/internal/journal"
	"aegis/internal/stringprocessing"
	"aegis/pkg/aegistypes"
)

// Preview layout: two columns of PreviewColumnWidth separated by " | ".
const (
	PreviewColumnWidth = 45
	previewTextWidth   = PreviewColumnWidth - 8
	previewRuleWidth   = PreviewColumnWidth*2 + 3
	messageRuleWidth   = 60
	statusRule         = "------------------------"
	journalPreview     = 80
)

// StatusView describes the workspace for the status screen.
type StatusView struct {
	Project  string
	Provider string // "" hides the provider line
	Bots     iter.Seq2[string, int]
}

// Status prints the workspace status screen.
func (p *Printer) Status(view StatusView) {
	p.Heading("--- Workspace Status ---")
	if view.Project != "" {
		p.Println("Active project: " + view.Project)
	}
	if view.Provider != "" {
		p.Println("Provider: " + view.Provider)
	}

	empty := true
	if view.Bots != nil {
		for name, count := range view.Bots {
			if empty {
				p.Println("Bots loaded:")
				empty = false
			}
			p.Println(fmt.Sprintf("- %s (%d messages)", name, count))
		}
	}
	if empty {
		p.Println("Workspace is empty. Use 'project' to populate workspace.")
	}
	p.Muted(statusRule + "\n")
}

// BotPreview prints the two-column conversation preview: user turns on the left,
// model turns on the right, each as "[id] preview".
func (p *Printer) BotPreview(bot string, turns []aegistypes.Turn) {
	p.Heading(fmt.Sprintf("--- Conversation Preview: %s ---\n", bot))
	if len(turns) == 0 {
		p.Println("History is empty.")
		return
	}

	entries := stringprocessing.AssignDisplayIDs(turns)
	users := stringprocessing.FilterByRole(entries, aegistypes.RoleUser)
	models := stringprocessing.FilterByRole(entries, aegistypes.RoleModel)

	p.Println(padRight("--- USER ---", PreviewColumnWidth) + "   " + padRight("--- ASSISTANT ---", PreviewColumnWidth))
	rule := strings.Repeat("=", PreviewColumnWidth)
	p.Println(rule + "   " + rule)

	rows := max(len(users), len(models))
	for i := 0; i < rows; i++ {
		left, right := "", ""
		if i < len(users) {
			left = p.previewCell(SemanticUser, users[i])
		}
		if i < len(models) {
			right = p.previewCell(SemanticModel, models[i])
		}
		p.Println(strings.TrimRight(padRight(left, PreviewColumnWidth)+" | "+padRight(right, PreviewColumnWidth), " "))
	}
	p.Println("\n" + strings.Repeat("=", previewRuleWidth))
}

func (p *Printer) previewCell(semantic SemanticType, entry stringprocessing.DisplayEntry) string {
	tag := p.Style(semantic, "["+entry.ID+"]")
	return tag + " " + stringprocessing.ShortenPreview(entry.Turn.Content, previewTextWidth)
}

// FullMessage prints one turn in full. Styled printers render the body as markdown.
func (p *Printer) FullMessage(bot string, entry stringprocessing.DisplayEntry) {
	role := "User"
	if entry.Turn.Role == aegistypes.RoleModel {
		role = "Assistant"
	}
	p.Heading(fmt.Sprintf("--- Full Text for Message %s from '%s' (%s) ---", strings.ToUpper(entry.ID), bot, role))
	p.Println(p.renderBody(entry.Turn.Content))
	p.Muted(strings.Repeat("-", messageRuleWidth))
}

// Response prints a model reply received through forwarding or MCF.
func (p *Printer) Response(bot, text string) {
	p.Heading(fmt.Sprintf("\n--- Response from %s ---", bot))
	p.Println(p.renderBody(text))
	p.Muted(strings.Repeat("-", messageRuleWidth))
}

// Reply prints a direct chat reply as "<bot>: text".
func (p *Printer) Reply(bot, text string) {
	p.Println(p.Style(SemanticModel, bot+":") + " " + p.renderBody(text))
}

// Menu prints a numbered selection list under title, numbering from 1.
func (p *Printer) Menu(title string, items []string) {
	if title != "" {
		p.Heading(title)
	}
	for i, item := range items {
		p.Println(fmt.Sprintf("  %d: %s", i+1, item))
	}
}

// JournalEntries prints journaled exchanges, newest first as given.
func (p *Printer) JournalEntries(entries []journal.Entry) {
	p.Heading("--- Exchange Journal ---")
	if len(entries) == 0 {
		p.Println("No exchanges recorded.")
		p.Muted(statusRule)
		return
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  %-9s %s", e.CreatedAt.UTC().Format("2006-01-02 15:04:05"), e.Kind, e.Bot)
		if e.Source != "" {
			line += " <- " + e.Source
		}
		if e.Offline {
			line += " (offline)"
		}
		p.Println(line)
		p.Muted("    > " + stringprocessing.ShortenPreview(e.Prompt, journalPreview))
		p.Muted("    < " + stringprocessing.ShortenPreview(e.Response, journalPreview))
	}
	p.Muted(statusRule)
}

func (p *Printer) renderBody(text string) string {
	if !p.IsStylable() || p.testMode {
		return WrapText(text, p.wrapWidth)
	}
	return p.markdownRenderer().Render(text)
}

func (p *Printer) markdownRenderer() *MarkdownRenderer {
	p.markdownOnce.Do(func() {
		p.markdown = NewMarkdownRenderer(p.styleProvider.GetThemeType(), p.wrapWidth)
	})
	return p.markdown
}

// padRight pads s with spaces to width visible columns, ignoring ANSI sequences.
func padRight(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
