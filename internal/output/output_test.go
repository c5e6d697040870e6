package output

import (
	"fmt"
	"iter"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/journal"
	"aegis/internal/stringprocessing"
	"aegis/pkg/aegistypes"
)

func newTestPrinter() (*Printer, *CaptureBuffer) {
	buffer := NewCaptureBuffer()
	return NewPrinter(WithWriter(buffer), TestMode()), buffer
}

func botCounts(pairs ...any) iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		for i := 0; i+1 < len(pairs); i += 2 {
			if !yield(pairs[i].(string), pairs[i+1].(int)) {
				return
			}
		}
	}
}

func TestPrinterBasicOutput(t *testing.T) {
	printer, buffer := newTestPrinter()

	printer.Print("hello")
	printer.Println("world")
	printer.Printf("number: %d", 42)

	assert.Equal(t, "helloworld\nnumber: 42", buffer.String())
}

func TestPrinterSemanticOutput(t *testing.T) {
	printer, buffer := newTestPrinter()

	printer.Info("information")
	printer.Success("completed")
	printer.Warning("careful")
	printer.Error("failed")
	printer.Heading("banner")

	assert.Equal(t, []string{
		"ℹ information",
		"✓ completed",
		"⚠ careful",
		"✗ failed",
		"banner",
	}, buffer.Lines())
}

func TestPrinterWithMockStyleProvider(t *testing.T) {
	out := CaptureOutputWithStyles(NewMockStyleProvider(), func(p *Printer) {
		p.Info("test message")
		p.Success("success message")
		p.Print(p.Style(SemanticUser, "[U1]"))
	})

	assert.Contains(t, out, "[info]test message[/info]")
	assert.Contains(t, out, "[success]success message[/success]")
	assert.Contains(t, out, "[user][U1][/user]")
}

func TestPrinterOptions(t *testing.T) {
	t.Run("unavailable provider falls back to plain", func(t *testing.T) {
		provider := NewMockStyleProvider()
		provider.SetAvailable(false)
		out := CaptureOutputWithStyles(provider, func(p *Printer) {
			assert.False(t, p.IsStylable())
			p.Info("x")
		})
		assert.Equal(t, "ℹ x\n", out)
	})

	t.Run("silent", func(t *testing.T) {
		buffer := NewCaptureBuffer()
		printer := NewPrinter(WithWriter(buffer), Silent())
		printer.Println("hidden")
		printer.ClearScreen()
		assert.Zero(t, buffer.Len())
	})

	t.Run("test mode skips screen control", func(t *testing.T) {
		printer, buffer := newTestPrinter()
		printer.ClearScreen()
		printer.ClearLine()
		assert.Zero(t, buffer.Len())
		assert.True(t, printer.IsTestMode())
	})
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		view     StatusView
		expected []string
	}{
		{
			name: "empty workspace",
			view: StatusView{},
			expected: []string{
				"--- Workspace Status ---",
				"Workspace is empty. Use 'project' to populate workspace.",
				statusRule,
			},
		},
		{
			name: "loaded bots",
			view: StatusView{
				Project:  "demo",
				Provider: "gemini",
				Bots:     botCounts("Alpha", 3, "Beta", 0),
			},
			expected: []string{
				"--- Workspace Status ---",
				"Active project: demo",
				"Provider: gemini",
				"Bots loaded:",
				"- Alpha (3 messages)",
				"- Beta (0 messages)",
				statusRule,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			printer, buffer := newTestPrinter()
			printer.Status(tt.view)
			assert.Equal(t, tt.expected, buffer.Lines()[:len(tt.expected)])
		})
	}
}

func TestBotPreview(t *testing.T) {
	printer, buffer := newTestPrinter()
	turns := []aegistypes.Turn{
		aegistypes.NewTurn(aegistypes.RoleUser, "Hello there"),
		aegistypes.NewTurn(aegistypes.RoleModel, "Hi! How can I help?"),
		aegistypes.NewTurn(aegistypes.RoleUser, "Tell me a joke about a very long and winding road trip"),
	}

	printer.BotPreview("Alpha", turns)

	lines := buffer.Lines()
	require.Len(t, lines, 8)
	assert.Equal(t, "--- Conversation Preview: Alpha ---", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, fmt.Sprintf("%-45s   %-45s", "--- USER ---", "--- ASSISTANT ---"), lines[2])
	assert.Equal(t, strings.Repeat("=", 45)+"   "+strings.Repeat("=", 45), lines[3])
	assert.Equal(t, fmt.Sprintf("%-45s | %s", "[U1] Hello there", "[A1] Hi! How can I help?"), lines[4])
	assert.Equal(t, fmt.Sprintf("%-45s |", "[U2] Tell me a joke about a very long..."), lines[5])
	assert.Equal(t, "", lines[6])
	assert.Equal(t, strings.Repeat("=", 93), lines[7])
}

func TestBotPreviewEmptyHistory(t *testing.T) {
	printer, buffer := newTestPrinter()
	printer.BotPreview("Alpha", nil)
	assert.Equal(t, []string{"--- Conversation Preview: Alpha ---", "", "History is empty."}, buffer.Lines())
}

func TestFullMessage(t *testing.T) {
	printer, buffer := newTestPrinter()
	entry := stringprocessing.DisplayEntry{
		ID:   "a1",
		Turn: aegistypes.NewTurn(aegistypes.RoleModel, "The answer is 42."),
	}

	printer.FullMessage("Alpha", entry)

	assert.Equal(t, []string{
		"--- Full Text for Message A1 from 'Alpha' (Assistant) ---",
		"The answer is 42.",
		strings.Repeat("-", 60),
	}, buffer.Lines())
}

func TestFullMessageWrapsLongText(t *testing.T) {
	buffer := NewCaptureBuffer()
	printer := NewPrinter(WithWriter(buffer), TestMode(), WithWrapWidth(7))

	printer.FullMessage("Alpha", stringprocessing.DisplayEntry{
		ID:   "U1",
		Turn: aegistypes.NewTurn(aegistypes.RoleUser, "aaa bbb ccc"),
	})

	lines := buffer.Lines()
	assert.Equal(t, "--- Full Text for Message U1 from 'Alpha' (User) ---", lines[0])
	assert.Equal(t, []string{"aaa bbb", "ccc"}, lines[1:3])
}

func TestResponseAndReply(t *testing.T) {
	printer, buffer := newTestPrinter()

	printer.Response("Beta", "Done.")
	printer.Reply("Beta", "Hello")

	assert.Equal(t, []string{
		"",
		"--- Response from Beta ---",
		"Done.",
		strings.Repeat("-", 60),
		"Beta: Hello",
	}, buffer.Lines())
}

func TestMenu(t *testing.T) {
	printer, buffer := newTestPrinter()
	printer.Menu("Select a project:", []string{"demo", "research"})
	assert.Equal(t, []string{"Select a project:", "  1: demo", "  2: research"}, buffer.Lines())
}

func TestJournalEntries(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		printer, buffer := newTestPrinter()
		printer.JournalEntries(nil)
		assert.Contains(t, buffer.String(), "No exchanges recorded.")
	})

	t.Run("entries", func(t *testing.T) {
		printer, buffer := newTestPrinter()
		printer.JournalEntries([]journal.Entry{
			{
				CreatedAt: time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC),
				Kind:      journal.KindForward,
				Bot:       "Beta",
				Source:    "Alpha:A1",
				Prompt:    "Summarize",
				Response:  "Summary",
				Offline:   true,
			},
		})

		lines := buffer.Lines()
		require.Len(t, lines, 5)
		assert.Equal(t, "2025-01-01 00:00:01  forward   Beta <- Alpha:A1 (offline)", lines[1])
		assert.Equal(t, "    > Summarize", lines[2])
		assert.Equal(t, "    < Summary", lines[3])
	})
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "abcdef", padRight("abcdef", 4))
	assert.Equal(t, "\x1b[1mab\x1b[0m  ", padRight("\x1b[1mab\x1b[0m", 4))
}

func TestThemeStyleProvider(t *testing.T) {
	tests := []struct {
		name      string
		theme     string
		themeType string
		wantErr   bool
	}{
		{name: "default", theme: "", themeType: "auto"},
		{name: "dark", theme: "Dark", themeType: "dark"},
		{name: "light", theme: "light", themeType: "light"},
		{name: "plain", theme: "plain", themeType: "notty"},
		{name: "unknown", theme: "neon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewThemeStyleProvider(tt.theme)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, provider.IsAvailable())
			assert.Equal(t, tt.themeType, provider.GetThemeType())
			assert.Contains(t, provider.GetStyle(string(SemanticInfo)).Render("text"), "text")
			assert.Equal(t, "x", provider.GetStyle("unknown-semantic").Render("x"))
		})
	}
}

func TestMarkdownRendererFallback(t *testing.T) {
	renderer := NewMarkdownRenderer("notty", 20)
	out := renderer.Render("# Title\n\nbody text")
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "body text")
}

func TestSpinner(t *testing.T) {
	printer, buffer := newTestPrinter()
	spinner := NewSpinner(printer, WithSpinnerInterval(5*time.Millisecond))

	stop := spinner.Start("Sending to Alpha...")
	time.Sleep(20 * time.Millisecond)
	stop()

	out := buffer.String()
	assert.Contains(t, out, "\r[...Sending to Alpha... "+SpinnerFrames[0]+" (0s)]")
	assert.True(t, strings.HasSuffix(out, "\r"))

	written := buffer.Len()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, written, buffer.Len(), "spinner must not draw after stop returns")

	assert.NotPanics(t, stop)
}

func TestSpinnerSilentPrinter(t *testing.T) {
	buffer := NewCaptureBuffer()
	spinner := NewSpinner(NewPrinter(WithWriter(buffer), Silent()))
	stop := spinner.Start("Sending to Alpha...")
	stop()
	assert.Zero(t, buffer.Len())
}

func TestGlobalPrinter(t *testing.T) {
	original := GetGlobalPrinter()
	defer SetGlobalPrinter(original)

	buffer := NewCaptureBuffer()
	ConfigureGlobal(WithWriter(buffer), TestMode())
	Println("plain")
	Info("info")
	Success("ok")
	Warning("warn")
	Error("bad")

	assert.Equal(t, []string{"plain", "ℹ info", "✓ ok", "⚠ warn", "✗ bad"}, buffer.Lines())
}
