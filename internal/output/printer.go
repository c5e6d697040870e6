package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// DefaultWrapWidth is the column full message bodies are wrapped at.
const DefaultWrapWidth = 90

// Printer writes semantic lines to a writer. Styling and markdown arrive through
// options; without a usable StyleProvider status lines fall back to glyph prefixes.
type Printer struct {
	styleProvider StyleProvider
	writer        io.Writer
	plain         bool
	testMode      bool
	silent        bool
	wrapWidth     int

	markdownOnce sync.Once
	markdown     *MarkdownRenderer

	mu sync.Mutex
}

// NewPrinter creates a printer writing to os.Stdout unless WithWriter says otherwise.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{writer: os.Stdout, wrapWidth: DefaultWrapWidth}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *Printer) Print(text string) { p.emit(SemanticPlain, text, false) }

func (p *Printer) Printf(format string, args ...any) {
	p.emit(SemanticPlain, fmt.Sprintf(format, args...), false)
}

func (p *Printer) Println(text string) { p.emit(SemanticPlain, text, true) }
func (p *Printer) Info(text string)    { p.emit(SemanticInfo, text, true) }
func (p *Printer) Success(text string) { p.emit(SemanticSuccess, text, true) }
func (p *Printer) Warning(text string) { p.emit(SemanticWarning, text, true) }
func (p *Printer) Error(text string)   { p.emit(SemanticError, text, true) }

// Heading prints a section banner such as "--- Workspace Status ---".
func (p *Printer) Heading(text string) { p.emit(SemanticHeading, text, true) }

// Muted prints separators and secondary details.
func (p *Printer) Muted(text string) { p.emit(SemanticMuted, text, true) }

// Style renders text for the given semantic type without writing it.
// Views use it to style cells before padding them into columns.
func (p *Printer) Style(semantic SemanticType, text string) string {
	if semantic == SemanticPlain || !p.IsStylable() {
		return text
	}
	return p.styleProvider.GetStyle(string(semantic)).Render(text)
}

// IsStylable reports whether the printer applies its StyleProvider.
func (p *Printer) IsStylable() bool {
	return !p.plain && p.styleProvider != nil && p.styleProvider.IsAvailable()
}

// WrapWidth returns the column full message bodies are wrapped at.
func (p *Printer) WrapWidth() int {
	return p.wrapWidth
}

// IsTestMode reports whether the printer was configured with TestMode.
func (p *Printer) IsTestMode() bool {
	return p.testMode
}

func (p *Printer) emit(semantic SemanticType, text string, newline bool) {
	if p.silent {
		return
	}

	var style TextStyle = plainStyle(semantic)
	if p.IsStylable() {
		style = p.styleProvider.GetStyle(string(semantic))
	}
	line := style.Render(text)
	if newline && !strings.HasSuffix(line, "\n") {
		line += "\n"
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.writer, line)
}
