package output

import (
	"github.com/muesli/termenv"
)

// ClearScreen clears the terminal and homes the cursor. Test-mode and silent
// printers skip it so captured output stays free of control sequences.
func (p *Printer) ClearScreen() {
	if p.silent || p.testMode {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	termenv.NewOutput(p.writer).ClearScreen()
}

// ClearLine erases the current line and returns the cursor to column 0.
func (p *Printer) ClearLine() {
	if p.silent || p.testMode {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	out := termenv.NewOutput(p.writer)
	out.ClearLine()
	_, _ = out.WriteString("\r")
}
