package output

import "io"

// Option configures a Printer.
type Option func(*Printer)

// WithStyles installs provider. A nil or unavailable provider leaves the printer plain.
func WithStyles(provider StyleProvider) Option {
	return func(p *Printer) {
		if provider != nil && provider.IsAvailable() {
			p.styleProvider = provider
		}
	}
}

func WithWriter(writer io.Writer) Option {
	return func(p *Printer) {
		if writer != nil {
			p.writer = writer
		}
	}
}

// TestMode makes output deterministic: plain text, raw message bodies instead of
// markdown, no spinner animation and no screen control sequences.
func TestMode() Option {
	return func(p *Printer) {
		p.plain = true
		p.testMode = true
	}
}

func Silent() Option {
	return func(p *Printer) { p.silent = true }
}

// WithWrapWidth sets the column full message bodies are wrapped at.
func WithWrapWidth(width int) Option {
	return func(p *Printer) {
		if width > 0 {
			p.wrapWidth = width
		}
	}
}
