package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/muesli/termenv"
)

// SpinnerFrames are the braille frames cycled by Spinner.
var SpinnerFrames = []string{"⢿", "⣻", "⣽", "⣾", "⣷", "⣯", "⣟", "⡿"}

// DefaultSpinnerInterval is the delay between spinner frames.
const DefaultSpinnerInterval = 100 * time.Millisecond

// Spinner draws "[...label frame (Ns)]" on the current line while a request is in flight.
// It satisfies the progress-indicator contract of the session service: the function
// returned by Start blocks until the spinner goroutine has erased its line and exited.
type Spinner struct {
	printer  *Printer
	interval time.Duration
	now      func() time.Time
}

// SpinnerOption configures a Spinner.
type SpinnerOption func(*Spinner)

// WithSpinnerInterval sets the frame interval.
func WithSpinnerInterval(d time.Duration) SpinnerOption {
	return func(s *Spinner) {
		if d > 0 {
			s.interval = d
		}
	}
}

// NewSpinner creates a spinner drawing through printer's writer and styles.
func NewSpinner(printer *Printer, opts ...SpinnerOption) *Spinner {
	s := &Spinner{
		printer:  printer,
		interval: DefaultSpinnerInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins animating label and returns the stop function. Silent printers get a no-op.
func (s *Spinner) Start(label string) (stop func()) {
	if s.printer == nil || s.printer.silent {
		return func() {}
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	started := s.now()

	go func() {
		defer close(finished)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for frame := 0; ; frame++ {
			elapsed := int(s.now().Sub(started).Seconds())
			text := fmt.Sprintf("[...%s %s (%ds)]", label, SpinnerFrames[frame%len(SpinnerFrames)], elapsed)
			s.draw("\r" + s.printer.Style(SemanticSpinner, text))

			select {
			case <-done:
				s.erase()
				return
			case <-ticker.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-finished
		})
	}
}

func (s *Spinner) draw(text string) {
	s.printer.mu.Lock()
	defer s.printer.mu.Unlock()
	_, _ = io.WriteString(s.printer.writer, text)
}

func (s *Spinner) erase() {
	s.printer.mu.Lock()
	defer s.printer.mu.Unlock()
	if s.printer.testMode {
		_, _ = io.WriteString(s.printer.writer, "\r")
		return
	}
	out := termenv.NewOutput(s.printer.writer)
	out.ClearLine()
	_, _ = out.WriteString("\r")
}
