package output

import (
	"bytes"
	"strings"
	"sync"
)

// CaptureBuffer is an io.Writer that records printer output for tests. It is safe
// for the spinner goroutine and the caller to write concurrently.
type CaptureBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewCaptureBuffer creates an empty capture buffer.
func NewCaptureBuffer() *CaptureBuffer {
	return &CaptureBuffer{}
}

func (c *CaptureBuffer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *CaptureBuffer) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Lines splits the captured output on newlines, ignoring one trailing newline.
func (c *CaptureBuffer) Lines() []string {
	content := c.String()
	if content == "" {
		return []string{}
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

func (c *CaptureBuffer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.Reset()
}

func (c *CaptureBuffer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Len()
}

// CaptureOutputWithStyles runs fn against a printer styled by provider and returns
// everything it wrote.
func CaptureOutputWithStyles(provider StyleProvider, fn func(*Printer)) string {
	buffer := NewCaptureBuffer()
	fn(NewPrinter(WithWriter(buffer), WithStyles(provider)))
	return buffer.String()
}

// MockStyleProvider renders every semantic as [semantic]text[/semantic], which makes
// styling visible in assertions.
type MockStyleProvider struct {
	available bool
}

// NewMockStyleProvider returns an available mock provider.
func NewMockStyleProvider() *MockStyleProvider {
	return &MockStyleProvider{available: true}
}

// SetAvailable toggles IsAvailable so tests can exercise the plain fallback.
func (m *MockStyleProvider) SetAvailable(available bool) {
	m.available = available
}

func (m *MockStyleProvider) GetStyle(semantic string) TextStyle {
	return markerStyle(semantic)
}

func (m *MockStyleProvider) IsAvailable() bool {
	return m.available
}

func (m *MockStyleProvider) GetThemeType() string {
	return "notty"
}

type markerStyle string

func (s markerStyle) Render(text string) string {
	return "[" + string(s) + "]" + text + "[/" + string(s) + "]"
}
