package output

import "sync"

// The package-level printer backs the CLI's one-shot messages (version output,
// fatal errors) and is replaced by the shell printer once a session starts.
var (
	globalMu      sync.RWMutex
	globalPrinter = NewPrinter()
)

func SetGlobalPrinter(printer *Printer) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalPrinter = printer
}

func GetGlobalPrinter() *Printer {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalPrinter
}

// ConfigureGlobal replaces the package-level printer with one built from options.
func ConfigureGlobal(options ...Option) {
	SetGlobalPrinter(NewPrinter(options...))
}

func Println(text string) { GetGlobalPrinter().Println(text) }
func Info(text string)    { GetGlobalPrinter().Info(text) }
func Success(text string) { GetGlobalPrinter().Success(text) }
func Warning(text string) { GetGlobalPrinter().Warning(text) }
func Error(text string)   { GetGlobalPrinter().Error(text) }
