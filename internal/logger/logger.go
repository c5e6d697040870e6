// Package logger holds the process-wide charmbracelet/log logger. Levels come from
// the --log-level flag, then AEGIS_LOG_LEVEL, then info.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const LevelEnvVar = "AEGIS_LOG_LEVEL"

// Logger is shared by the package-level helpers below.
var Logger = newLogger(os.Stderr, log.InfoLevel)

// sink is where Logger and every component logger write.
var sink io.Writer = os.Stderr

func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.New(w)
	l.SetTimeFormat("")
	l.SetLevel(level)
	return l
}

// Configure rebuilds Logger from CLI settings. A non-empty logFile is opened in
// append mode and replaces stderr.
func Configure(logLevel, logFile string, testMode bool) error {
	if logLevel == "" {
		logLevel = os.Getenv(LevelEnvVar)
	}

	var w io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return err
		}
		w = f
	}

	sink = w
	Logger = newLogger(w, ParseLevel(logLevel))
	Logger.SetReportTimestamp(!testMode)
	return nil
}

// SetOutput redirects Logger to w at its current level.
func SetOutput(w io.Writer) {
	sink = w
	Logger = newLogger(w, Logger.GetLevel())
}

// ParseLevel maps a level name to a log.Level; unknown names mean info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	}
	return log.InfoLevel
}

func Debug(msg any, keyvals ...any) { Logger.Debug(msg, keyvals...) }
func Info(msg any, keyvals ...any)  { Logger.Info(msg, keyvals...) }
func Warn(msg any, keyvals ...any)  { Logger.Warn(msg, keyvals...) }
func Error(msg any, keyvals ...any) { Logger.Error(msg, keyvals...) }

var levelBadges = map[log.Level]struct{ label, bg string }{
	log.DebugLevel: {"DEBUG", "240"},
	log.InfoLevel:  {"INFO", "33"},
	log.WarnLevel:  {"WARN", "214"},
	log.ErrorLevel: {"ERROR", "196"},
	log.FatalLevel: {"FATAL", "88"},
}

// NewStyledLogger returns a component logger prefixed with name, with badge-style
// levels and highlighted bot keys. It shares Logger's writer and level.
func NewStyledLogger(name string) *log.Logger {
	styles := log.DefaultStyles()
	for level, badge := range levelBadges {
		styles.Levels[level] = lipgloss.NewStyle().
			SetString(badge.label).
			Padding(0, 1).
			Background(lipgloss.Color(badge.bg)).
			Foreground(lipgloss.Color("15"))
	}
	for _, key := range []string{"bot", "origin", "target"} {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	}
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styles.Values["error"] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	l := log.NewWithOptions(sink, log.Options{Prefix: name + " "})
	l.SetStyles(styles)
	l.SetLevel(Logger.GetLevel())
	return l
}
