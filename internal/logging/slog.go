package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// console receives log output when no file is given.
// Stdout is reserved for command results.
var console io.Writer = os.Stderr

// SlogManager manages slog-based logging.
type SlogManager struct {
	logger *slog.Logger

	mu       sync.RWMutex
	provider ContextProvider
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup initializes the logging system. Records go to file, or to the
// console when file is nil. With a file, the console only receives WARN
// and above.
func (m *SlogManager) Setup(file io.Writer, level string) {
	lvl := parseLevel(level)

	// Common handler options with RFC3339 time formatting
	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler
	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, handlerOpts))

		// warnings still surface on the console
		consoleOpts := *handlerOpts
		consoleOpts.Level = max(lvl, slog.LevelWarn)
		handlers = append(handlers, slog.NewTextHandler(console, &consoleOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(console, handlerOpts))
	}

	m.logger = slog.New(NewContextHandler(NewMultiHandler(handlers...), m.contextAttrs))
	m.logger.Debug("Logging initialized", "level", level)
}

// SetContextProvider installs a provider whose attributes are added to
// every record.
func (m *SlogManager) SetContextProvider(p ContextProvider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provider = p
}

func (m *SlogManager) contextAttrs() []slog.Attr {
	m.mu.RLock()
	p := m.provider
	m.mu.RUnlock()
	if p == nil {
		return nil
	}
	return p()
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}
