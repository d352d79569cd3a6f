// Package logging provides the leveled logger used by the CLI. It is backed
// by zerolog: a human console writer on stderr, colored per [term], and an
// optional JSON file sink.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/backmassage/muxprobe/internal/config"
	"github.com/backmassage/muxprobe/internal/term"
)

// Logger provides leveled, optionally colored logging with optional file sink.
// Debug output is emitted only when the config asked for verbose logging.
type Logger struct {
	zl      zerolog.Logger
	verbose bool

	mu   *sync.Mutex
	file *os.File
}

// NewLogger configures term colors from cfg, writes console output to
// stderr, and optionally opens cfg.LogFile. Call Close() when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode, os.Stderr)
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg *config.Config, console io.Writer) (*Logger, error) {
	cw := zerolog.ConsoleWriter{
		Out:        console,
		NoColor:    !term.Enabled(),
		TimeFormat: "2006-01-02 15:04:05",
	}
	writers := []io.Writer{cw}

	l := &Logger{verbose: cfg.Verbose, mu: &sync.Mutex{}}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		writers = append(writers, f)
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	l.zl = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Str("component", "muxprobe").
		Logger()
	return l, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop(), mu: &sync.Mutex{}}
}

// With returns a child logger that adds key=value to every entry. The child
// shares the parent's file sink; only the parent should be closed.
func (l *Logger) With(key string, value interface{}) *Logger {
	child := *l
	child.zl = l.zl.With().Interface(key, value).Logger()
	return &child
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

// Success logs at INFO level with result=ok so file sinks can filter on it.
func (l *Logger) Success(format string, args ...interface{}) {
	l.zl.Info().Str("result", "ok").Msg(fmt.Sprintf(format, args...))
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs at ERROR level.
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level; a no-op unless verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}
