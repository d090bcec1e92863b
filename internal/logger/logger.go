// Package logger builds the structured loggers used across musiclist.
//
// Loggers are plain *slog.Logger values passed to each component at construction
// time. Output is either JSON, one object per line for easy parsing, or colorized
// text via tint for interactive use. All records carry a timestamp and arbitrary
// structured attributes.
//
// Components never reach for a global logger. When no logger is supplied they fall
// back to Default, which discards everything:
//
//	func NewComponent(l *slog.Logger) *Component {
//	    return &Component{logger: logger.Default(l).With("component", "name")}
//	}
//
// Global configuration (format, level, destination) belongs in the CLI only.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Level represents log severity as written in configuration
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Format selects the handler used to render records
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options configures New
type Options struct {
	Level  Level
	Format Format
	Output io.Writer
	// NoColor disables ANSI colors in text output
	NoColor bool
}

// ParseLevel converts a level name (case-insensitive) into a Level
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case "", LevelInfo:
		return LevelInfo, nil
	case LevelDebug:
		return LevelDebug, nil
	case LevelWarn, "WARNING":
		return LevelWarn, nil
	case LevelError:
		return LevelError, nil
	}
	return "", fmt.Errorf("unknown log level %q", s)
}

// ParseFormat converts a format name into a Format
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown log format %q", s)
}

// slogLevel maps a Level onto slog's levels. Unknown levels log at INFO.
func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger with the given options. Messages below the minimum level
// are discarded. Output defaults to stderr so stdout stays free for command output.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var h slog.Handler
	switch opts.Format {
	case FormatJSON:
		h = slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level: opts.Level.slogLevel(),
		})
	default:
		h = tint.NewHandler(out, &tint.Options{
			Level:      opts.Level.slogLevel(),
			TimeFormat: time.Kitchen,
			NoColor:    opts.NoColor,
		})
	}
	return slog.New(h)
}

// discardHandler drops every record
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// Discard returns a logger that discards all output
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// Default returns l if non-nil, otherwise a discard logger
func Default(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return Discard()
}
