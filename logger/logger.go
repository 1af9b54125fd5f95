package logger

import (
	"io"
	"log/slog"
	"os"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

type Options struct {
	Buffer io.Writer
	Level  Level
	Type   Type
}

var DefaultLogger = New(Options{os.Stderr, DefaultLevel, TypeText})

// Discard drops every record. Components fall back to it when no logger
// is configured.
var Discard = New(Options{Buffer: io.Discard, Level: ErrorLevel})

type logger struct {
	*slog.Logger
}

func New(opts Options) Logger {
	buf := opts.Buffer
	if buf == nil {
		buf = os.Stderr
	}
	var handler slog.Handler
	switch opts.Type {
	case TypeJSON:
		handler = slog.NewJSONHandler(buf, &slog.HandlerOptions{
			Level: levels[opts.Level],
		})
	case TypeText:
		fallthrough
	default:
		handler = slog.NewTextHandler(buf, &slog.HandlerOptions{
			Level: levels[opts.Level],
		})
	}
	return &logger{
		Logger: slog.New(handler),
	}
}

// With returns a logger that adds args to every record.
func (l *logger) With(args ...any) Logger {
	return &logger{Logger: l.Logger.With(args...)}
}

// OrDiscard returns l, or Discard if l is nil.
func OrDiscard(l Logger) Logger {
	if l == nil {
		return Discard
	}
	return l
}
