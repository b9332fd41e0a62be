// Package logging builds the slog loggers used by the hub, the peers and the echo tools.
//
// A logger writes every record to the console through pterm and, when a file is configured, appends the
// same record as a timestamped text line to that file. Sinks are best-effort: a failed write to one
// sink is dropped and never reaches the code that logged.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	slogmulti "github.com/samber/slog-multi"
)

type options struct {
	level    slog.Level
	console  bool
	writers  []io.Writer
	attrs    []slog.Attr
	handlers []slog.Handler
}

type Option func(*options)

func WithLevel(level slog.Level) Option {
	return func(o *options) { o.level = level }
}

// WithConsole enables pretty console output.
func WithConsole() Option {
	return func(o *options) { o.console = true }
}

// WithWriter appends text records to w.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.writers = append(o.writers, w) }
}

func WithHandler(h slog.Handler) Option {
	return func(o *options) { o.handlers = append(o.handlers, h) }
}

func WithAttr(attrs ...slog.Attr) Option {
	return func(o *options) { o.attrs = append(o.attrs, attrs...) }
}

func New(opts ...Option) *slog.Logger {
	o := options{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(&o)
	}

	handlers := append([]slog.Handler(nil), o.handlers...)
	if o.console {
		console := pterm.DefaultLogger.WithLevel(ptermLevel(o.level))
		handlers = append(handlers, pterm.NewSlogHandler(console))
	}
	for _, w := range o.writers {
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: o.level}))
	}

	var h slog.Handler
	switch len(handlers) {
	case 0:
		return Discard()
	case 1:
		h = handlers[0]
	default:
		h = slogmulti.Fanout(handlers...)
	}
	if len(o.attrs) > 0 {
		h = h.WithAttrs(o.attrs)
	}
	return slog.New(h)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// OpenFile opens path for appending, creating it when needed.
func OpenFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

func ptermLevel(level slog.Level) pterm.LogLevel {
	switch {
	case level <= slog.LevelDebug:
		return pterm.LogLevelDebug
	case level <= slog.LevelInfo:
		return pterm.LogLevelInfo
	case level <= slog.LevelWarn:
		return pterm.LogLevelWarn
	default:
		return pterm.LogLevelError
	}
}

// NewFile builds a console logger that also appends to the file at path. The caller closes the returned
// file once logging is over.
func NewFile(path string, opts ...Option) (*slog.Logger, io.Closer, error) {
	f, err := OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]Option{WithConsole(), WithWriter(f)}, opts...)
	return New(opts...), f, nil
}
