// Package log builds the configured slog.Logger.
//
// Console output is colorized when attached to a terminal, with non-error
// levels on stdout and errors on stderr so redirection separates them. A log
// file can be added on top; it always receives plain text.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// LevelTrace sits below Debug for per-frame output.
const LevelTrace slog.Level = -8

// ParseLevel maps a config string to a level. Unknown strings fall back to
// Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds the process logger and installs it as the slog default. The
// returned closer is non-nil when a log file was opened and must be closed
// on exit.
func Setup(logLevel, logFile string) (*slog.Logger, io.Closer, error) {
	level := ParseLevel(logLevel)
	var handlers []slog.Handler

	if term.IsTerminal(int(os.Stdout.Fd())) {
		out := &consoleHandler{w: os.Stdout, level: level}
		handlers = append(handlers, levelFilter{below: slog.LevelError, h: out})
		errOut := &consoleHandler{w: os.Stderr, level: slog.LevelError}
		handlers = append(handlers, levelFilter{from: slog.LevelError, h: errOut})
	} else {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	var closer io.Closer
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		closer = f
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	}

	logger := slog.New(multiHandler(handlers))
	slog.SetDefault(logger)
	return logger, closer, nil
}

// multiHandler fans records out to every handler.
type multiHandler []slog.Handler

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r)
		}
	}
	return nil
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithGroup(name)
	}
	return out
}

// levelFilter passes records in [from, below) to the wrapped handler. A nil
// bound means unbounded on that side.
type levelFilter struct {
	from  slog.Leveler
	below slog.Leveler
	h     slog.Handler
}

func (f levelFilter) pass(level slog.Level) bool {
	if f.from != nil && level < f.from.Level() {
		return false
	}
	if f.below != nil && level >= f.below.Level() {
		return false
	}
	return true
}

func (f levelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	return f.pass(level) && f.h.Enabled(ctx, level)
}

func (f levelFilter) Handle(ctx context.Context, r slog.Record) error {
	if !f.pass(r.Level) {
		return nil
	}
	return f.h.Handle(ctx, r)
}

func (f levelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return levelFilter{from: f.from, below: f.below, h: f.h.WithAttrs(attrs)}
}

func (f levelFilter) WithGroup(name string) slog.Handler {
	return levelFilter{from: f.from, below: f.below, h: f.h.WithGroup(name)}
}

const (
	ansiReset  = "\033[0m"
	ansiDim    = "\033[90m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiGreen  = "\033[32m"
	ansiBlue   = "\033[34m"
	ansiPurple = "\033[35m"
)

// consoleHandler renders compact colored lines for humans. Groups are
// flattened; the relay's attrs are shallow.
type consoleHandler struct {
	w     io.Writer
	level slog.Leveler
	attrs []slog.Attr
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func levelLabel(l slog.Level) (string, string) {
	switch {
	case l >= slog.LevelError:
		return "ERROR", ansiRed
	case l >= slog.LevelWarn:
		return "WARN", ansiYellow
	case l >= slog.LevelInfo:
		return "INFO", ansiGreen
	case l >= slog.LevelDebug:
		return "DEBUG", ansiBlue
	}
	return "TRACE", ansiPurple
}

func appendAttr(buf *strings.Builder, a slog.Attr) {
	buf.WriteByte(' ')
	buf.WriteString(ansiDim)
	buf.WriteString(a.Key)
	buf.WriteByte('=')
	buf.WriteString(ansiReset)
	v := a.Value.String()
	if strings.ContainsAny(v, " \t\"") {
		v = strconv.Quote(v)
	}
	buf.WriteString(v)
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder

	buf.WriteString(ansiDim)
	buf.WriteString(r.Time.Format("15:04:05.000"))
	buf.WriteString(ansiReset)

	label, color := levelLabel(r.Level)
	buf.WriteByte(' ')
	buf.WriteString(color)
	buf.WriteString(label)
	buf.WriteString(ansiReset)
	for i := len(label); i < 5; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		appendAttr(&buf, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&buf, a)
		return true
	})

	buf.WriteByte('\n')
	_, err := io.WriteString(h.w, buf.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &consoleHandler{
		w:     h.w,
		level: h.level,
		attrs: append(slices.Clip(h.attrs), attrs...),
	}
}

func (h *consoleHandler) WithGroup(string) slog.Handler {
	return h
}
