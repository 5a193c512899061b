// Package logging configures the process-wide slog logger.
//
// Debug output is enabled per component with WALLETPILOT_DEBUG, a comma
// separated list of component names ("browser,wallet") or "*" for all.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var disabled atomic.Bool

// Disable turns off all logging
func Disable() {
	disabled.Store(true)
}

// Enable turns logging back on
func Enable() {
	disabled.Store(false)
}

type Options struct {
	Level  string
	JSON   bool
	Writer io.Writer
	// Debug overrides WALLETPILOT_DEBUG when non-empty.
	Debug string
}

// Setup installs the default slog logger and returns it.
func Setup(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	debug := opts.Debug
	if debug == "" {
		debug = os.Getenv("WALLETPILOT_DEBUG")
	}

	// The inner handler sees everything; filtering happens in namespaced.
	ho := &slog.HandlerOptions{Level: slog.LevelDebug}
	var inner slog.Handler
	if opts.JSON {
		inner = slog.NewJSONHandler(w, ho)
	} else {
		inner = slog.NewTextHandler(w, ho)
	}

	h := &namespaced{
		inner: inner,
		level: ParseLevel(opts.Level),
		debug: parseNamespaces(debug),
	}
	l := slog.New(h)
	slog.SetDefault(l)
	return l
}

// For returns the default logger tagged with a component name.
func For(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

// ParseLevel maps a config string to a slog level. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

func parseNamespaces(s string) map[string]bool {
	out := map[string]bool{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out[part] = true
		}
	}
	return out
}

type namespaced struct {
	inner     slog.Handler
	level     slog.Level
	debug     map[string]bool
	component string
}

func (h *namespaced) Enabled(_ context.Context, l slog.Level) bool {
	if disabled.Load() {
		return false
	}
	if l >= h.level {
		return true
	}
	return l >= slog.LevelDebug && (h.debug["*"] || h.debug[h.component])
}

func (h *namespaced) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *namespaced) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.inner = h.inner.WithAttrs(attrs)
	for _, a := range attrs {
		if a.Key == "component" {
			c.component = a.Value.String()
		}
	}
	return &c
}

func (h *namespaced) WithGroup(name string) slog.Handler {
	c := *h
	c.inner = h.inner.WithGroup(name)
	return &c
}

// Infof logs a formatted info message on the default logger.
func Infof(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a formatted warning message on the default logger.
func Warnf(format string, v ...any) {
	slog.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs a formatted error message on the default logger.
func Errorf(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...))
}
