package browser

import (
	"log/slog"
	"time"
)

// auditLogger records every active-context change and correlated action so a
// failed flow can be reconstructed from the log alone.
type auditLogger struct {
	logger *slog.Logger
}

func newAuditLogger(l *slog.Logger) *auditLogger {
	if l == nil {
		l = slog.Default()
	}
	return &auditLogger{logger: l.With("component", "browser")}
}

func (l *auditLogger) switched(from, to string, saved bool) {
	if l == nil {
		return
	}
	l.logger.Debug("context_switch", "from", from, "to", to, "saved", saved)
}

func (l *auditLogger) restored(to string) {
	if l == nil {
		return
	}
	l.logger.Debug("context_restore", "to", to)
}

func (l *auditLogger) action(op, window string, t Target, ev Event, took time.Duration, err error) {
	if l == nil {
		return
	}
	attrs := []any{
		"op", op,
		"window", window,
		"target", t.String(),
		"event", ev.String(),
		"took", took.Round(time.Millisecond),
	}
	if err != nil {
		l.logger.Warn("action_failed", append(attrs, "error", err)...)
		return
	}
	l.logger.Debug("action", attrs...)
}

// typed logs a text entry without the text itself.
func (l *auditLogger) typed(window string, t Target, n int, err error) {
	if l == nil {
		return
	}
	attrs := []any{"window", window, "target", t.String(), "chars", n}
	if err != nil {
		l.logger.Warn("type_failed", append(attrs, "error", err)...)
		return
	}
	l.logger.Debug("type", attrs...)
}

func (l *auditLogger) notification(id, url string, err error) {
	if l == nil {
		return
	}
	if err != nil {
		l.logger.Warn("notification_missing", "error", err)
		return
	}
	l.logger.Info("notification_opened", "handle", truncateID(id), "url", url)
}

func (l *auditLogger) windowClosed(name string, restoredTo string) {
	if l == nil {
		return
	}
	l.logger.Debug("window_closed", "window", name, "active", restoredTo)
}

func truncateID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
