package browser

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// NotificationTracker detects wallet notification popups opened by the
// extension. A popup is any window of the extension driver whose ID has not
// been seen before; once seen, an ID is never reported again.
type NotificationTracker struct {
	mu     sync.Mutex
	known  map[string]struct{}
	prefix string

	driver   Driver
	registry *Registry
	switcher *Switcher
	waiter   *Waiter
	timeout  time.Duration

	audit   *auditLogger
	metrics *Metrics
}

// NewNotificationTracker watches driver's windows.
func NewNotificationTracker(driver Driver, reg *Registry, sw *Switcher, w *Waiter, timeout time.Duration, audit *auditLogger, m *Metrics) *NotificationTracker {
	if timeout <= 0 {
		timeout = DefaultNotificationTimeout
	}
	return &NotificationTracker{
		known:    make(map[string]struct{}),
		driver:   driver,
		registry: reg,
		switcher: sw,
		waiter:   w,
		timeout:  timeout,
		audit:    audit,
		metrics:  m,
	}
}

// SetURLPrefix restricts popups to windows whose URL starts with prefix,
// typically "chrome-extension://<id>/". Empty disables the filter.
func (t *NotificationTracker) SetURLPrefix(prefix string) {
	t.mu.Lock()
	t.prefix = prefix
	t.mu.Unlock()
}

// Prime marks every currently open window as known.
func (t *NotificationTracker) Prime(ctx context.Context) error {
	windows, err := t.driver.Windows(ctx)
	if err != nil {
		return err
	}
	t.MarkKnown(lo.Map(windows, func(w Window, _ int) string { return w.ID() })...)
	return nil
}

// MarkKnown adds window IDs to the known set.
func (t *NotificationTracker) MarkKnown(ids ...string) {
	t.mu.Lock()
	for _, id := range ids {
		t.known[id] = struct{}{}
	}
	t.mu.Unlock()
}

// Known reports whether id has been seen.
func (t *NotificationTracker) Known(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.known[id]
	return ok
}

func (t *NotificationTracker) urlPrefix() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prefix
}

// AwaitNotification waits for a new popup, registers it under
// WindowNotification and makes it active. A timeout means the expected
// popup never appeared; the error matches both ErrUnexpectedState and
// ErrTimedOut.
func (t *NotificationTracker) AwaitNotification(ctx context.Context, timeout time.Duration) (*WindowHandle, error) {
	if timeout <= 0 {
		timeout = t.timeout
	}
	ctx, span := startSpan(ctx, "browser.await_notification")

	var found Window
	var foundURL string
	prefix := t.urlPrefix()
	err := t.waiter.WaitUntil(ctx, func(ctx context.Context) (bool, error) {
		windows, err := t.driver.Windows(ctx)
		if err != nil {
			return false, err
		}
		fresh := lo.Filter(windows, func(w Window, _ int) bool {
			return !w.Closed() && !t.Known(w.ID())
		})
		for _, w := range fresh {
			u, err := w.URL(ctx)
			if err != nil {
				continue
			}
			if prefix != "" && !strings.HasPrefix(u, prefix) {
				continue
			}
			found, foundURL = w, u
			return true, nil
		}
		return false, nil
	}, WithTimeout(timeout))
	if err != nil {
		err = newError(ErrUnexpectedState, "await notification", WindowNotification, "", err)
		t.audit.notification("", "", err)
		t.metrics.observeNotification(err)
		endSpan(span, err)
		return nil, err
	}

	t.MarkKnown(found.ID())
	h := NewHandle(t.driver.Kind(), found)
	t.registry.Register(WindowNotification, h)
	err = t.activate(ctx, h)

	t.audit.notification(h.ID(), foundURL, err)
	t.metrics.observeNotification(err)
	endSpan(span, err)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Current returns the registered popup if it is still open, otherwise it
// waits for a new one. One popup can host consecutive requests, such as
// adding a network and then switching to it.
func (t *NotificationTracker) Current(ctx context.Context, timeout time.Duration) (*WindowHandle, error) {
	if h, err := t.registry.Resolve(WindowNotification); err == nil {
		if err := t.activate(ctx, h); err != nil {
			return nil, err
		}
		return h, nil
	}
	return t.AwaitNotification(ctx, timeout)
}

// activate makes h the active window. When the notification name is still
// active from an earlier popup the switcher treats it as a no-op, so the new
// window is brought forward directly.
func (t *NotificationTracker) activate(ctx context.Context, h *WindowHandle) error {
	switched, err := t.switcher.EnsureActive(ctx, WindowNotification)
	if err != nil {
		return err
	}
	if !switched {
		if err := h.Window().BringToFront(ctx); err != nil {
			return newError(ErrUnexpectedState, "activate notification", WindowNotification, "", err)
		}
	}
	return nil
}
