package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Session ties the runner and extension drivers to one registry, one active
// context and one notification tracker. Flows talk to the browser only
// through a Session.
type Session struct {
	runner    Driver
	extension Driver

	registry *Registry
	switcher *Switcher
	waiter   *Waiter
	tracker  *NotificationTracker
	actions  *ActionRunner
	timing   Timing

	audit   *auditLogger
	metrics *Metrics
	logger  *slog.Logger

	extensionURL string
}

// SessionOptions configures a Session. Zero values use the defaults.
type SessionOptions struct {
	Timing  Timing
	Logger  *slog.Logger
	Metrics *Metrics
}

// NewSession builds a session over two attached drivers.
func NewSession(runner, extension Driver, opts SessionOptions) *Session {
	timing := opts.Timing
	if timing == (Timing{}) {
		timing = DefaultTiming()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	audit := newAuditLogger(logger)
	reg := NewRegistry()
	sw := NewSwitcher(reg, audit, opts.Metrics)
	w := NewWaiter(WaitSpec{Timeout: timing.WaitTimeout, Interval: timing.PollInterval}, opts.Metrics)

	return &Session{
		runner:    runner,
		extension: extension,
		registry:  reg,
		switcher:  sw,
		waiter:    w,
		tracker:   NewNotificationTracker(extension, reg, sw, w, timing.NotificationTimeout, audit, opts.Metrics),
		actions:   NewActionRunner(reg, sw, w, timing, audit, opts.Metrics),
		timing:    timing,
		audit:     audit,
		metrics:   opts.Metrics,
		logger:    logger.With("component", "session"),
	}
}

func (s *Session) Registry() *Registry                 { return s.registry }
func (s *Session) Switcher() *Switcher                 { return s.switcher }
func (s *Session) Notifications() *NotificationTracker { return s.tracker }
func (s *Session) Timing() Timing                      { return s.timing }

// ExtensionURL returns the URL the extension window had when assigned.
func (s *Session) ExtensionURL() string { return s.extensionURL }

// Register binds name to a window owned by the given driver.
func (s *Session) Register(name string, owner DriverKind, w Window) *WindowHandle {
	h := NewHandle(owner, w)
	s.registry.Register(name, h)
	return h
}

// AssignWindows finds the runner's page and the wallet extension's page,
// registers both, makes the runner active and primes the notification
// tracker. It returns the extension page URL.
func (s *Session) AssignWindows(ctx context.Context) (string, error) {
	runnerWin, err := firstWindow(ctx, s.runner, func(u string) bool {
		return !strings.HasPrefix(u, ExtensionScheme) && !strings.HasPrefix(u, "devtools://")
	})
	if err != nil {
		return "", fmt.Errorf("runner window: %w", err)
	}
	if runnerWin == nil {
		return "", newError(ErrNotFound, "assign windows", WindowRunner, "", nil)
	}
	s.Register(WindowRunner, s.runner.Kind(), runnerWin)

	var extWin Window
	err = s.waiter.WaitUntil(ctx, func(ctx context.Context) (bool, error) {
		w, err := firstWindow(ctx, s.extension, isExtensionHome)
		if w == nil {
			w, err = firstWindow(ctx, s.extension, func(u string) bool {
				return strings.HasPrefix(u, ExtensionScheme)
			})
		}
		extWin = w
		return w != nil, err
	}, WithTimeout(s.timing.NotificationTimeout))
	if err != nil {
		return "", newError(ErrNotFound, "assign windows", WindowExtension, "", err)
	}
	s.Register(WindowExtension, s.extension.Kind(), extWin)

	u, err := extWin.URL(ctx)
	if err != nil {
		return "", fmt.Errorf("extension url: %w", err)
	}
	s.extensionURL = u
	if id := ExtensionID(u); id != "" {
		s.tracker.SetURLPrefix(ExtensionScheme + id + "/")
	}

	s.switcher.Assign(WindowRunner)
	if err := s.tracker.Prime(ctx); err != nil {
		return "", fmt.Errorf("prime notifications: %w", err)
	}

	s.logger.Info("windows assigned", "extension", u, "windows", s.registry.Names())
	return u, nil
}

func isExtensionHome(u string) bool {
	return strings.HasPrefix(u, ExtensionScheme) && strings.Contains(u, "/home.html")
}

func firstWindow(ctx context.Context, d Driver, match func(url string) bool) (Window, error) {
	windows, err := d.Windows(ctx)
	if err != nil {
		return nil, err
	}
	w, ok := lo.Find(windows, func(w Window) bool {
		if w.Closed() {
			return false
		}
		u, err := w.URL(ctx)
		return err == nil && match(u)
	})
	if !ok {
		return nil, nil
	}
	return w, nil
}

// ExtensionID extracts the extension ID from a chrome-extension:// URL.
func ExtensionID(rawURL string) string {
	rest, ok := strings.CutPrefix(rawURL, ExtensionScheme)
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, "/")
	return id
}

// EnsureActive makes name the active window.
func (s *Session) EnsureActive(ctx context.Context, name string) (bool, error) {
	return s.switcher.EnsureActive(ctx, name)
}

// SwitchTo activates name and drops any pending restore.
func (s *Session) SwitchTo(ctx context.Context, name string) error {
	return s.switcher.SwitchTo(ctx, name)
}

// RestorePrevious switches back to the saved window.
func (s *Session) RestorePrevious(ctx context.Context) (bool, error) {
	return s.switcher.RestorePrevious(ctx)
}

// Acquire activates name until the guard is released.
func (s *Session) Acquire(ctx context.Context, name string) (*Guard, error) {
	return s.switcher.Acquire(ctx, name)
}

// AcquireNotification waits for a new popup and activates it until the
// guard is released. Closing the popup through EventClose already restores
// the previous window, after which Release does nothing.
func (s *Session) AcquireNotification(ctx context.Context) (*Guard, error) {
	mark := s.switcher.Mark()
	if _, err := s.tracker.AwaitNotification(ctx, s.timing.NotificationTimeout); err != nil {
		return nil, err
	}
	return s.switcher.GuardSince(mark, WindowNotification), nil
}

// AcquireCurrentNotification is AcquireNotification that reuses a popup that
// is still open.
func (s *Session) AcquireCurrentNotification(ctx context.Context) (*Guard, error) {
	mark := s.switcher.Mark()
	if _, err := s.tracker.Current(ctx, s.timing.NotificationTimeout); err != nil {
		return nil, err
	}
	return s.switcher.GuardSince(mark, WindowNotification), nil
}

// AwaitNotification waits for a new popup and activates it.
func (s *Session) AwaitNotification(ctx context.Context, timeout time.Duration) (*WindowHandle, error) {
	return s.tracker.AwaitNotification(ctx, timeout)
}

// WaitUntil polls cond with the session's timing.
func (s *Session) WaitUntil(ctx context.Context, cond Condition, opts ...WaitOption) error {
	return s.waiter.WaitUntil(ctx, cond, opts...)
}

// Retry runs a bounded self-healing loop.
func (s *Session) Retry(ctx context.Context, p RetryPolicy, fn Attempt) error {
	err := Retry(ctx, p, fn)
	s.metrics.observeRetry(err)
	return err
}

func (s *Session) ClickAndAwait(ctx context.Context, t Target, ev Event) error {
	return s.actions.ClickAndAwait(ctx, t, ev)
}

func (s *Session) Click(ctx context.Context, t Target) error {
	return s.actions.ClickAndAwait(ctx, t, EventNone)
}

func (s *Session) TypeAndAwait(ctx context.Context, t Target, text string) error {
	return s.actions.TypeAndAwait(ctx, t, text)
}

func (s *Session) SetValue(ctx context.Context, t Target, value string) error {
	return s.actions.SetValue(ctx, t, value)
}

func (s *Session) Text(ctx context.Context, t Target) (string, error) {
	return s.actions.Text(ctx, t)
}

func (s *Session) Value(ctx context.Context, t Target) (string, error) {
	return s.actions.Value(ctx, t)
}

func (s *Session) Attribute(ctx context.Context, t Target, name string) (string, error) {
	return s.actions.Attribute(ctx, t, name)
}

func (s *Session) WaitForText(ctx context.Context, t Target, want string, opts ...WaitOption) error {
	return s.actions.WaitForText(ctx, t, want, opts...)
}

func (s *Session) Probe(ctx context.Context, t Target) bool {
	return s.actions.Probe(ctx, t)
}

func (s *Session) Appears(ctx context.Context, t Target, opts ...WaitOption) (bool, error) {
	return s.actions.Appears(ctx, t, opts...)
}

func (s *Session) ClickBackground(ctx context.Context, t Target) error {
	return s.actions.ClickBackground(ctx, t)
}

func (s *Session) Count(ctx context.Context, t Target) (int, error) {
	return s.actions.Count(ctx, t)
}

func (s *Session) Goto(ctx context.Context, url string) error {
	return s.actions.Goto(ctx, url)
}

func (s *Session) Reload(ctx context.Context) error {
	return s.actions.Reload(ctx)
}

func (s *Session) URL(ctx context.Context) (string, error) {
	return s.actions.URL(ctx)
}

// CaptureFailure writes a screenshot of the active window into dir and
// returns its path.
func (s *Session) CaptureFailure(ctx context.Context, dir, op string) (string, error) {
	name, buf, err := s.actions.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	file := fmt.Sprintf("%s-%s-%s.png", sanitize(op), sanitize(name), time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return "", err
	}
	s.logger.Info("failure screenshot", "op", op, "path", path)
	return path, nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

// Close detaches both drivers.
func (s *Session) Close() error {
	var errs []error
	for _, d := range []Driver{s.extension, s.runner} {
		if d == nil {
			continue
		}
		if err := d.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s driver: %w", d.Kind(), err))
		}
	}
	return errors.Join(errs...)
}
