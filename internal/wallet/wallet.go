// Package wallet drives the wallet extension's screens through a browser
// session: onboarding, unlock, accounts, networks, settings and the
// notification popups a dapp triggers.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/neboloop/walletpilot/internal/browser"
)

var errNotDetected = fmt.Errorf("extension urls not detected: %w", browser.ErrUnexpectedState)

// Wallet runs flows against one session.
type Wallet struct {
	s           *browser.Session
	logger      *slog.Logger
	screenshots string

	mu    sync.RWMutex
	setup Setup
}

type Options struct {
	Logger *slog.Logger
	// ScreenshotDir receives a screenshot of the active window when a flow
	// fails. Empty disables it.
	ScreenshotDir string
}

// New creates a Wallet over s.
func New(s *browser.Session, opts Options) *Wallet {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Wallet{
		s:           s,
		logger:      logger.With("component", "wallet"),
		screenshots: opts.ScreenshotDir,
	}
}

// Session returns the underlying browser session.
func (w *Wallet) Session() *browser.Session { return w.s }

// Setup returns a copy of the setup result.
func (w *Wallet) Setup() Setup {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.setup
}

func (w *Wallet) urls() ExtensionURLs {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.setup.URLs
}

func (w *Wallet) update(fn func(*Setup)) {
	w.mu.Lock()
	fn(&w.setup)
	w.mu.Unlock()
}

type flowKey struct{}

// run executes one flow. The outermost flow gets an ID, logs its outcome and
// captures a screenshot on failure; nested flows run inline.
func (w *Wallet) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if id, ok := ctx.Value(flowKey{}).(string); ok {
		w.logger.Debug("step", "op", op, "flow", id)
		return fn(ctx)
	}

	id := ulid.Make().String()
	ctx = context.WithValue(ctx, flowKey{}, id)
	log := w.logger.With("op", op, "flow", id)
	start := time.Now()
	log.Debug("flow started")

	if err := fn(ctx); err != nil {
		log.Error("flow failed", "error", err, "duration", time.Since(start))
		w.capture(ctx, op)
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("flow done", "duration", time.Since(start))
	return nil
}

func (w *Wallet) capture(ctx context.Context, op string) {
	if w.screenshots == "" {
		return
	}
	if _, err := w.s.CaptureFailure(context.WithoutCancel(ctx), w.screenshots, op); err != nil {
		w.logger.Warn("failure screenshot", "op", op, "error", err)
	}
}

// onExtension runs fn with the extension window active and restores the
// previous window afterwards, on every exit path.
func (w *Wallet) onExtension(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	g, err := w.s.Acquire(ctx, browser.WindowExtension)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, g.Release(ctx)) }()
	return fn(ctx)
}

// onNotification waits for a new popup and runs fn with it active. A popup
// that never shows up is fatal.
func (w *Wallet) onNotification(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	g, err := w.s.AcquireNotification(ctx)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, g.Release(ctx)) }()
	return fn(ctx)
}

// onCurrentNotification is onNotification that reuses a popup still open
// from a previous request.
func (w *Wallet) onCurrentNotification(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	g, err := w.s.AcquireCurrentNotification(ctx)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, g.Release(ctx)) }()
	return fn(ctx)
}

func (w *Wallet) click(ctx context.Context, t browser.Target) error {
	return w.s.Click(ctx, t)
}

func (w *Wallet) clickAndNavigate(ctx context.Context, t browser.Target) error {
	return w.s.ClickAndAwait(ctx, t, browser.EventNavigation)
}

func (w *Wallet) clickAndClose(ctx context.Context, t browser.Target) error {
	return w.s.ClickAndAwait(ctx, t, browser.EventClose)
}

// clickIfVisible clicks t when it is showing right now.
func (w *Wallet) clickIfVisible(ctx context.Context, t browser.Target) error {
	if !w.s.Probe(ctx, t) {
		return nil
	}
	return w.click(ctx, t)
}
