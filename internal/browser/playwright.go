package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

var (
	// Playwright driver process (singleton)
	pwOnce     sync.Once
	pwInstance *playwright.Playwright
	pwErr      error
)

// getPlaywright starts the Playwright driver once. Browsers are never
// downloaded: the extension session always attaches over CDP.
func getPlaywright() (*playwright.Playwright, error) {
	pwOnce.Do(func() {
		opts := &playwright.RunOptions{SkipInstallBrowsers: true}
		if err := playwright.Install(opts); err != nil {
			pwErr = fmt.Errorf("failed to install playwright driver: %w", err)
			return
		}
		pw, err := playwright.Run(opts)
		if err != nil {
			pwErr = fmt.Errorf("failed to start playwright: %w", err)
			return
		}
		pwInstance = pw
	})
	return pwInstance, pwErr
}

// playwrightDriver is the secondary session that drives extension pages.
type playwrightDriver struct {
	mu      sync.Mutex
	browser playwright.Browser
	pages   map[playwright.Page]*playwrightWindow
	timeout time.Duration
}

// ConnectPlaywright attaches a Playwright session to the browser at cdpURL.
func ConnectPlaywright(ctx context.Context, cdpURL string, actionTimeout time.Duration) (Driver, error) {
	pw, err := getPlaywright()
	if err != nil {
		return nil, err
	}
	b, err := pw.Chromium.ConnectOverCDP(cdpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to CDP at %s: %w", cdpURL, err)
	}
	if actionTimeout <= 0 {
		actionTimeout = DefaultWaitTimeout
	}
	return &playwrightDriver{
		browser: b,
		pages:   make(map[playwright.Page]*playwrightWindow),
		timeout: actionTimeout,
	}, nil
}

func (d *playwrightDriver) Kind() DriverKind { return DriverExtension }

func (d *playwrightDriver) Windows(ctx context.Context) ([]Window, error) {
	if !d.browser.IsConnected() {
		return nil, fmt.Errorf("playwright: browser disconnected")
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []Window
	for _, bc := range d.browser.Contexts() {
		for _, p := range bc.Pages() {
			w, ok := d.pages[p]
			if !ok {
				w = newPlaywrightWindow(p, d.timeout)
				d.pages[p] = w
			}
			if !w.Closed() {
				out = append(out, w)
			}
		}
	}
	return out, nil
}

func (d *playwrightDriver) Close() error {
	return d.browser.Close()
}

type playwrightWindow struct {
	id      string
	page    playwright.Page
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

func newPlaywrightWindow(p playwright.Page, timeout time.Duration) *playwrightWindow {
	w := &playwrightWindow{
		id:      "pw-" + shortID(),
		page:    p,
		timeout: timeout,
	}
	p.OnClose(func(playwright.Page) {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
	})
	return w
}

func (w *playwrightWindow) ms() *float64 {
	return playwright.Float(float64(w.timeout.Milliseconds()))
}

func (w *playwrightWindow) locate(t Target) playwright.Locator {
	l := w.page.Locator(t.Selector)
	if t.Text != "" {
		l = l.Filter(playwright.LocatorFilterOptions{HasText: t.Text})
	}
	return l.Nth(t.Nth)
}

func (w *playwrightWindow) ID() string { return w.id }

func (w *playwrightWindow) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed || w.page.IsClosed()
}

func (w *playwrightWindow) URL(ctx context.Context) (string, error) {
	if w.Closed() {
		return "", ErrWindowClosed
	}
	return w.page.URL(), nil
}

func (w *playwrightWindow) Goto(ctx context.Context, url string) error {
	_, err := w.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   w.ms(),
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (w *playwrightWindow) Reload(ctx context.Context) error {
	if _, err := w.page.Reload(playwright.PageReloadOptions{Timeout: w.ms()}); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	return nil
}

func (w *playwrightWindow) BringToFront(ctx context.Context) error {
	return w.page.BringToFront()
}

func (w *playwrightWindow) Close(ctx context.Context) error {
	return w.page.Close()
}

func (w *playwrightWindow) Visible(ctx context.Context, t Target) (bool, error) {
	return w.locate(t).IsVisible()
}

func (w *playwrightWindow) Count(ctx context.Context, t Target) (int, error) {
	l := w.page.Locator(t.Selector)
	if t.Text != "" {
		l = l.Filter(playwright.LocatorFilterOptions{HasText: t.Text})
	}
	return l.Count()
}

func (w *playwrightWindow) Click(ctx context.Context, t Target) error {
	if err := w.locate(t).Click(playwright.LocatorClickOptions{Timeout: w.ms()}); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (w *playwrightWindow) ClickAt(ctx context.Context, x, y float64) error {
	return w.page.Mouse().Click(x, y)
}

func (w *playwrightWindow) Box(ctx context.Context, t Target) (Box, error) {
	r, err := w.locate(t).BoundingBox(playwright.LocatorBoundingBoxOptions{Timeout: w.ms()})
	if err != nil {
		return Box{}, err
	}
	if r == nil {
		return Box{}, fmt.Errorf("%s has no bounding box", t)
	}
	return Box{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}, nil
}

func (w *playwrightWindow) Type(ctx context.Context, t Target, text string) error {
	if err := w.locate(t).PressSequentially(text, playwright.LocatorPressSequentiallyOptions{Timeout: w.ms()}); err != nil {
		return fmt.Errorf("type failed: %w", err)
	}
	return nil
}

func (w *playwrightWindow) SetValue(ctx context.Context, t Target, value string) error {
	if err := w.locate(t).Fill(value, playwright.LocatorFillOptions{Timeout: w.ms()}); err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}

func (w *playwrightWindow) Text(ctx context.Context, t Target) (string, error) {
	return w.locate(t).TextContent(playwright.LocatorTextContentOptions{Timeout: w.ms()})
}

func (w *playwrightWindow) Value(ctx context.Context, t Target) (string, error) {
	return w.locate(t).InputValue(playwright.LocatorInputValueOptions{Timeout: w.ms()})
}

func (w *playwrightWindow) Attribute(ctx context.Context, t Target, name string) (string, error) {
	return w.locate(t).GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: w.ms()})
}

func (w *playwrightWindow) Screenshot(ctx context.Context) ([]byte, error) {
	return w.page.Screenshot()
}

// Expect uses Playwright's own expect-event primitive, which subscribes
// before running the trigger.
func (w *playwrightWindow) Expect(ctx context.Context, ev Event, timeout time.Duration, trigger func() error) error {
	var name string
	switch ev {
	case EventNavigation:
		name = "framenavigated"
	case EventClose:
		name = "close"
	default:
		return trigger()
	}

	_, err := w.page.ExpectEvent(name, trigger, playwright.PageExpectEventOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("waiting for %s: %w", ev, ErrTimedOut)
	}
	return err
}
