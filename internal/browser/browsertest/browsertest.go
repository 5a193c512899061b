// Package browsertest provides an in-memory Driver for exercising sessions
// and wallet flows without a browser. Windows hold a small element table
// keyed by selector; tests script navigation, popups and closures with
// delays.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/neboloop/walletpilot/internal/browser"
)

// ErrNotVisible is returned when acting on a hidden or missing element.
var ErrNotVisible = errors.New("element not visible")

// Driver is a fake browser.Driver.
type Driver struct {
	mu      sync.Mutex
	kind    browser.DriverKind
	windows []*Window
	next    int
	closed  bool

	// WindowsErr, when set, is returned by Windows.
	WindowsErr error
}

// NewDriver creates a driver with no windows.
func NewDriver(kind browser.DriverKind) *Driver {
	return &Driver{kind: kind}
}

func (d *Driver) Kind() browser.DriverKind { return d.kind }

func (d *Driver) Windows(ctx context.Context) ([]browser.Window, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.WindowsErr != nil {
		return nil, d.WindowsErr
	}
	out := make([]browser.Window, 0, len(d.windows))
	for _, w := range d.windows {
		if !w.Closed() {
			out = append(out, w)
		}
	}
	return out, nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

// Open adds a window at url.
func (d *Driver) Open(url string) *Window {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	w := &Window{
		id:       fmt.Sprintf("%s-%d", d.kind, d.next),
		url:      url,
		elements: make(map[string][]*Element),
		typed:    make(map[string]string),
		onClick:  make(map[string]func(*Window)),
	}
	d.windows = append(d.windows, w)
	return w
}

// OpenAfter opens a window at url after delay. The window is delivered on
// the returned channel once open; setup runs before it becomes visible to
// Windows.
func (d *Driver) OpenAfter(delay time.Duration, url string, setup func(*Window)) <-chan *Window {
	ch := make(chan *Window, 1)
	time.AfterFunc(delay, func() {
		d.mu.Lock()
		d.next++
		w := &Window{
			id:       fmt.Sprintf("%s-%d", d.kind, d.next),
			url:      url,
			elements: make(map[string][]*Element),
			typed:    make(map[string]string),
			onClick:  make(map[string]func(*Window)),
		}
		d.mu.Unlock()
		if setup != nil {
			setup(w)
		}
		d.mu.Lock()
		d.windows = append(d.windows, w)
		d.mu.Unlock()
		ch <- w
	})
	return ch
}

// Last returns the most recently opened window, or nil.
func (d *Driver) Last() *Window {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.windows) == 0 {
		return nil
	}
	return d.windows[len(d.windows)-1]
}

// IsClosed reports whether Close was called.
func (d *Driver) IsClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Element is one node in a fake window.
type Element struct {
	Visible bool
	Text    string
	Value   string
	Attrs   map[string]string
	Box     browser.Box
}

// Window is a fake browser.Window.
type Window struct {
	mu       sync.Mutex
	id       string
	url      string
	closed   bool
	navs     int
	reloads  int
	fronted  int
	elements map[string][]*Element
	typed    map[string]string
	onClick  map[string]func(*Window)
	clicks   []string

	// OnReload runs after every reload, outside the window lock.
	OnReload func(*Window)
	// ClickErr, when set, fails every click.
	ClickErr error
}

var _ browser.Window = (*Window)(nil)

// Set replaces every element under selector with e.
func (w *Window) Set(selector string, e Element) *Window {
	w.mu.Lock()
	defer w.mu.Unlock()
	el := e
	w.elements[selector] = []*Element{&el}
	return w
}

// Add appends e under selector.
func (w *Window) Add(selector string, e Element) *Window {
	w.mu.Lock()
	defer w.mu.Unlock()
	el := e
	w.elements[selector] = append(w.elements[selector], &el)
	return w
}

// Show makes selector present and visible with the given text.
func (w *Window) Show(selector, text string) *Window {
	return w.Set(selector, Element{Visible: true, Text: text})
}

// Hide removes selector.
func (w *Window) Hide(selector string) *Window {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.elements, selector)
	return w
}

// ShowAfter shows selector after delay.
func (w *Window) ShowAfter(delay time.Duration, selector, text string) {
	time.AfterFunc(delay, func() { w.Show(selector, text) })
}

// OnClick runs fn after a successful click on selector.
func (w *Window) OnClick(selector string, fn func(*Window)) *Window {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClick[selector] = fn
	return w
}

// Navigate changes the URL as a navigation would.
func (w *Window) Navigate(url string) {
	w.mu.Lock()
	w.url = url
	w.navs++
	w.mu.Unlock()
}

// NavigateAfter navigates after delay.
func (w *Window) NavigateAfter(delay time.Duration, url string) {
	time.AfterFunc(delay, func() { w.Navigate(url) })
}

// CloseNow closes the window.
func (w *Window) CloseNow() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

// CloseAfter closes the window after delay.
func (w *Window) CloseAfter(delay time.Duration) {
	time.AfterFunc(delay, w.CloseNow)
}

// Clicks returns clicked targets in order.
func (w *Window) Clicks() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.clicks...)
}

// Clicked reports whether selector was clicked.
func (w *Window) Clicked(selector string) bool {
	for _, c := range w.Clicks() {
		if c == selector {
			return true
		}
	}
	return false
}

// Typed returns everything typed into selector.
func (w *Window) Typed(selector string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.typed[selector]
}

// Fronted counts BringToFront calls.
func (w *Window) Fronted() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fronted
}

// Reloads counts reloads.
func (w *Window) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

func (w *Window) matches(t browser.Target) []*Element {
	var out []*Element
	for _, e := range w.elements[t.Selector] {
		if t.Text != "" && !strings.Contains(strings.ToLower(e.Text), strings.ToLower(t.Text)) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (w *Window) pick(t browser.Target) *Element {
	m := w.matches(t)
	if t.Nth < len(m) {
		return m[t.Nth]
	}
	return nil
}

func (w *Window) ID() string { return w.id }

func (w *Window) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *Window) errIfClosed() error {
	if w.closed {
		return browser.ErrWindowClosed
	}
	return nil
}

func (w *Window) URL(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.errIfClosed(); err != nil {
		return "", err
	}
	return w.url, nil
}

func (w *Window) Goto(ctx context.Context, url string) error {
	if w.Closed() {
		return browser.ErrWindowClosed
	}
	w.Navigate(url)
	return nil
}

func (w *Window) Reload(ctx context.Context) error {
	w.mu.Lock()
	if err := w.errIfClosed(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.reloads++
	w.navs++
	hook := w.OnReload
	w.mu.Unlock()
	if hook != nil {
		hook(w)
	}
	return nil
}

func (w *Window) BringToFront(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.errIfClosed(); err != nil {
		return err
	}
	w.fronted++
	return nil
}

func (w *Window) Close(ctx context.Context) error {
	w.CloseNow()
	return nil
}

func (w *Window) Visible(ctx context.Context, t browser.Target) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.errIfClosed(); err != nil {
		return false, err
	}
	e := w.pick(t)
	return e != nil && e.Visible, nil
}

func (w *Window) Count(ctx context.Context, t browser.Target) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.matches(t)), nil
}

func (w *Window) Click(ctx context.Context, t browser.Target) error {
	w.mu.Lock()
	if err := w.errIfClosed(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.ClickErr != nil {
		w.mu.Unlock()
		return w.ClickErr
	}
	e := w.pick(t)
	if e == nil || !e.Visible {
		w.mu.Unlock()
		return fmt.Errorf("%s: %w", t, ErrNotVisible)
	}
	w.clicks = append(w.clicks, t.Selector)
	fn := w.onClick[t.Selector]
	w.mu.Unlock()
	if fn != nil {
		fn(w)
	}
	return nil
}

func (w *Window) ClickAt(ctx context.Context, x, y float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.errIfClosed(); err != nil {
		return err
	}
	w.clicks = append(w.clicks, fmt.Sprintf("@%g,%g", x, y))
	return nil
}

func (w *Window) Box(ctx context.Context, t browser.Target) (browser.Box, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e := w.pick(t)
	if e == nil {
		return browser.Box{}, fmt.Errorf("%s: %w", t, ErrNotVisible)
	}
	return e.Box, nil
}

func (w *Window) Type(ctx context.Context, t browser.Target, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.errIfClosed(); err != nil {
		return err
	}
	e := w.pick(t)
	if e == nil {
		return fmt.Errorf("%s: %w", t, ErrNotVisible)
	}
	w.typed[t.Selector] += text
	e.Value += text
	return nil
}

func (w *Window) SetValue(ctx context.Context, t browser.Target, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	e := w.pick(t)
	if e == nil {
		return fmt.Errorf("%s: %w", t, ErrNotVisible)
	}
	w.typed[t.Selector] = value
	e.Value = value
	return nil
}

func (w *Window) Text(ctx context.Context, t browser.Target) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e := w.pick(t)
	if e == nil {
		return "", fmt.Errorf("%s: %w", t, ErrNotVisible)
	}
	return e.Text, nil
}

func (w *Window) Value(ctx context.Context, t browser.Target) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e := w.pick(t)
	if e == nil {
		return "", fmt.Errorf("%s: %w", t, ErrNotVisible)
	}
	return e.Value, nil
}

func (w *Window) Attribute(ctx context.Context, t browser.Target, name string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e := w.pick(t)
	if e == nil {
		return "", fmt.Errorf("%s: %w", t, ErrNotVisible)
	}
	return e.Attrs[name], nil
}

func (w *Window) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte("\x89PNG"), nil
}

func (w *Window) Expect(ctx context.Context, ev browser.Event, timeout time.Duration, trigger func() error) error {
	w.mu.Lock()
	baseline := w.navs
	w.mu.Unlock()

	if err := trigger(); err != nil {
		return err
	}

	fired := func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		switch ev {
		case browser.EventNavigation:
			return w.navs > baseline
		case browser.EventClose:
			return w.closed
		default:
			return true
		}
	}

	deadline := time.Now().Add(timeout)
	for !fired() {
		if time.Now().After(deadline) {
			return fmt.Errorf("waiting for %s: %w", ev, browser.ErrTimedOut)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
	return nil
}
