package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// chromedpDriver is the test runner's session. It attaches to existing page
// targets and never opens tabs of its own.
type chromedpDriver struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration

	mu      sync.Mutex
	order   []target.ID
	windows map[target.ID]*chromedpWindow
}

// ConnectChromedp attaches a chromedp session to the browser whose
// WebSocket debugger URL is wsURL.
func ConnectChromedp(ctx context.Context, wsURL string, actionTimeout time.Duration) (Driver, error) {
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), wsURL, chromedp.NoModifyURL)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if actionTimeout <= 0 {
		actionTimeout = DefaultWaitTimeout
	}
	d := &chromedpDriver{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		timeout:       actionTimeout,
		windows:       make(map[target.ID]*chromedpWindow),
	}

	// Targets allocates the browser connection without creating a tab.
	if _, err := chromedp.Targets(browserCtx); err != nil {
		allocCancel()
		return nil, fmt.Errorf("failed to attach chromedp to %s: %w", wsURL, err)
	}

	chromedp.ListenBrowser(browserCtx, func(ev any) {
		if e, ok := ev.(*target.EventTargetDestroyed); ok {
			d.markClosed(e.TargetID)
		}
	})
	return d, nil
}

func (d *chromedpDriver) Kind() DriverKind { return DriverRunner }

func (d *chromedpDriver) markClosed(id target.ID) {
	d.mu.Lock()
	w := d.windows[id]
	d.mu.Unlock()
	if w != nil {
		w.markClosed()
	}
}

func (d *chromedpDriver) Windows(ctx context.Context) ([]Window, error) {
	infos, err := chromedp.Targets(d.browserCtx)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}

	live := make(map[target.ID]bool, len(infos))
	for _, info := range infos {
		if info.Type != "page" {
			continue
		}
		live[info.TargetID] = true
		d.mu.Lock()
		_, known := d.windows[info.TargetID]
		d.mu.Unlock()
		if known {
			continue
		}
		w, err := d.attach(info.TargetID)
		if err != nil {
			continue
		}
		d.mu.Lock()
		d.windows[info.TargetID] = w
		d.order = append(d.order, info.TargetID)
		d.mu.Unlock()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Window
	for _, id := range d.order {
		w := d.windows[id]
		if !live[id] {
			w.markClosed()
		}
		if !w.Closed() {
			out = append(out, w)
		}
	}
	return out, nil
}

func (d *chromedpDriver) attach(id target.ID) (*chromedpWindow, error) {
	tctx, cancel := chromedp.NewContext(d.browserCtx, chromedp.WithTargetID(id))
	if err := chromedp.Run(tctx); err != nil {
		cancel()
		return nil, err
	}
	return &chromedpWindow{
		id:      string(id),
		ctx:     tctx,
		cancel:  cancel,
		timeout: d.timeout,
	}, nil
}

func (d *chromedpDriver) Close() error {
	d.browserCancel()
	d.allocCancel()
	return nil
}

type chromedpWindow struct {
	id      string
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

func (w *chromedpWindow) markClosed() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

// run executes actions on the target, bounded by the action timeout and by
// the caller's context.
func (w *chromedpWindow) run(ctx context.Context, actions ...chromedp.Action) error {
	if w.Closed() {
		return ErrWindowClosed
	}
	rctx, cancel := context.WithTimeout(w.ctx, w.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(rctx, actions...)
}

// elementJS returns a JS expression selecting the target element, or null.
func elementJS(t Target) string {
	sel, _ := json.Marshal(t.Selector)
	text, _ := json.Marshal(t.Text)
	return fmt.Sprintf(`(() => {
		const text = %s.toLowerCase();
		const all = Array.from(document.querySelectorAll(%s))
			.filter(e => !text || (e.textContent || "").toLowerCase().includes(text));
		return all[%d] || null;
	})()`, text, sel, t.Nth)
}

func (w *chromedpWindow) eval(ctx context.Context, t Target, body string, res any) error {
	expr := fmt.Sprintf(`((el) => { %s })(%s)`, body, elementJS(t))
	return w.run(ctx, chromedp.Evaluate(expr, res))
}

func (w *chromedpWindow) ID() string { return w.id }

func (w *chromedpWindow) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *chromedpWindow) URL(ctx context.Context) (string, error) {
	var u string
	err := w.run(ctx, chromedp.Location(&u))
	return u, err
}

func (w *chromedpWindow) Goto(ctx context.Context, url string) error {
	if err := w.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (w *chromedpWindow) Reload(ctx context.Context) error {
	return w.run(ctx, chromedp.Reload())
}

func (w *chromedpWindow) BringToFront(ctx context.Context) error {
	return w.run(ctx, page.BringToFront())
}

func (w *chromedpWindow) Close(ctx context.Context) error {
	err := w.run(ctx, page.Close())
	w.markClosed()
	return err
}

func (w *chromedpWindow) Visible(ctx context.Context, t Target) (bool, error) {
	var ok bool
	err := w.eval(ctx, t, `
		if (!el) return false;
		const s = getComputedStyle(el);
		return el.getClientRects().length > 0 && s.visibility !== "hidden" && s.display !== "none";`, &ok)
	return ok, err
}

func (w *chromedpWindow) Count(ctx context.Context, t Target) (int, error) {
	sel, _ := json.Marshal(t.Selector)
	text, _ := json.Marshal(t.Text)
	var n int
	err := w.run(ctx, chromedp.Evaluate(fmt.Sprintf(`(() => {
		const text = %s.toLowerCase();
		return Array.from(document.querySelectorAll(%s))
			.filter(e => !text || (e.textContent || "").toLowerCase().includes(text)).length;
	})()`, text, sel), &n))
	return n, err
}

func (w *chromedpWindow) Box(ctx context.Context, t Target) (Box, error) {
	var b *Box
	err := w.eval(ctx, t, `
		if (!el) return null;
		el.scrollIntoView({block: "center", inline: "center"});
		const r = el.getBoundingClientRect();
		return {X: r.x, Y: r.y, Width: r.width, Height: r.height};`, &b)
	if err != nil {
		return Box{}, err
	}
	if b == nil {
		return Box{}, fmt.Errorf("%s not found", t)
	}
	return *b, nil
}

func (w *chromedpWindow) Click(ctx context.Context, t Target) error {
	b, err := w.Box(ctx, t)
	if err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return w.ClickAt(ctx, b.X+b.Width/2, b.Y+b.Height/2)
}

func (w *chromedpWindow) ClickAt(ctx context.Context, x, y float64) error {
	return w.run(ctx, chromedp.MouseClickXY(x, y))
}

func (w *chromedpWindow) Type(ctx context.Context, t Target, text string) error {
	var focused bool
	if err := w.eval(ctx, t, `if (!el) return false; el.focus(); return true;`, &focused); err != nil {
		return err
	}
	if !focused {
		return fmt.Errorf("%s not found", t)
	}
	return w.run(ctx, chromedp.KeyEvent(text))
}

func (w *chromedpWindow) SetValue(ctx context.Context, t Target, value string) error {
	v, _ := json.Marshal(value)
	var ok bool
	err := w.eval(ctx, t, fmt.Sprintf(`
		if (!el) return false;
		const proto = Object.getPrototypeOf(el);
		const setter = Object.getOwnPropertyDescriptor(proto, "value").set;
		setter.call(el, %s);
		el.dispatchEvent(new Event("input", {bubbles: true}));
		el.dispatchEvent(new Event("change", {bubbles: true}));
		return true;`, v), &ok)
	if err == nil && !ok {
		err = fmt.Errorf("%s not found", t)
	}
	return err
}

func (w *chromedpWindow) Text(ctx context.Context, t Target) (string, error) {
	var s string
	err := w.eval(ctx, t, `return el ? (el.textContent || "") : "";`, &s)
	return s, err
}

func (w *chromedpWindow) Value(ctx context.Context, t Target) (string, error) {
	var s string
	err := w.eval(ctx, t, `return el ? String(el.value ?? "") : "";`, &s)
	return s, err
}

func (w *chromedpWindow) Attribute(ctx context.Context, t Target, name string) (string, error) {
	n, _ := json.Marshal(name)
	var s string
	err := w.eval(ctx, t, fmt.Sprintf(`return el ? (el.getAttribute(%s) || "") : "";`, n), &s)
	return s, err
}

func (w *chromedpWindow) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := w.run(ctx, chromedp.CaptureScreenshot(&buf))
	return buf, err
}

// Expect registers CDP listeners before running trigger, so a navigation or
// close fired by the trigger cannot be missed.
func (w *chromedpWindow) Expect(ctx context.Context, ev Event, timeout time.Duration, trigger func() error) error {
	if ev == EventNone {
		return trigger()
	}

	lctx, cancel := context.WithCancel(w.ctx)
	defer cancel()
	fired := make(chan struct{}, 1)
	signal := func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}

	switch ev {
	case EventNavigation:
		chromedp.ListenTarget(lctx, func(e any) {
			switch e := e.(type) {
			case *page.EventFrameNavigated:
				if e.Frame != nil && e.Frame.ParentID == "" {
					signal()
				}
			case *page.EventNavigatedWithinDocument:
				signal()
			}
		})
	case EventClose:
		id := target.ID(w.id)
		chromedp.ListenBrowser(lctx, func(e any) {
			if d, ok := e.(*target.EventTargetDestroyed); ok && d.TargetID == id {
				w.markClosed()
				signal()
			}
		})
	}

	if err := trigger(); err != nil {
		return err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-fired:
		return nil
	case <-timer.C:
		return fmt.Errorf("waiting for %s: %w", ev, ErrTimedOut)
	case <-ctx.Done():
		return ctx.Err()
	}
}
