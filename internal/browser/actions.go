package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var errNoActiveWindow = errors.New("no active window")

// ActionRunner performs UI actions on the active window and, when asked,
// waits for the browser event the action triggers.
type ActionRunner struct {
	registry *Registry
	switcher *Switcher
	waiter   *Waiter
	timing   Timing

	audit   *auditLogger
	metrics *Metrics
}

// NewActionRunner creates a runner bound to a switcher.
func NewActionRunner(reg *Registry, sw *Switcher, w *Waiter, timing Timing, audit *auditLogger, m *Metrics) *ActionRunner {
	return &ActionRunner{
		registry: reg,
		switcher: sw,
		waiter:   w,
		timing:   timing,
		audit:    audit,
		metrics:  m,
	}
}

func (r *ActionRunner) active(op string) (string, Window, error) {
	name := r.switcher.Active()
	if name == "" {
		return "", nil, newError(ErrUnexpectedState, op, "", "", errNoActiveWindow)
	}
	h, err := r.registry.Resolve(name)
	if err != nil {
		return name, nil, err
	}
	return name, h.Window(), nil
}

func (r *ActionRunner) awaitVisible(ctx context.Context, op, name string, w Window, t Target) error {
	err := r.waiter.WaitUntil(ctx, func(ctx context.Context) (bool, error) {
		return w.Visible(ctx, t)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newError(ErrElementNotReady, op, name, t.String(), err)
	}
	return nil
}

// ClickAndAwait clicks t once it is visible. With EventNavigation or
// EventClose the wait for the event is armed before the click and bounded by
// the event timeout. After a close the window is forgotten and the previous
// context restored.
func (r *ActionRunner) ClickAndAwait(ctx context.Context, t Target, ev Event) (err error) {
	ctx, span := startSpan(ctx, "browser.click", attrTarget.String(t.String()), attrEvent.String(ev.String()))
	start := time.Now()
	name, w, err := r.active("click")
	defer func() {
		r.audit.action("click", name, t, ev, time.Since(start), err)
		r.metrics.observeAction("click", ev, err)
		span.SetAttributes(attrWindow.String(name))
		endSpan(span, err)
	}()
	if err != nil {
		return err
	}
	if err = r.awaitVisible(ctx, "click", name, w, t); err != nil {
		return err
	}

	if ev == EventNone {
		if err = w.Click(ctx, t); err != nil {
			return newError(ErrElementNotReady, "click", name, t.String(), err)
		}
		return nil
	}

	var clickErr error
	err = w.Expect(ctx, ev, r.timing.EventTimeout, func() error {
		clickErr = w.Click(ctx, t)
		return clickErr
	})
	switch {
	case clickErr != nil:
		err = newError(ErrElementNotReady, "click", name, t.String(), clickErr)
		return err
	case err != nil && errors.Is(err, ErrTimedOut):
		err = newError(ErrTimedOut, "await "+ev.String(), name, t.String(), err)
		return err
	case err != nil:
		err = newError(ErrUnexpectedState, "await "+ev.String(), name, t.String(), err)
		return err
	}

	if ev == EventClose {
		if cerr := r.switcher.WindowClosed(ctx, name); cerr != nil {
			err = fmt.Errorf("after closing %s: %w", name, cerr)
		}
	}
	return err
}

// TypeAndAwait types text into t once it is visible. The text never reaches
// the log.
func (r *ActionRunner) TypeAndAwait(ctx context.Context, t Target, text string) (err error) {
	ctx, span := startSpan(ctx, "browser.type", attrTarget.String(t.String()))
	name, w, err := r.active("type")
	defer func() {
		r.audit.typed(name, t, len(text), err)
		r.metrics.observeAction("type", EventNone, err)
		endSpan(span, err)
	}()
	if err != nil {
		return err
	}
	if err = r.awaitVisible(ctx, "type", name, w, t); err != nil {
		return err
	}
	if err = w.Type(ctx, t, text); err != nil {
		err = newError(ErrElementNotReady, "type", name, t.String(), err)
	}
	return err
}

// SetValue replaces the value of an input, e.g. a gas field that already
// holds a suggestion.
func (r *ActionRunner) SetValue(ctx context.Context, t Target, value string) error {
	name, w, err := r.active("set value")
	if err != nil {
		return err
	}
	if err := r.awaitVisible(ctx, "set value", name, w, t); err != nil {
		return err
	}
	if err := w.SetValue(ctx, t, value); err != nil {
		return newError(ErrElementNotReady, "set value", name, t.String(), err)
	}
	return nil
}

// Text returns the text content of t once visible.
func (r *ActionRunner) Text(ctx context.Context, t Target) (string, error) {
	name, w, err := r.active("text")
	if err != nil {
		return "", err
	}
	if err := r.awaitVisible(ctx, "text", name, w, t); err != nil {
		return "", err
	}
	return w.Text(ctx, t)
}

// Value returns the value of an input once visible.
func (r *ActionRunner) Value(ctx context.Context, t Target) (string, error) {
	name, w, err := r.active("value")
	if err != nil {
		return "", err
	}
	if err := r.awaitVisible(ctx, "value", name, w, t); err != nil {
		return "", err
	}
	return w.Value(ctx, t)
}

// Attribute returns an attribute of t once visible.
func (r *ActionRunner) Attribute(ctx context.Context, t Target, attr string) (string, error) {
	name, w, err := r.active("attribute")
	if err != nil {
		return "", err
	}
	if err := r.awaitVisible(ctx, "attribute", name, w, t); err != nil {
		return "", err
	}
	return w.Attribute(ctx, t, attr)
}

// WaitForText waits until t contains want, compared case-insensitively.
func (r *ActionRunner) WaitForText(ctx context.Context, t Target, want string, opts ...WaitOption) error {
	name, w, err := r.active("wait for text")
	if err != nil {
		return err
	}
	want = strings.ToLower(want)
	err = r.waiter.WaitUntil(ctx, func(ctx context.Context) (bool, error) {
		if ok, err := w.Visible(ctx, t); !ok || err != nil {
			return false, err
		}
		got, err := w.Text(ctx, t)
		if err != nil {
			return false, err
		}
		return strings.Contains(strings.ToLower(got), want), nil
	}, opts...)
	if err != nil {
		return newError(ErrTimedOut, "wait for text", name, t.String(), err)
	}
	return nil
}

// Probe reports whether t is visible right now. Errors read as false.
func (r *ActionRunner) Probe(ctx context.Context, t Target) bool {
	_, w, err := r.active("probe")
	if err != nil {
		return false
	}
	ok, err := w.Visible(ctx, t)
	return err == nil && ok
}

// Appears waits the settle delay and then polls briefly for optional UI such
// as tooltips. Not appearing is not an error.
func (r *ActionRunner) Appears(ctx context.Context, t Target, opts ...WaitOption) (bool, error) {
	_, w, err := r.active("appears")
	if err != nil {
		return false, err
	}
	opts = append([]WaitOption{
		WithMinDelay(r.timing.SettleDelay),
		WithTimeout(r.timing.ProbeTimeout),
	}, opts...)
	err = r.waiter.WaitUntil(ctx, func(ctx context.Context) (bool, error) {
		return w.Visible(ctx, t)
	}, opts...)
	switch {
	case err == nil:
		return true, nil
	case IsTimeout(err):
		return false, nil
	default:
		return false, err
	}
}

// ClickBackground clicks one pixel inside the top-left corner of t, which
// dismisses overlays whose backdrop is the element itself.
func (r *ActionRunner) ClickBackground(ctx context.Context, t Target) error {
	name, w, err := r.active("click background")
	if err != nil {
		return err
	}
	box, err := w.Box(ctx, t)
	if err != nil {
		return newError(ErrElementNotReady, "click background", name, t.String(), err)
	}
	if err := w.ClickAt(ctx, box.X+1, box.Y+1); err != nil {
		return newError(ErrElementNotReady, "click background", name, t.String(), err)
	}
	return nil
}

// Count returns how many elements match t in the active window.
func (r *ActionRunner) Count(ctx context.Context, t Target) (int, error) {
	_, w, err := r.active("count")
	if err != nil {
		return 0, err
	}
	return w.Count(ctx, t)
}

// Goto navigates the active window.
func (r *ActionRunner) Goto(ctx context.Context, url string) error {
	name, w, err := r.active("goto")
	if err != nil {
		return err
	}
	if err := w.Goto(ctx, url); err != nil {
		return newError(ErrUnexpectedState, "goto", name, url, err)
	}
	return nil
}

// Reload reloads the active window.
func (r *ActionRunner) Reload(ctx context.Context) error {
	name, w, err := r.active("reload")
	if err != nil {
		return err
	}
	if err := w.Reload(ctx); err != nil {
		return newError(ErrUnexpectedState, "reload", name, "", err)
	}
	return nil
}

// URL returns the active window's URL.
func (r *ActionRunner) URL(ctx context.Context) (string, error) {
	_, w, err := r.active("url")
	if err != nil {
		return "", err
	}
	return w.URL(ctx)
}

// Screenshot captures the active window.
func (r *ActionRunner) Screenshot(ctx context.Context) (string, []byte, error) {
	name, w, err := r.active("screenshot")
	if err != nil {
		return name, nil, err
	}
	buf, err := w.Screenshot(ctx)
	return name, buf, err
}
