package browser

import (
	"context"
	"strconv"
	"time"
)

// DriverKind identifies which automation session owns a window.
type DriverKind string

const (
	// DriverRunner is the test runner's own session (chromedp).
	DriverRunner DriverKind = "runner"

	// DriverExtension is the secondary session attached to the same browser
	// (playwright over CDP) used for the wallet extension windows.
	DriverExtension DriverKind = "extension"
)

// Event is a browser event an action can be correlated with.
type Event int

const (
	EventNone Event = iota
	EventNavigation
	EventClose
)

func (e Event) String() string {
	switch e {
	case EventNavigation:
		return "navigation"
	case EventClose:
		return "close"
	default:
		return "none"
	}
}

// Target addresses an element inside a window. Text narrows the selector
// matches to those containing the text; Nth picks a match (0-based).
type Target struct {
	Selector string
	Text     string
	Nth      int
}

// Sel is shorthand for a plain selector target.
func Sel(selector string) Target { return Target{Selector: selector} }

// WithText returns a copy of t restricted to elements containing text.
func (t Target) WithText(text string) Target {
	t.Text = text
	return t
}

// At returns a copy of t addressing the nth match.
func (t Target) At(nth int) Target {
	t.Nth = nth
	return t
}

func (t Target) String() string {
	s := t.Selector
	if t.Text != "" {
		s += " :text(" + t.Text + ")"
	}
	if t.Nth > 0 {
		s += " >> nth=" + strconv.Itoa(t.Nth)
	}
	return s
}

// Box is an element's bounding box in CSS pixels.
type Box struct {
	X, Y, Width, Height float64
}

// Driver is one automation session attached to the browser.
type Driver interface {
	Kind() DriverKind
	// Windows lists open windows in creation order.
	Windows(ctx context.Context) ([]Window, error)
	Close() error
}

// Window is a single page or popup as seen by one driver.
type Window interface {
	ID() string
	URL(ctx context.Context) (string, error)
	Goto(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	BringToFront(ctx context.Context) error
	Close(ctx context.Context) error
	Closed() bool

	Visible(ctx context.Context, t Target) (bool, error)
	Count(ctx context.Context, t Target) (int, error)
	Click(ctx context.Context, t Target) error
	ClickAt(ctx context.Context, x, y float64) error
	Box(ctx context.Context, t Target) (Box, error)
	Type(ctx context.Context, t Target, text string) error
	SetValue(ctx context.Context, t Target, value string) error
	Text(ctx context.Context, t Target) (string, error)
	Value(ctx context.Context, t Target) (string, error)
	Attribute(ctx context.Context, t Target, name string) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)

	// Expect arms a wait for ev, runs trigger, then blocks until ev fires or
	// timeout elapses. The wait is armed before trigger runs.
	Expect(ctx context.Context, ev Event, timeout time.Duration, trigger func() error) error
}
