package browser

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every failure returned by the core matches exactly one of
// these through errors.Is, and may additionally match its cause.
var (
	ErrNotFound         = errors.New("window not found")
	ErrTimedOut         = errors.New("timed out")
	ErrElementNotReady  = errors.New("element not ready")
	ErrUnexpectedState  = errors.New("unexpected state")
	ErrWindowClosed     = errors.New("window closed")
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// Error describes a failed operation against a logical window.
type Error struct {
	Kind   error
	Op     string
	Window string
	Target string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Window != "" {
		fmt.Fprintf(&b, " [%s]", e.Window)
	}
	if e.Target != "" {
		fmt.Fprintf(&b, " %q", e.Target)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil && !errors.Is(e.Err, e.Kind) {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, op, window, target string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Window: window, Target: target, Err: cause}
}

// IsTimeout reports whether err is a timeout from a wait or a correlated event.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimedOut)
}
