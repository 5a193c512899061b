package browser

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("locator resolved to hidden element")
	err := fmt.Errorf("unlock: %w", newError(ErrElementNotReady, "click", WindowExtension, "#unlock", cause))

	if !errors.Is(err, ErrElementNotReady) {
		t.Error("expected ErrElementNotReady")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to match")
	}
	if errors.Is(err, ErrTimedOut) {
		t.Error("did not expect ErrTimedOut")
	}

	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("expected *Error")
	}
	if e.Window != WindowExtension || e.Op != "click" {
		t.Errorf("unexpected error fields: %+v", e)
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{newError(ErrNotFound, "resolve", "runner", "", nil), "resolve [runner]: window not found"},
		{newError(ErrTimedOut, "wait", "", "", nil), "wait: timed out"},
		{
			newError(ErrElementNotReady, "click", "extension", "#btn", errors.New("detached")),
			`click [extension] "#btn": element not ready: detached`,
		},
		{
			newError(ErrTimedOut, "await close", "extension-notification", "", fmt.Errorf("close: %w", ErrTimedOut)),
			"await close [extension-notification]: timed out",
		},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
