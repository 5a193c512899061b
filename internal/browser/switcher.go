package browser

import (
	"context"
	"fmt"
	"sync"
)

// Switcher owns the active context: the logical window every UI action
// targets, plus one saved previous name to switch back to. The saved slot is
// a single value, not a stack; it is only filled while empty.
type Switcher struct {
	mu       sync.Mutex
	registry *Registry
	active   string
	saved    string
	gen      uint64

	audit   *auditLogger
	metrics *Metrics
}

// NewSwitcher creates a switcher over reg with no active window.
func NewSwitcher(reg *Registry, audit *auditLogger, m *Metrics) *Switcher {
	return &Switcher{registry: reg, audit: audit, metrics: m}
}

// Active returns the active window name, or "" if none.
func (s *Switcher) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Saved returns the saved previous name, or "" if the slot is empty.
func (s *Switcher) Saved() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// Assign records name as active without touching the browser. Used once the
// windows are known, before any switching.
func (s *Switcher) Assign(name string) {
	s.mu.Lock()
	s.active = name
	s.saved = ""
	s.mu.Unlock()
}

// EnsureActive makes name the active window. It reports false when name was
// already active, in which case nothing changes.
func (s *Switcher) EnsureActive(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	if s.active == name {
		s.mu.Unlock()
		return false, nil
	}
	s.mu.Unlock()

	h, err := s.registry.Resolve(name)
	if err != nil {
		return false, err
	}
	if err := h.Window().BringToFront(ctx); err != nil {
		return false, newError(ErrUnexpectedState, "switch", name, "", err)
	}

	s.mu.Lock()
	from := s.active
	saved := false
	if s.saved == "" && from != "" {
		s.saved = from
		s.gen++
		saved = true
	}
	s.active = name
	s.mu.Unlock()

	s.audit.switched(from, name, saved)
	s.metrics.observeSwitch(name)
	return true, nil
}

// SwitchTo makes name active and empties the saved slot, ending any
// pending restore. Flows use it to hand control back to the runner at the
// end of setup regardless of how they got there.
func (s *Switcher) SwitchTo(ctx context.Context, name string) error {
	s.mu.Lock()
	already := s.active == name
	s.mu.Unlock()
	if !already {
		h, err := s.registry.Resolve(name)
		if err != nil {
			return err
		}
		if err := h.Window().BringToFront(ctx); err != nil {
			return newError(ErrUnexpectedState, "switch", name, "", err)
		}
		s.audit.switched(s.Active(), name, false)
		s.metrics.observeSwitch(name)
	}

	s.mu.Lock()
	s.active = name
	if s.saved != "" {
		s.saved = ""
		s.gen++
	}
	s.mu.Unlock()
	return nil
}

// RestorePrevious re-activates the saved window and clears the slot. It
// reports false when nothing was saved.
func (s *Switcher) RestorePrevious(ctx context.Context) (bool, error) {
	s.mu.Lock()
	name := s.saved
	s.mu.Unlock()
	if name == "" {
		return false, nil
	}

	h, err := s.registry.Resolve(name)
	if err != nil {
		s.clearSaved(name)
		return false, fmt.Errorf("restore previous window: %w", err)
	}
	if err := h.Window().BringToFront(ctx); err != nil {
		return false, newError(ErrUnexpectedState, "restore", name, "", err)
	}

	s.mu.Lock()
	s.active = name
	s.saved = ""
	s.mu.Unlock()

	s.audit.restored(name)
	s.metrics.observeSwitch(name)
	return true, nil
}

func (s *Switcher) clearSaved(name string) {
	s.mu.Lock()
	if s.saved == name {
		s.saved = ""
	}
	s.mu.Unlock()
}

// WindowClosed forgets a window that is gone. If it was active, the saved
// window becomes active again, or no window is active when nothing was saved.
func (s *Switcher) WindowClosed(ctx context.Context, name string) error {
	s.registry.Forget(name)
	s.clearSaved(name)

	s.mu.Lock()
	wasActive := s.active == name
	if wasActive {
		s.active = ""
	}
	s.mu.Unlock()
	if !wasActive {
		return nil
	}

	_, err := s.RestorePrevious(ctx)
	s.audit.windowClosed(name, s.Active())
	return err
}

// Guard undoes one Acquire. Release is safe to call more than once and from
// a defer.
type Guard struct {
	s        *Switcher
	name     string
	filled   bool
	gen      uint64
	released bool
}

// Acquire activates name for the duration of a scope. The returned guard
// restores the previous window on Release only if this acquisition is the one
// that saved it.
func (s *Switcher) Acquire(ctx context.Context, name string) (*Guard, error) {
	mark := s.Mark()
	if _, err := s.EnsureActive(ctx, name); err != nil {
		return nil, err
	}
	return s.GuardSince(mark, name), nil
}

// Mark captures the saved slot before an activation made by another
// component, for use with GuardSince.
func (s *Switcher) Mark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved == ""
}

// GuardSince returns a guard for an activation of name that happened after
// Mark returned emptyBefore.
func (s *Switcher) GuardSince(emptyBefore bool, name string) *Guard {
	g := &Guard{s: s, name: name}
	s.mu.Lock()
	if emptyBefore && s.saved != "" {
		g.filled = true
		g.gen = s.gen
	}
	s.mu.Unlock()
	return g
}

// Name returns the window the guard activated.
func (g *Guard) Name() string { return g.name }

// Release restores the saved window if this guard filled the slot and the
// slot has not been consumed since.
func (g *Guard) Release(ctx context.Context) error {
	if g == nil || g.released {
		return nil
	}
	g.released = true
	if !g.filled {
		return nil
	}

	s := g.s
	s.mu.Lock()
	stale := s.saved == "" || s.gen != g.gen
	s.mu.Unlock()
	if stale {
		return nil
	}
	_, err := s.RestorePrevious(ctx)
	return err
}
