package browser

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// WindowHandle references one live window owned by a driver. Handles are
// only ever shared by pointer through the Registry.
type WindowHandle struct {
	id     string
	owner  DriverKind
	window Window
}

// NewHandle wraps a driver window.
func NewHandle(owner DriverKind, w Window) *WindowHandle {
	return &WindowHandle{
		id:     "win-" + shortID(),
		owner:  owner,
		window: w,
	}
}

func shortID() string { return uuid.New().String()[:8] }

func (h *WindowHandle) ID() string        { return h.id }
func (h *WindowHandle) Owner() DriverKind { return h.owner }
func (h *WindowHandle) Window() Window    { return h.window }

// Closed reports whether the underlying window is gone.
func (h *WindowHandle) Closed() bool {
	return h.window == nil || h.window.Closed()
}

// Registry maps logical window names to handles.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*WindowHandle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*WindowHandle)}
}

// Resolve returns the handle registered under name. A handle whose window
// has closed is forgotten and reported as not found.
func (r *Registry) Resolve(name string) (*WindowHandle, error) {
	r.mu.RLock()
	h, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, newError(ErrNotFound, "resolve", name, "", nil)
	}
	if h.Closed() {
		r.mu.Lock()
		if r.entries[name] == h {
			delete(r.entries, name)
		}
		r.mu.Unlock()
		return nil, newError(ErrNotFound, "resolve", name, "", ErrWindowClosed)
	}
	return h, nil
}

// Register binds name to h, replacing any previous binding.
func (r *Registry) Register(name string, h *WindowHandle) {
	r.mu.Lock()
	r.entries[name] = h
	r.mu.Unlock()
}

// Forget removes name. Unknown names are ignored.
func (r *Registry) Forget(name string) {
	r.mu.Lock()
	delete(r.entries, name)
	r.mu.Unlock()
}

// Has reports whether name is registered, without checking liveness.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Count returns the number of registered names.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
