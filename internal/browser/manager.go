package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ConnectFunc attaches one driver to the browser at a CDP endpoint.
type ConnectFunc func(ctx context.Context, endpoint string, actionTimeout time.Duration) (Driver, error)

// Manager owns the browser process (when it launched one) and the session
// attached to it.
type Manager struct {
	mu sync.Mutex

	config  *ResolvedConfig
	running *RunningChrome
	session *Session
	logger  *slog.Logger
	metrics *Metrics

	connectRunner    ConnectFunc
	connectExtension ConnectFunc
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger handed to the session.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics sets the metrics handed to the session.
func WithMetrics(mt *Metrics) ManagerOption {
	return func(m *Manager) { m.metrics = mt }
}

// WithConnectors replaces the driver connectors. Either may be nil to keep
// the default.
func WithConnectors(runner, extension ConnectFunc) ManagerOption {
	return func(m *Manager) {
		if runner != nil {
			m.connectRunner = runner
		}
		if extension != nil {
			m.connectExtension = extension
		}
	}
}

// NewManager creates a manager for cfg. Nothing is started until Start.
func NewManager(cfg Config, opts ...ManagerOption) *Manager {
	m := &Manager{
		config:           ResolveConfig(cfg),
		logger:           slog.Default(),
		connectRunner:    ConnectChromedp,
		connectExtension: ConnectPlaywright,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the resolved config.
func (m *Manager) Config() *ResolvedConfig {
	return m.config
}

// Running returns the launched browser, or nil when attached.
func (m *Manager) Running() *RunningChrome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Start launches the browser unless attaching, connects both drivers and
// assigns the runner and extension windows. Calling Start again returns the
// existing session.
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return m.session, nil
	}

	if !IsChromeReachable(ctx, m.config.CDPUrl) {
		if m.config.Attach {
			return nil, fmt.Errorf("no browser answering at %s", m.config.CDPUrl)
		}
		running, err := LaunchChrome(ctx, m.config)
		if err != nil {
			return nil, err
		}
		m.running = running
		m.logger.Info("browser launched", "pid", running.PID, "kind", running.Executable.Kind, "port", running.CDPPort)
	}

	wsURL, err := GetChromeWebSocketURL(ctx, m.config.CDPUrl)
	if err != nil {
		m.stopBrowser()
		return nil, fmt.Errorf("resolve debugger url: %w", err)
	}

	timeout := m.config.Timing.WaitTimeout
	runner, err := m.connectRunner(ctx, wsURL, timeout)
	if err != nil {
		m.stopBrowser()
		return nil, fmt.Errorf("connect runner: %w", err)
	}
	extension, err := m.connectExtension(ctx, m.config.CDPUrl, timeout)
	if err != nil {
		_ = runner.Close()
		m.stopBrowser()
		return nil, fmt.Errorf("connect extension driver: %w", err)
	}

	session := NewSession(runner, extension, SessionOptions{
		Timing:  m.config.Timing,
		Logger:  m.logger,
		Metrics: m.metrics,
	})
	if _, err := session.AssignWindows(ctx); err != nil {
		_ = session.Close()
		m.stopBrowser()
		return nil, err
	}

	m.session = session
	return session, nil
}

// Session returns the started session, or nil.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Stop closes the session and stops a launched browser. An attached browser
// is left running.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.session != nil {
		err = m.session.Close()
		m.session = nil
	}
	m.stopBrowser()
	return err
}

func (m *Manager) stopBrowser() {
	if m.running == nil {
		return
	}
	if err := StopChrome(m.running, 5*time.Second); err != nil {
		m.logger.Warn("stop browser", "pid", m.running.PID, "error", err)
	}
	m.running = nil
}
