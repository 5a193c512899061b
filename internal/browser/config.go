package browser

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/neboloop/walletpilot/internal/defaults"
)

// Config is the browser section of the walletpilot config file.
type Config struct {
	// CDPUrl attaches to an already running browser instead of launching one.
	CDPUrl string `json:"cdpUrl,omitempty" yaml:"cdpUrl,omitempty"`

	// CDPPort is the remote debugging port of a launched browser.
	CDPPort int `json:"cdpPort,omitempty" yaml:"cdpPort,omitempty"`

	// ExecutablePath overrides auto-detection of Chrome.
	ExecutablePath string `json:"executablePath,omitempty" yaml:"executablePath,omitempty"`

	// Headless runs the browser without UI. Extensions need the new headless mode.
	Headless bool `json:"headless,omitempty" yaml:"headless,omitempty"`

	// NoSandbox disables Chrome sandbox (needed in some containers).
	NoSandbox bool `json:"noSandbox,omitempty" yaml:"noSandbox,omitempty"`

	// ExtensionPath is the unpacked wallet extension directory to load.
	ExtensionPath string `json:"extensionPath,omitempty" yaml:"extensionPath,omitempty"`

	// UserDataDir overrides the browser profile directory.
	UserDataDir string `json:"userDataDir,omitempty" yaml:"userDataDir,omitempty"`

	// Timing overrides, all in milliseconds.
	Timing TimingConfig `json:"timing,omitempty" yaml:"timing,omitempty"`
}

// TimingConfig holds timing overrides in milliseconds. Zero keeps the default.
type TimingConfig struct {
	PollInterval        int `json:"pollInterval,omitempty" yaml:"pollInterval,omitempty"`
	WaitTimeout         int `json:"waitTimeout,omitempty" yaml:"waitTimeout,omitempty"`
	EventTimeout        int `json:"eventTimeout,omitempty" yaml:"eventTimeout,omitempty"`
	NotificationTimeout int `json:"notificationTimeout,omitempty" yaml:"notificationTimeout,omitempty"`
	SettleDelay         int `json:"settleDelay,omitempty" yaml:"settleDelay,omitempty"`
	ProbeTimeout        int `json:"probeTimeout,omitempty" yaml:"probeTimeout,omitempty"`
	BlankPageAttempts   int `json:"blankPageAttempts,omitempty" yaml:"blankPageAttempts,omitempty"`
	BlankPageBackoff    int `json:"blankPageBackoff,omitempty" yaml:"blankPageBackoff,omitempty"`
}

// Timing is the resolved set of durations used by a session.
type Timing struct {
	PollInterval        time.Duration
	WaitTimeout         time.Duration
	EventTimeout        time.Duration
	NotificationTimeout time.Duration
	SettleDelay         time.Duration
	ProbeTimeout        time.Duration
	BlankPage           RetryPolicy
}

// DefaultTiming returns the package timing defaults.
func DefaultTiming() Timing {
	return Timing{
		PollInterval:        DefaultPollInterval,
		WaitTimeout:         DefaultWaitTimeout,
		EventTimeout:        DefaultEventTimeout,
		NotificationTimeout: DefaultNotificationTimeout,
		SettleDelay:         DefaultSettleDelay,
		ProbeTimeout:        DefaultProbeTimeout,
		BlankPage: RetryPolicy{
			MaxAttempts:  DefaultBlankPageAttempts,
			Backoff:      DefaultBlankPageBackoff,
			InitialDelay: DefaultBlankPageInitialDelay,
		},
	}
}

// Resolve applies overrides on top of the defaults.
func (c TimingConfig) Resolve() Timing {
	t := DefaultTiming()
	ms := func(dst *time.Duration, v int) {
		if v > 0 {
			*dst = time.Duration(v) * time.Millisecond
		}
	}
	ms(&t.PollInterval, c.PollInterval)
	ms(&t.WaitTimeout, c.WaitTimeout)
	ms(&t.EventTimeout, c.EventTimeout)
	ms(&t.NotificationTimeout, c.NotificationTimeout)
	ms(&t.SettleDelay, c.SettleDelay)
	ms(&t.ProbeTimeout, c.ProbeTimeout)
	ms(&t.BlankPage.Backoff, c.BlankPageBackoff)
	if c.BlankPageAttempts > 0 {
		t.BlankPage.MaxAttempts = c.BlankPageAttempts
	}
	return t
}

// ResolvedConfig is the fully resolved browser configuration.
type ResolvedConfig struct {
	CDPUrl         string
	CDPPort        int
	CDPIsLoopback  bool
	Attach         bool
	ExecutablePath string
	Headless       bool
	NoSandbox      bool
	ExtensionPath  string
	UserDataDir    string
	Timing         Timing
}

// ResolveConfig resolves a browser config with defaults applied.
func ResolveConfig(cfg Config) *ResolvedConfig {
	resolved := &ResolvedConfig{
		ExecutablePath: cfg.ExecutablePath,
		Headless:       cfg.Headless,
		NoSandbox:      cfg.NoSandbox,
		ExtensionPath:  cfg.ExtensionPath,
		UserDataDir:    cfg.UserDataDir,
		Timing:         cfg.Timing.Resolve(),
	}

	if cfg.CDPUrl != "" {
		resolved.Attach = true
		resolved.CDPUrl = cfg.CDPUrl
		resolved.CDPPort = portFromURL(cfg.CDPUrl)
		resolved.CDPIsLoopback = isLoopbackURL(cfg.CDPUrl)
	} else {
		port := cfg.CDPPort
		if port == 0 {
			port = DefaultCDPPort
		}
		resolved.CDPPort = port
		resolved.CDPUrl = fmt.Sprintf("http://127.0.0.1:%d", port)
		resolved.CDPIsLoopback = true
	}

	if resolved.UserDataDir == "" {
		resolved.UserDataDir = resolveUserDataDir()
	}
	return resolved
}

func portFromURL(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DefaultCDPPort
	}
	port := u.Port()
	if port == "" {
		if u.Scheme == "https" || u.Scheme == "wss" {
			return 443
		}
		return 80
	}
	p, err := strconv.Atoi(port)
	if err != nil || p == 0 {
		return DefaultCDPPort
	}
	return p
}

func isLoopbackURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "127.0.0.1" || host == "localhost" || host == "::1"
}

func resolveUserDataDir() string {
	dir, err := defaults.DataDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".walletpilot")
	}
	return filepath.Join(dir, "browser", "user-data")
}
