package browser

import (
	"testing"
	"time"
)

func TestResolveConfigDefaults(t *testing.T) {
	t.Setenv("WALLETPILOT_DATA_DIR", t.TempDir())
	cfg := ResolveConfig(Config{})

	if cfg.Attach {
		t.Error("expected launch mode without cdpUrl")
	}
	if cfg.CDPPort != DefaultCDPPort {
		t.Errorf("expected port %d, got %d", DefaultCDPPort, cfg.CDPPort)
	}
	if cfg.CDPUrl != "http://127.0.0.1:9222" {
		t.Errorf("unexpected cdp url %s", cfg.CDPUrl)
	}
	if cfg.UserDataDir == "" {
		t.Error("expected a user data dir")
	}
	if cfg.Timing != DefaultTiming() {
		t.Errorf("expected default timing, got %+v", cfg.Timing)
	}
}

func TestResolveConfigAttach(t *testing.T) {
	cfg := ResolveConfig(Config{CDPUrl: "ws://10.0.0.5:9333/devtools/browser/abc", UserDataDir: "/tmp/p"})

	if !cfg.Attach {
		t.Error("expected attach mode")
	}
	if cfg.CDPPort != 9333 {
		t.Errorf("expected port 9333, got %d", cfg.CDPPort)
	}
	if cfg.CDPIsLoopback {
		t.Error("10.0.0.5 is not loopback")
	}
	if cfg.UserDataDir != "/tmp/p" {
		t.Errorf("unexpected user data dir %s", cfg.UserDataDir)
	}
}

func TestTimingOverrides(t *testing.T) {
	timing := TimingConfig{WaitTimeout: 2500, PollInterval: 50, BlankPageAttempts: 2}.Resolve()

	if timing.WaitTimeout != 2500*time.Millisecond {
		t.Errorf("wait timeout = %s", timing.WaitTimeout)
	}
	if timing.PollInterval != 50*time.Millisecond {
		t.Errorf("poll interval = %s", timing.PollInterval)
	}
	if timing.BlankPage.MaxAttempts != 2 {
		t.Errorf("blank page attempts = %d", timing.BlankPage.MaxAttempts)
	}
	if timing.EventTimeout != DefaultEventTimeout {
		t.Errorf("event timeout = %s", timing.EventTimeout)
	}
}
