package browser_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/walletpilot/internal/browser"
	"github.com/neboloop/walletpilot/internal/browser/browsertest"
)

const (
	dappURL      = "http://localhost:3000/"
	extensionURL = "chrome-extension://nkbihfbeogaeaoehlefnkodbefgpgknn/home.html"
	popupURL     = "chrome-extension://nkbihfbeogaeaoehlefnkodbefgpgknn/notification.html"
)

func fastTiming() browser.Timing {
	return browser.Timing{
		PollInterval:        5 * time.Millisecond,
		WaitTimeout:         200 * time.Millisecond,
		EventTimeout:        300 * time.Millisecond,
		NotificationTimeout: 300 * time.Millisecond,
		SettleDelay:         10 * time.Millisecond,
		ProbeTimeout:        30 * time.Millisecond,
		BlankPage: browser.RetryPolicy{
			MaxAttempts: 3,
			Backoff:     5 * time.Millisecond,
		},
	}
}

type fixture struct {
	session   *browser.Session
	runner    *browsertest.Driver
	extension *browsertest.Driver
	dapp      *browsertest.Window
	wallet    *browsertest.Window
}

// newFixture wires a session the way a test run sees the browser: the runner
// owns the dapp page, and the extension driver sees both the dapp page and
// the wallet home page.
func newFixture(t *testing.T, opts ...func(*browser.SessionOptions)) *fixture {
	t.Helper()
	runner := browsertest.NewDriver(browser.DriverRunner)
	extension := browsertest.NewDriver(browser.DriverExtension)

	f := &fixture{
		runner:    runner,
		extension: extension,
		dapp:      runner.Open(dappURL),
	}
	extension.Open(dappURL)
	f.wallet = extension.Open(extensionURL)

	o := browser.SessionOptions{Timing: fastTiming()}
	for _, fn := range opts {
		fn(&o)
	}
	f.session = browser.NewSession(runner, extension, o)

	u, err := f.session.AssignWindows(context.Background())
	require.NoError(t, err)
	require.Equal(t, extensionURL, u)
	return f
}

func TestAssignWindows(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, browser.WindowRunner, f.session.Switcher().Active())
	assert.Equal(t, []string{browser.WindowExtension, browser.WindowRunner}, f.session.Registry().Names())

	h, err := f.session.Registry().Resolve(browser.WindowExtension)
	require.NoError(t, err)
	assert.Equal(t, browser.DriverExtension, h.Owner())
	assert.Same(t, f.wallet, h.Window())

	for _, w := range []*browsertest.Window{f.wallet} {
		assert.True(t, f.session.Notifications().Known(w.ID()))
	}
}

func TestAssignWindowsWithoutExtension(t *testing.T) {
	runner := browsertest.NewDriver(browser.DriverRunner)
	runner.Open(dappURL)
	extension := browsertest.NewDriver(browser.DriverExtension)
	extension.Open(dappURL)

	s := browser.NewSession(runner, extension, browser.SessionOptions{Timing: fastTiming()})
	_, err := s.AssignWindows(context.Background())
	require.ErrorIs(t, err, browser.ErrNotFound)
}

func TestExtensionID(t *testing.T) {
	assert.Equal(t, "nkbihfbeogaeaoehlefnkodbefgpgknn", browser.ExtensionID(extensionURL))
	assert.Equal(t, "abc", browser.ExtensionID("chrome-extension://abc"))
	assert.Empty(t, browser.ExtensionID(dappURL))
}

func TestCaptureFailure(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()

	path, err := f.session.CaptureFailure(context.Background(), dir, "confirm signature")
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, path, "confirm_signature-runner-")
}

func TestSessionClose(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Close())
	assert.True(t, f.runner.IsClosed())
	assert.True(t, f.extension.IsClosed())
}
