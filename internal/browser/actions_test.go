package browser_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/walletpilot/internal/browser"
	"github.com/neboloop/walletpilot/internal/browser/browsertest"
)

func TestClickAndAwaitNavigation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.dapp.Show("#connect", "Connect")
	f.dapp.OnClick("#connect", func(w *browsertest.Window) {
		w.NavigateAfter(100*time.Millisecond, dappURL+"connected")
	})

	err := f.session.ClickAndAwait(ctx, browser.Sel("#connect"), browser.EventNavigation)
	require.NoError(t, err)

	u, err := f.session.URL(ctx)
	require.NoError(t, err)
	assert.Equal(t, dappURL+"connected", u)
	assert.Equal(t, []string{"#connect"}, f.dapp.Clicks())
}

func TestClickAndAwaitNavigationNeverHappens(t *testing.T) {
	f := newFixture(t)
	f.dapp.Show("#noop", "Nothing")

	err := f.session.ClickAndAwait(context.Background(), browser.Sel("#noop"), browser.EventNavigation)
	require.ErrorIs(t, err, browser.ErrTimedOut)
	assert.Contains(t, err.Error(), "await navigation")
}

func TestClickWaitsForElement(t *testing.T) {
	f := newFixture(t)
	f.dapp.ShowAfter(40*time.Millisecond, "#late", "Late")

	require.NoError(t, f.session.Click(context.Background(), browser.Sel("#late")))
	assert.True(t, f.dapp.Clicked("#late"))
}

func TestClickElementNeverVisible(t *testing.T) {
	f := newFixture(t)
	f.dapp.Set("#hidden", browsertest.Element{Visible: false})

	err := f.session.Click(context.Background(), browser.Sel("#hidden"))
	require.ErrorIs(t, err, browser.ErrElementNotReady)
	assert.Empty(t, f.dapp.Clicks())
}

func TestClickFailureIsElementNotReady(t *testing.T) {
	f := newFixture(t)
	f.dapp.Show("#btn", "Go")
	f.dapp.ClickErr = errors.New("element is detached")

	err := f.session.ClickAndAwait(context.Background(), browser.Sel("#btn"), browser.EventNavigation)
	require.ErrorIs(t, err, browser.ErrElementNotReady)
}

// A signature request opens a popup; confirming it closes the popup and the
// runner becomes active again.
func TestSignatureRequestRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.dapp.Show("#sign", "Sign")
	f.dapp.OnClick("#sign", func(*browsertest.Window) {
		f.extension.OpenAfter(30*time.Millisecond, popupURL, func(w *browsertest.Window) {
			w.Show(`[data-testid="signature-request-scroll-button"]`, "")
			w.Show(`[data-testid="page-container-footer-next"]`, "Sign")
			w.OnClick(`[data-testid="page-container-footer-next"]`, func(w *browsertest.Window) {
				w.CloseAfter(50 * time.Millisecond)
			})
		})
	})

	require.NoError(t, f.session.Click(ctx, browser.Sel("#sign")))

	g, err := f.session.AcquireNotification(ctx)
	require.NoError(t, err)
	defer g.Release(ctx)

	err = f.session.ClickAndAwait(ctx, browser.Sel(`[data-testid="page-container-footer-next"]`), browser.EventClose)
	require.NoError(t, err)

	assert.Equal(t, browser.WindowRunner, f.session.Switcher().Active())
	assert.Empty(t, f.session.Switcher().Saved())
	assert.False(t, f.session.Registry().Has(browser.WindowNotification))
	require.NoError(t, g.Release(ctx))
	assert.Equal(t, browser.WindowRunner, f.session.Switcher().Active())
}

func TestClickAndAwaitCloseTimeout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	popup := f.extension.Open(popupURL)
	popup.Show("#stay", "Stay")

	_, err := f.session.AwaitNotification(ctx, 100*time.Millisecond)
	require.NoError(t, err)

	err = f.session.ClickAndAwait(ctx, browser.Sel("#stay"), browser.EventClose)
	require.ErrorIs(t, err, browser.ErrTimedOut)
	assert.Equal(t, browser.WindowNotification, f.session.Switcher().Active())
}

func TestTypeAndAwait(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.dapp.Show("#password", "")

	require.NoError(t, f.session.TypeAndAwait(ctx, browser.Sel("#password"), "hunter22"))
	assert.Equal(t, "hunter22", f.dapp.Typed("#password"))

	v, err := f.session.Value(ctx, browser.Sel("#password"))
	require.NoError(t, err)
	assert.Equal(t, "hunter22", v)

	require.NoError(t, f.session.SetValue(ctx, browser.Sel("#password"), "replaced"))
	assert.Equal(t, "replaced", f.dapp.Typed("#password"))
}

func TestActionWithoutActiveWindow(t *testing.T) {
	runner := browsertest.NewDriver(browser.DriverRunner)
	extension := browsertest.NewDriver(browser.DriverExtension)
	s := browser.NewSession(runner, extension, browser.SessionOptions{Timing: fastTiming()})

	err := s.Click(context.Background(), browser.Sel("#x"))
	require.ErrorIs(t, err, browser.ErrUnexpectedState)
}

func TestTargetTextAndNth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.dapp.Add(".network", browsertest.Element{Visible: true, Text: "Ethereum Mainnet"})
	f.dapp.Add(".network", browsertest.Element{Visible: true, Text: "Sepolia"})
	f.dapp.Add(".network", browsertest.Element{Visible: true, Text: "Localhost 8545"})

	text, err := f.session.Text(ctx, browser.Sel(".network").WithText("sepolia"))
	require.NoError(t, err)
	assert.Equal(t, "Sepolia", text)

	text, err = f.session.Text(ctx, browser.Sel(".network").At(2))
	require.NoError(t, err)
	assert.Equal(t, "Localhost 8545", text)

	n, err := f.session.Count(ctx, browser.Sel(".network"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Equal(t, ".network :text(Sepolia) >> nth=1", browser.Sel(".network").WithText("Sepolia").At(1).String())
}

func TestAppearsAndProbe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.session.Appears(ctx, browser.Sel(".tippy-tooltip"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, f.session.Probe(ctx, browser.Sel(".tippy-tooltip")))

	f.dapp.ShowAfter(5*time.Millisecond, ".tippy-tooltip", "Tip")
	ok, err = f.session.Appears(ctx, browser.Sel(".tippy-tooltip"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, f.session.Probe(ctx, browser.Sel(".tippy-tooltip")))
}

func TestClickBackground(t *testing.T) {
	f := newFixture(t)
	f.dapp.Set(".popover-bg", browsertest.Element{Visible: true, Box: browser.Box{X: 10, Y: 20, Width: 300, Height: 400}})

	require.NoError(t, f.session.ClickBackground(context.Background(), browser.Sel(".popover-bg")))
	assert.Equal(t, []string{"@11,21"}, f.dapp.Clicks())
}

func TestWaitForText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.dapp.Show("#status", "pending")
	time.AfterFunc(20*time.Millisecond, func() { f.dapp.Show("#status", "Transaction CONFIRMED") })

	require.NoError(t, f.session.WaitForText(ctx, browser.Sel("#status"), "confirmed"))

	err := f.session.WaitForText(ctx, browser.Sel("#status"), "failed", browser.WithTimeout(30*time.Millisecond))
	require.ErrorIs(t, err, browser.ErrTimedOut)
}

func TestActionMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := newFixture(t, func(o *browser.SessionOptions) {
		o.Metrics = browser.NewMetrics(reg)
	})
	ctx := context.Background()
	f.dapp.Show("#ok", "OK")

	require.NoError(t, f.session.Click(ctx, browser.Sel("#ok")))
	_, err := f.session.EnsureActive(ctx, browser.WindowExtension)
	require.NoError(t, err)
	_, _ = f.session.AwaitNotification(ctx, 20*time.Millisecond)

	n, err := testutil.GatherAndCount(reg, "walletpilot_actions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = testutil.GatherAndCount(reg, "walletpilot_context_switches_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = testutil.GatherAndCount(reg, "walletpilot_notifications_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
