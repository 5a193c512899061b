package browser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/walletpilot/internal/browser"
)

func TestEnsureActiveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	switched, err := f.session.EnsureActive(ctx, browser.WindowRunner)
	require.NoError(t, err)
	assert.False(t, switched)
	assert.Zero(t, f.dapp.Fronted())
	assert.Empty(t, f.session.Switcher().Saved())
}

func TestEnsureActiveThenRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sw := f.session.Switcher()

	switched, err := f.session.EnsureActive(ctx, browser.WindowExtension)
	require.NoError(t, err)
	assert.True(t, switched)
	assert.Equal(t, browser.WindowExtension, sw.Active())
	assert.Equal(t, browser.WindowRunner, sw.Saved())
	assert.Equal(t, 1, f.wallet.Fronted())

	restored, err := f.session.RestorePrevious(ctx)
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, browser.WindowRunner, sw.Active())
	assert.Empty(t, sw.Saved())
	assert.Equal(t, 1, f.dapp.Fronted())
}

func TestRestoreWithNothingSaved(t *testing.T) {
	f := newFixture(t)

	restored, err := f.session.RestorePrevious(context.Background())
	require.NoError(t, err)
	assert.False(t, restored)
	assert.Equal(t, browser.WindowRunner, f.session.Switcher().Active())
}

func TestSavedSlotIsNotOverwritten(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sw := f.session.Switcher()
	popup := f.extension.Open(popupURL)
	f.session.Register(browser.WindowNotification, browser.DriverExtension, popup)

	_, err := f.session.EnsureActive(ctx, browser.WindowExtension)
	require.NoError(t, err)
	_, err = f.session.EnsureActive(ctx, browser.WindowNotification)
	require.NoError(t, err)
	assert.Equal(t, browser.WindowRunner, sw.Saved())

	_, err = f.session.RestorePrevious(ctx)
	require.NoError(t, err)
	assert.Equal(t, browser.WindowRunner, sw.Active())
}

func TestEnsureActiveUnknownWindow(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.EnsureActive(context.Background(), browser.WindowNotification)
	require.ErrorIs(t, err, browser.ErrNotFound)
	assert.Equal(t, browser.WindowRunner, f.session.Switcher().Active())
	assert.Empty(t, f.session.Switcher().Saved())
}

func TestGuardRestoresOnRelease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sw := f.session.Switcher()

	g, err := f.session.Acquire(ctx, browser.WindowExtension)
	require.NoError(t, err)
	assert.Equal(t, browser.WindowExtension, sw.Active())
	assert.Equal(t, browser.WindowExtension, g.Name())

	require.NoError(t, g.Release(ctx))
	assert.Equal(t, browser.WindowRunner, sw.Active())

	// A second release must not switch again.
	_, err = f.session.EnsureActive(ctx, browser.WindowExtension)
	require.NoError(t, err)
	require.NoError(t, g.Release(ctx))
	assert.Equal(t, browser.WindowExtension, sw.Active())
}

func TestNestedGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sw := f.session.Switcher()
	f.session.Register(browser.WindowNotification, browser.DriverExtension, f.extension.Open(popupURL))

	outer, err := f.session.Acquire(ctx, browser.WindowExtension)
	require.NoError(t, err)
	inner, err := f.session.Acquire(ctx, browser.WindowNotification)
	require.NoError(t, err)

	require.NoError(t, inner.Release(ctx))
	assert.Equal(t, browser.WindowNotification, sw.Active(), "inner guard did not save, so it must not restore")

	require.NoError(t, outer.Release(ctx))
	assert.Equal(t, browser.WindowRunner, sw.Active())
}

func TestGuardOnAlreadyActiveWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.session.Acquire(ctx, browser.WindowRunner)
	require.NoError(t, err)
	require.NoError(t, g.Release(ctx))
	assert.Equal(t, browser.WindowRunner, f.session.Switcher().Active())
	assert.Zero(t, f.dapp.Fronted())
}

func TestWindowClosedRestoresSaved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sw := f.session.Switcher()
	popup := f.extension.Open(popupURL)
	f.session.Register(browser.WindowNotification, browser.DriverExtension, popup)

	_, err := f.session.EnsureActive(ctx, browser.WindowNotification)
	require.NoError(t, err)

	popup.CloseNow()
	require.NoError(t, sw.WindowClosed(ctx, browser.WindowNotification))
	assert.Equal(t, browser.WindowRunner, sw.Active())
	assert.Empty(t, sw.Saved())
	assert.False(t, f.session.Registry().Has(browser.WindowNotification))
}

func TestWindowClosedWithNothingSaved(t *testing.T) {
	f := newFixture(t)
	sw := f.session.Switcher()
	sw.Assign(browser.WindowExtension)

	require.NoError(t, sw.WindowClosed(context.Background(), browser.WindowExtension))
	assert.Empty(t, sw.Active())
}

func TestSwitchToDropsPendingRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sw := f.session.Switcher()

	g, err := sw.Acquire(ctx, browser.WindowExtension)
	require.NoError(t, err)
	require.Equal(t, browser.WindowRunner, sw.Saved())

	require.NoError(t, f.session.SwitchTo(ctx, browser.WindowRunner))
	assert.Equal(t, browser.WindowRunner, sw.Active())
	assert.Empty(t, sw.Saved())

	// The guard's restore was consumed by the hard switch.
	require.NoError(t, g.Release(ctx))
	assert.Equal(t, browser.WindowRunner, sw.Active())
	assert.Equal(t, 1, f.dapp.Fronted())
}
