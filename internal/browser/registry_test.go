package browser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/walletpilot/internal/browser"
	"github.com/neboloop/walletpilot/internal/browser/browsertest"
)

func TestRegistryResolveUnknown(t *testing.T) {
	reg := browser.NewRegistry()

	_, err := reg.Resolve(browser.WindowExtension)
	require.ErrorIs(t, err, browser.ErrNotFound)
	assert.Contains(t, err.Error(), browser.WindowExtension)
}

func TestRegistryRegisterReplaceForget(t *testing.T) {
	d := browsertest.NewDriver(browser.DriverExtension)
	reg := browser.NewRegistry()

	first := browser.NewHandle(browser.DriverExtension, d.Open(extensionURL))
	reg.Register(browser.WindowExtension, first)

	got, err := reg.Resolve(browser.WindowExtension)
	require.NoError(t, err)
	assert.Same(t, first, got)

	second := browser.NewHandle(browser.DriverExtension, d.Open(extensionURL))
	reg.Register(browser.WindowExtension, second)
	got, err = reg.Resolve(browser.WindowExtension)
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Equal(t, 1, reg.Count())

	reg.Forget(browser.WindowExtension)
	_, err = reg.Resolve(browser.WindowExtension)
	require.ErrorIs(t, err, browser.ErrNotFound)
	assert.Zero(t, reg.Count())

	reg.Forget("never-registered")
}

func TestRegistryClosedWindowIsForgotten(t *testing.T) {
	d := browsertest.NewDriver(browser.DriverExtension)
	w := d.Open(popupURL)
	reg := browser.NewRegistry()
	reg.Register(browser.WindowNotification, browser.NewHandle(browser.DriverExtension, w))

	w.CloseNow()

	_, err := reg.Resolve(browser.WindowNotification)
	require.ErrorIs(t, err, browser.ErrNotFound)
	require.ErrorIs(t, err, browser.ErrWindowClosed)
	assert.False(t, reg.Has(browser.WindowNotification))
}

func TestHandleIDsAreDistinct(t *testing.T) {
	d := browsertest.NewDriver(browser.DriverRunner)
	w := d.Open(dappURL)

	a := browser.NewHandle(browser.DriverRunner, w)
	b := browser.NewHandle(browser.DriverRunner, w)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Contains(t, a.ID(), "win-")
}
