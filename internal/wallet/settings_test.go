package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/walletpilot/internal/browser"
	"github.com/neboloop/walletpilot/internal/browser/browsertest"
)

func (f *fixture) closableSettings() {
	f.home.Set(settingsPage.CloseButton.Selector, visible)
	f.home.OnClick(settingsPage.CloseButton.Selector, func(w *browsertest.Window) {
		w.Navigate(extensionURL)
	})
}

func TestActivateTurnsToggleOn(t *testing.T) {
	f := newFixture(t)
	f.detect(t)
	f.closableSettings()
	f.home.Set(advancedPage.ShowHexDataOff.Selector, visible)

	require.NoError(t, f.wallet.ActivateShowHexData(context.Background(), false))

	assert.Equal(t, []string{
		advancedPage.ShowHexDataOff.Selector,
		settingsPage.CloseButton.Selector,
	}, f.home.Clicks())
	assert.Equal(t, browser.WindowRunner, f.active())
}

func TestActivateLeavesEnabledToggle(t *testing.T) {
	f := newFixture(t)
	f.detect(t)
	f.closableSettings()
	f.home.Set(advancedPage.CustomNonceOn.Selector, visible)
	f.home.Set(advancedPage.CustomNonceOff.Selector, visible)

	require.NoError(t, f.wallet.ActivateCustomNonce(context.Background(), false))
	assert.False(t, f.home.Clicked(advancedPage.CustomNonceOff.Selector))
}

func TestActivateExperimental(t *testing.T) {
	f := newFixture(t)
	f.detect(t)
	f.home.Set(experimentalPage.ShowCustomNetworkListOff.Selector, visible)

	require.NoError(t, f.wallet.ActivateShowCustomNetworkList(context.Background(), true))

	u, err := f.home.URL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, extensionURL, u, "skipSetup stays on the current page")
	assert.Equal(t, []string{experimentalPage.ShowCustomNetworkListOff.Selector}, f.home.Clicks())
}

func TestSetupSettings(t *testing.T) {
	f := newFixture(t)
	f.detect(t)
	f.closableSettings()
	offs := []browser.Target{
		advancedPage.AdvancedGasControlOff,
		advancedPage.ShowHexDataOff,
		advancedPage.ShowTestnetNetworksOff,
		advancedPage.CustomNonceOff,
		advancedPage.DismissBackupReminderOff,
		advancedPage.EnhancedTokenDetectionOff,
		advancedPage.TestnetConversionOff,
		experimentalPage.EnhancedGasFeeUIOff,
	}
	for _, off := range offs {
		f.home.Set(off.Selector, visible)
	}

	require.NoError(t, f.wallet.setupSettings(context.Background(), false))

	assert.True(t, f.home.Clicked(advancedPage.CustomNonceOff.Selector))
	assert.True(t, f.home.Clicked(experimentalPage.EnhancedGasFeeUIOff.Selector))
	assert.False(t, f.home.Clicked(advancedPage.EnhancedTokenDetectionOff.Selector))
	clicks := f.home.Clicks()
	assert.Equal(t, settingsPage.CloseButton.Selector, clicks[len(clicks)-1])
}

func TestResetAccount(t *testing.T) {
	f := newFixture(t)
	f.detect(t)
	f.closableSettings()
	f.home.Set(advancedPage.ResetAccountButton.Selector, visible)
	f.home.Set(resetAccountModal.ResetButton.Selector, visible)

	require.NoError(t, f.wallet.ResetAccount(context.Background()))
	assert.Equal(t, []string{
		advancedPage.ResetAccountButton.Selector,
		resetAccountModal.ResetButton.Selector,
		settingsPage.CloseButton.Selector,
	}, f.home.Clicks())
}

func (f *fixture) connectedSites(n int) {
	f.home.Set(mainPage.OptionsMenuButton.Selector, visible)
	f.home.Set(mainPage.ConnectedSitesButton.Selector, visible)
	f.home.Set(mainPage.ConnectedSitesModal.Selector, visible)
	f.home.Set(mainPage.ConnectedSitesClose.Selector, visible)
	f.home.Set(mainPage.DisconnectButton.Selector, visible)
	for i := 0; i < n; i++ {
		f.home.Add(mainPage.DisconnectLabel.Selector, visible)
	}
}

func countClicks(w *browsertest.Window, selector string) int {
	n := 0
	for _, c := range w.Clicks() {
		if c == selector {
			n++
		}
	}
	return n
}

func TestDisconnectWalletFromAllDapps(t *testing.T) {
	f := newFixture(t)
	f.connectedSites(3)

	require.NoError(t, f.wallet.DisconnectWalletFromAllDapps(context.Background()))

	assert.Equal(t, 3, countClicks(f.home, mainPage.DisconnectButton.Selector))
	assert.True(t, f.home.Clicked(mainPage.ConnectedSitesClose.Selector))
	assert.Equal(t, browser.WindowRunner, f.active())
}

func TestDisconnectWalletFromDappNotConnected(t *testing.T) {
	f := newFixture(t)
	f.connectedSites(0)

	require.NoError(t, f.wallet.DisconnectWalletFromDapp(context.Background()))

	assert.Zero(t, countClicks(f.home, mainPage.DisconnectButton.Selector))
	assert.True(t, f.home.Clicked(mainPage.ConnectedSitesClose.Selector))
}
