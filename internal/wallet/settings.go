package wallet

import (
	"context"

	"github.com/neboloop/walletpilot/internal/browser"
)

type toggle struct {
	name         string
	on, off      browser.Target
	experimental bool
}

var (
	advancedGasControl     = toggle{"advanced gas control", advancedPage.AdvancedGasControlOn, advancedPage.AdvancedGasControlOff, false}
	enhancedTokenDetection = toggle{"enhanced token detection", advancedPage.EnhancedTokenDetectionOn, advancedPage.EnhancedTokenDetectionOff, false}
	showHexData            = toggle{"show hex data", advancedPage.ShowHexDataOn, advancedPage.ShowHexDataOff, false}
	testnetConversion      = toggle{"testnet conversion", advancedPage.TestnetConversionOn, advancedPage.TestnetConversionOff, false}
	showTestnetNetworks    = toggle{"show testnet networks", advancedPage.ShowTestnetNetworksOn, advancedPage.ShowTestnetNetworksOff, false}
	customNonce            = toggle{"custom nonce", advancedPage.CustomNonceOn, advancedPage.CustomNonceOff, false}
	dismissBackupReminder  = toggle{"dismiss backup reminder", advancedPage.DismissBackupReminderOn, advancedPage.DismissBackupReminderOff, false}
	enhancedGasFeeUI       = toggle{"enhanced gas fee ui", experimentalPage.EnhancedGasFeeUIOn, experimentalPage.EnhancedGasFeeUIOff, true}
	showCustomNetworkList  = toggle{"show custom network list", experimentalPage.ShowCustomNetworkListOn, experimentalPage.ShowCustomNetworkListOff, true}
)

// activate turns a settings toggle on. With skipSetup the caller is already
// on the right settings page and closes it itself.
func (w *Wallet) activate(ctx context.Context, t toggle, skipSetup bool) error {
	return w.run(ctx, "activate "+t.name, func(ctx context.Context) error {
		return w.onExtension(ctx, func(ctx context.Context) error {
			if !skipSetup {
				goTo := w.GoToAdvancedSettings
				if t.experimental {
					goTo = w.GoToExperimentalSettings
				}
				if err := goTo(ctx); err != nil {
					return err
				}
			}
			if !w.s.Probe(ctx, t.on) {
				if err := w.click(ctx, t.off); err != nil {
					return err
				}
			}
			if skipSetup {
				return nil
			}
			return w.closeSettings(ctx)
		})
	})
}

func (w *Wallet) closeSettings(ctx context.Context) error {
	if err := w.clickAndNavigate(ctx, settingsPage.CloseButton); err != nil {
		return err
	}
	return w.ClosePopupAndTooltips(ctx)
}

func (w *Wallet) ActivateAdvancedGasControl(ctx context.Context, skipSetup bool) error {
	return w.activate(ctx, advancedGasControl, skipSetup)
}

func (w *Wallet) ActivateEnhancedTokenDetection(ctx context.Context, skipSetup bool) error {
	return w.activate(ctx, enhancedTokenDetection, skipSetup)
}

func (w *Wallet) ActivateShowHexData(ctx context.Context, skipSetup bool) error {
	return w.activate(ctx, showHexData, skipSetup)
}

func (w *Wallet) ActivateTestnetConversion(ctx context.Context, skipSetup bool) error {
	return w.activate(ctx, testnetConversion, skipSetup)
}

func (w *Wallet) ActivateShowTestnetNetworks(ctx context.Context, skipSetup bool) error {
	return w.activate(ctx, showTestnetNetworks, skipSetup)
}

func (w *Wallet) ActivateCustomNonce(ctx context.Context, skipSetup bool) error {
	return w.activate(ctx, customNonce, skipSetup)
}

func (w *Wallet) ActivateDismissBackupReminder(ctx context.Context, skipSetup bool) error {
	return w.activate(ctx, dismissBackupReminder, skipSetup)
}

func (w *Wallet) ActivateEnhancedGasFeeUI(ctx context.Context, skipSetup bool) error {
	return w.activate(ctx, enhancedGasFeeUI, skipSetup)
}

func (w *Wallet) ActivateShowCustomNetworkList(ctx context.Context, skipSetup bool) error {
	return w.activate(ctx, showCustomNetworkList, skipSetup)
}

// setupSettings turns on the settings tests rely on, in one visit to each
// settings page.
func (w *Wallet) setupSettings(ctx context.Context, enableAdvanced bool) error {
	return w.run(ctx, "setup settings", func(ctx context.Context) error {
		return w.onExtension(ctx, func(ctx context.Context) error {
			if err := w.GoToAdvancedSettings(ctx); err != nil {
				return err
			}
			toggles := []toggle{advancedGasControl, showHexData, showTestnetNetworks, customNonce, dismissBackupReminder}
			if enableAdvanced {
				toggles = append(toggles, enhancedTokenDetection, testnetConversion)
			}
			for _, t := range toggles {
				if err := w.activate(ctx, t, true); err != nil {
					return err
				}
			}
			if err := w.GoToExperimentalSettings(ctx); err != nil {
				return err
			}
			if err := w.activate(ctx, enhancedGasFeeUI, true); err != nil {
				return err
			}
			return w.closeSettings(ctx)
		})
	})
}

// ResetAccount clears the selected account's activity and nonce data.
func (w *Wallet) ResetAccount(ctx context.Context) error {
	return w.run(ctx, "reset account", func(ctx context.Context) error {
		return w.onExtension(ctx, func(ctx context.Context) error {
			if err := w.GoToAdvancedSettings(ctx); err != nil {
				return err
			}
			if err := w.click(ctx, advancedPage.ResetAccountButton); err != nil {
				return err
			}
			if err := w.click(ctx, resetAccountModal.ResetButton); err != nil {
				return err
			}
			return w.closeSettings(ctx)
		})
	})
}

// DisconnectWalletFromDapp disconnects the current dapp if it is connected.
func (w *Wallet) DisconnectWalletFromDapp(ctx context.Context) error {
	return w.run(ctx, "disconnect wallet from dapp", func(ctx context.Context) error {
		return w.onExtension(ctx, func(ctx context.Context) error {
			if err := w.openConnectedSites(ctx); err != nil {
				return err
			}
			if w.s.Probe(ctx, mainPage.DisconnectLabel) {
				w.logger.Info("wallet connected to dapp, disconnecting")
				if err := w.disconnectOne(ctx); err != nil {
					return err
				}
			} else {
				w.logger.Info("wallet not connected to dapp, skipping")
			}
			return w.CloseModal(ctx)
		})
	})
}

// DisconnectWalletFromAllDapps disconnects every connected site.
func (w *Wallet) DisconnectWalletFromAllDapps(ctx context.Context) error {
	return w.run(ctx, "disconnect wallet from all dapps", func(ctx context.Context) error {
		return w.onExtension(ctx, func(ctx context.Context) error {
			if err := w.openConnectedSites(ctx); err != nil {
				return err
			}
			n, err := w.s.Count(ctx, mainPage.DisconnectLabel)
			if err != nil {
				return err
			}
			if n == 0 {
				w.logger.Info("wallet not connected to any dapp, skipping")
			}
			for i := 0; i < n; i++ {
				if err := w.disconnectOne(ctx); err != nil {
					return err
				}
			}
			return w.CloseModal(ctx)
		})
	})
}

func (w *Wallet) openConnectedSites(ctx context.Context) error {
	if err := w.click(ctx, mainPage.OptionsMenuButton); err != nil {
		return err
	}
	return w.click(ctx, mainPage.ConnectedSitesButton)
}

func (w *Wallet) disconnectOne(ctx context.Context) error {
	if err := w.click(ctx, mainPage.DisconnectLabel); err != nil {
		return err
	}
	return w.click(ctx, mainPage.DisconnectButton)
}
