package wallet

import (
	"context"
	"strconv"

	"github.com/neboloop/walletpilot/internal/browser"
)

// answer waits for a new popup and clicks t, which closes it.
func (w *Wallet) answer(ctx context.Context, op string, t browser.Target) error {
	return w.run(ctx, op, func(ctx context.Context) error {
		return w.onNotification(ctx, func(ctx context.Context) error {
			return w.clickAndClose(ctx, t)
		})
	})
}

// ConfirmSignatureRequest signs a personal message request.
func (w *Wallet) ConfirmSignatureRequest(ctx context.Context) error {
	return w.confirmSignature(ctx, "confirm signature request", signaturePage.ConfirmButton)
}

// ConfirmDataSignatureRequest signs a typed data request.
func (w *Wallet) ConfirmDataSignatureRequest(ctx context.Context) error {
	return w.confirmSignature(ctx, "confirm data signature request", signaturePage.ConfirmDataButton)
}

// confirmSignature scrolls long messages to the end first; the sign button
// stays disabled until then.
func (w *Wallet) confirmSignature(ctx context.Context, op string, confirm browser.Target) error {
	return w.run(ctx, op, func(ctx context.Context) error {
		return w.onNotification(ctx, func(ctx context.Context) error {
			if err := w.clickIfVisible(ctx, signaturePage.ScrollDownButton); err != nil {
				return err
			}
			return w.clickAndClose(ctx, confirm)
		})
	})
}

func (w *Wallet) RejectSignatureRequest(ctx context.Context) error {
	return w.answer(ctx, "reject signature request", signaturePage.RejectButton)
}

func (w *Wallet) RejectDataSignatureRequest(ctx context.Context) error {
	return w.answer(ctx, "reject data signature request", signaturePage.RejectDataButton)
}

// ConfirmPermissionToSpend approves a token allowance.
func (w *Wallet) ConfirmPermissionToSpend(ctx context.Context) error {
	return w.answer(ctx, "confirm permission to spend", notificationPage.AllowToSpendButton)
}

func (w *Wallet) RejectPermissionToSpend(ctx context.Context) error {
	return w.answer(ctx, "reject permission to spend", notificationPage.RejectToSpendButton)
}

// AcceptAccess connects the wallet to the requesting dapp, optionally with
// every account.
func (w *Wallet) AcceptAccess(ctx context.Context, allAccounts bool) error {
	return w.run(ctx, "accept access", func(ctx context.Context) error {
		return w.onNotification(ctx, func(ctx context.Context) error {
			if allAccounts {
				if err := w.click(ctx, notificationPage.SelectAllCheckbox); err != nil {
					return err
				}
			}
			if err := w.clickAndNavigate(ctx, notificationPage.NextButton); err != nil {
				return err
			}
			return w.clickAndClose(ctx, notificationPage.ConnectButton)
		})
	})
}

// ConfirmTransaction applies gas (nil keeps the wallet's suggestion),
// collects what the popup shows about the transaction and confirms it.
func (w *Wallet) ConfirmTransaction(ctx context.Context, gas GasConfig) (TxData, error) {
	var tx TxData
	err := w.run(ctx, "confirm transaction", func(ctx context.Context) error {
		return w.onNotification(ctx, func(ctx context.Context) error {
			if gas != nil {
				if err := w.editGas(ctx, gas); err != nil {
					return err
				}
			}

			nonce, err := w.s.Attribute(ctx, confirmPage.CustomNonceInput, "placeholder")
			if err != nil {
				return err
			}
			tx.CustomNonce = nonce

			if w.s.Probe(ctx, confirmPage.DataButton) {
				if err := w.readTxData(ctx, &tx); err != nil {
					return err
				}
			}

			if err := w.clickAndClose(ctx, confirmPage.ConfirmButton); err != nil {
				return err
			}
			tx.Confirmed = true
			return nil
		})
	})
	return tx, err
}

func (w *Wallet) readTxData(ctx context.Context, tx *TxData) error {
	if err := w.click(ctx, confirmPage.DataButton); err != nil {
		return err
	}
	fields := []struct {
		t   browser.Target
		out *string
	}{
		{confirmPage.OriginValue, &tx.Origin},
		{confirmPage.BytesValue, &tx.Bytes},
		{confirmPage.HexDataValue, &tx.HexData},
	}
	for _, f := range fields {
		v, err := w.s.Text(ctx, f.t)
		if err != nil {
			return err
		}
		*f.out = v
	}
	return w.click(ctx, confirmPage.DetailsButton)
}

// editGas detects the transaction type from the fee editor on screen.
// Legacy transactions only take custom values.
func (w *Wallet) editGas(ctx context.Context, gas GasConfig) error {
	if w.s.Probe(ctx, confirmPage.EditGasFeeLegacyButton) {
		custom, ok := gas.(CustomGas)
		if !ok {
			w.logger.Info("legacy transaction ignores fee presets, keeping defaults", "gas", gas)
			return nil
		}
		return w.editLegacyGas(ctx, custom)
	}
	return w.editEIP1559Gas(ctx, gas)
}

func (w *Wallet) editLegacyGas(ctx context.Context, gas CustomGas) error {
	w.logger.Debug("editing legacy transaction gas")
	if err := w.click(ctx, confirmPage.EditGasFeeLegacyButton); err != nil {
		return err
	}
	if err := w.clickIfVisible(ctx, confirmPage.OverrideAckButton); err != nil {
		return err
	}
	if gas.GasLimit > 0 {
		if err := w.s.SetValue(ctx, confirmPage.GasLimitLegacyInput, strconv.FormatUint(gas.GasLimit, 10)); err != nil {
			return err
		}
	}
	if !gas.GasPrice.IsZero() {
		if err := w.s.SetValue(ctx, confirmPage.GasPriceLegacyInput, gas.GasPrice.String()); err != nil {
			return err
		}
	}
	return w.click(ctx, confirmPage.SaveCustomGasButton)
}

func (w *Wallet) editEIP1559Gas(ctx context.Context, gas GasConfig) error {
	w.logger.Debug("editing eip-1559 transaction gas")
	if err := w.click(ctx, confirmPage.EditGasFeeButton); err != nil {
		return err
	}

	switch g := gas.(type) {
	case GasPreset:
		option := map[GasPreset]browser.Target{
			GasLow:        confirmPage.GasOptionLow,
			GasMarket:     confirmPage.GasOptionMarket,
			GasAggressive: confirmPage.GasOptionAggressive,
			GasSite:       confirmPage.GasOptionSite,
		}[g]
		if option.Selector == "" {
			return nil
		}
		return w.click(ctx, option)

	case CustomGas:
		if err := w.click(ctx, confirmPage.GasOptionCustom); err != nil {
			return err
		}
		if g.GasLimit > 0 {
			if err := w.click(ctx, confirmPage.EditGasLimitButton); err != nil {
				return err
			}
			if err := w.s.SetValue(ctx, confirmPage.GasLimitInput, strconv.FormatUint(g.GasLimit, 10)); err != nil {
				return err
			}
		}
		if !g.BaseFee.IsZero() {
			if err := w.s.SetValue(ctx, confirmPage.BaseFeeInput, g.BaseFee.String()); err != nil {
				return err
			}
		}
		if !g.PriorityFee.IsZero() {
			if err := w.s.SetValue(ctx, confirmPage.PriorityFeeInput, g.PriorityFee.String()); err != nil {
				return err
			}
		}
		return w.click(ctx, confirmPage.SaveCustomGasButton)
	}
	return nil
}

// RejectTransaction cancels a pending transaction.
func (w *Wallet) RejectTransaction(ctx context.Context) error {
	return w.answer(ctx, "reject transaction", confirmPage.RejectButton)
}

func (w *Wallet) ConfirmEncryptionPublicKeyRequest(ctx context.Context) error {
	return w.answer(ctx, "confirm encryption public key request", encryptionPage.ConfirmButton)
}

func (w *Wallet) RejectEncryptionPublicKeyRequest(ctx context.Context) error {
	return w.answer(ctx, "reject encryption public key request", encryptionPage.RejectButton)
}

func (w *Wallet) ConfirmDecryptionRequest(ctx context.Context) error {
	return w.answer(ctx, "confirm decryption request", decryptPage.ConfirmButton)
}

func (w *Wallet) RejectDecryptionRequest(ctx context.Context) error {
	return w.answer(ctx, "reject decryption request", decryptPage.RejectButton)
}

// AllowToAddNetwork approves a dapp's add-network request. When the dapp
// also asks to switch, the same popup moves on to the switch prompt, so by
// default nothing is awaited; pass browser.EventClose when it will close.
func (w *Wallet) AllowToAddNetwork(ctx context.Context, ev browser.Event) error {
	return w.run(ctx, "allow to add network", func(ctx context.Context) error {
		return w.onNotification(ctx, func(ctx context.Context) error {
			return w.s.ClickAndAwait(ctx, confirmationPage.ApproveButton, ev)
		})
	})
}

func (w *Wallet) RejectToAddNetwork(ctx context.Context) error {
	return w.answer(ctx, "reject to add network", confirmationPage.CancelButton)
}

// AllowToSwitchNetwork approves a switch prompt, reusing a popup left open
// by AllowToAddNetwork.
func (w *Wallet) AllowToSwitchNetwork(ctx context.Context) error {
	return w.run(ctx, "allow to switch network", func(ctx context.Context) error {
		return w.onCurrentNotification(ctx, func(ctx context.Context) error {
			return w.clickAndClose(ctx, confirmationPage.ApproveButton)
		})
	})
}

func (w *Wallet) RejectToSwitchNetwork(ctx context.Context) error {
	return w.run(ctx, "reject to switch network", func(ctx context.Context) error {
		return w.onCurrentNotification(ctx, func(ctx context.Context) error {
			return w.clickAndClose(ctx, confirmationPage.CancelButton)
		})
	})
}

// AllowToAddAndSwitchNetwork approves both prompts of
// wallet_addEthereumChain followed by a switch.
func (w *Wallet) AllowToAddAndSwitchNetwork(ctx context.Context) error {
	return w.run(ctx, "allow to add and switch network", func(ctx context.Context) error {
		if err := w.AllowToAddNetwork(ctx, browser.EventNone); err != nil {
			return err
		}
		return w.AllowToSwitchNetwork(ctx)
	})
}
