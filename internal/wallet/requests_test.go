package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/walletpilot/internal/browser"
	"github.com/neboloop/walletpilot/internal/browser/browsertest"
)

// popup opens a notification window shortly after the call, the way a dapp
// request shows up while the runner is active.
func (f *fixture) popup(setup func(*browsertest.Window)) <-chan *browsertest.Window {
	return f.extension.OpenAfter(20*time.Millisecond, popupURL, setup)
}

func closesOn(w *browsertest.Window, t browser.Target) {
	w.Set(t.Selector, visible)
	w.OnClick(t.Selector, func(w *browsertest.Window) { w.CloseNow() })
}

func TestConfirmSignatureRequest(t *testing.T) {
	f := newFixture(t)
	opened := f.popup(func(w *browsertest.Window) {
		closesOn(w, signaturePage.ConfirmButton)
	})

	require.NoError(t, f.wallet.ConfirmSignatureRequest(context.Background()))

	w := <-opened
	assert.True(t, w.Closed())
	assert.Equal(t, []string{signaturePage.ConfirmButton.Selector}, w.Clicks())
	assert.Equal(t, browser.WindowRunner, f.active())
}

func TestConfirmSignatureRequestScrollsFirst(t *testing.T) {
	f := newFixture(t)
	opened := f.popup(func(w *browsertest.Window) {
		w.Set(signaturePage.ScrollDownButton.Selector, visible)
		closesOn(w, signaturePage.ConfirmDataButton)
	})

	require.NoError(t, f.wallet.ConfirmDataSignatureRequest(context.Background()))

	w := <-opened
	assert.Equal(t, []string{
		signaturePage.ScrollDownButton.Selector,
		signaturePage.ConfirmDataButton.Selector,
	}, w.Clicks())
}

func TestConfirmSignatureRequestWithoutPopup(t *testing.T) {
	f := newFixture(t)

	err := f.wallet.ConfirmSignatureRequest(context.Background())
	require.ErrorIs(t, err, browser.ErrTimedOut)
	require.ErrorIs(t, err, browser.ErrUnexpectedState)
	assert.Contains(t, err.Error(), "confirm signature request")
	assert.Equal(t, browser.WindowRunner, f.active())
}

func TestRejectRequests(t *testing.T) {
	tests := []struct {
		name   string
		button browser.Target
		call   func(*Wallet, context.Context) error
	}{
		{"signature", signaturePage.RejectButton, (*Wallet).RejectSignatureRequest},
		{"data signature", signaturePage.RejectDataButton, (*Wallet).RejectDataSignatureRequest},
		{"permission to spend", notificationPage.RejectToSpendButton, (*Wallet).RejectPermissionToSpend},
		{"transaction", confirmPage.RejectButton, (*Wallet).RejectTransaction},
		{"encryption public key", encryptionPage.RejectButton, (*Wallet).RejectEncryptionPublicKeyRequest},
		{"decryption", decryptPage.RejectButton, (*Wallet).RejectDecryptionRequest},
		{"add network", confirmationPage.CancelButton, (*Wallet).RejectToAddNetwork},
		{"switch network", confirmationPage.CancelButton, (*Wallet).RejectToSwitchNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			opened := f.popup(func(w *browsertest.Window) { closesOn(w, tt.button) })

			require.NoError(t, tt.call(f.wallet, context.Background()))

			w := <-opened
			assert.True(t, w.Closed())
			assert.Equal(t, browser.WindowRunner, f.active())
		})
	}
}

func TestConfirmRequests(t *testing.T) {
	tests := []struct {
		name   string
		button browser.Target
		call   func(*Wallet, context.Context) error
	}{
		{"permission to spend", notificationPage.AllowToSpendButton, (*Wallet).ConfirmPermissionToSpend},
		{"encryption public key", encryptionPage.ConfirmButton, (*Wallet).ConfirmEncryptionPublicKeyRequest},
		{"decryption", decryptPage.ConfirmButton, (*Wallet).ConfirmDecryptionRequest},
		{"switch network", confirmationPage.ApproveButton, (*Wallet).AllowToSwitchNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			opened := f.popup(func(w *browsertest.Window) { closesOn(w, tt.button) })

			require.NoError(t, tt.call(f.wallet, context.Background()))

			w := <-opened
			assert.True(t, w.Clicked(tt.button.Selector))
			assert.True(t, w.Closed())
		})
	}
}

func TestAcceptAccess(t *testing.T) {
	f := newFixture(t)
	opened := f.popup(func(w *browsertest.Window) {
		w.Set(notificationPage.SelectAllCheckbox.Selector, visible)
		w.Set(notificationPage.NextButton.Selector, visible)
		w.OnClick(notificationPage.NextButton.Selector, func(w *browsertest.Window) {
			w.Navigate(popupURL + "#connect")
		})
		closesOn(w, notificationPage.ConnectButton)
	})

	require.NoError(t, f.wallet.AcceptAccess(context.Background(), true))

	w := <-opened
	assert.Equal(t, []string{
		notificationPage.SelectAllCheckbox.Selector,
		notificationPage.NextButton.Selector,
		notificationPage.ConnectButton.Selector,
	}, w.Clicks())
	assert.Equal(t, browser.WindowRunner, f.active())
}

func TestAllowToAddAndSwitchNetwork(t *testing.T) {
	f := newFixture(t)
	approvals := 0
	opened := f.popup(func(w *browsertest.Window) {
		w.Set(confirmationPage.ApproveButton.Selector, visible)
		w.OnClick(confirmationPage.ApproveButton.Selector, func(w *browsertest.Window) {
			approvals++
			if approvals == 2 {
				w.CloseNow()
			}
		})
	})

	require.NoError(t, f.wallet.AllowToAddAndSwitchNetwork(context.Background()))

	w := <-opened
	assert.Equal(t, 2, approvals)
	assert.True(t, w.Closed())
	assert.Equal(t, browser.WindowRunner, f.active())
}

// transactionPopup scripts a confirmation screen with a data tab.
func transactionPopup(legacy bool) func(*browsertest.Window) {
	return func(w *browsertest.Window) {
		if legacy {
			w.Set(confirmPage.EditGasFeeLegacyButton.Selector, visible)
			w.Set(confirmPage.GasLimitLegacyInput.Selector, visible)
			w.Set(confirmPage.GasPriceLegacyInput.Selector, visible)
		} else {
			w.Set(confirmPage.EditGasFeeButton.Selector, visible)
			w.Set(confirmPage.GasOptionAggressive.Selector, visible)
		}
		w.Set(confirmPage.SaveCustomGasButton.Selector, visible)
		w.Set(confirmPage.CustomNonceInput.Selector, browsertest.Element{
			Visible: true,
			Attrs:   map[string]string{"placeholder": "7"},
		})
		w.Add(confirmPage.DataButton.Selector, browsertest.Element{Visible: true, Text: "Data"})
		w.Add(confirmPage.DetailsButton.Selector, browsertest.Element{Visible: true, Text: "Details"})
		w.Show(confirmPage.OriginValue.Selector, "http://localhost:3000")
		w.Show(confirmPage.BytesValue.Selector, "68")
		w.Show(confirmPage.HexDataValue.Selector, "0xa9059cbb")
		closesOn(w, confirmPage.ConfirmButton)
	}
}

func TestConfirmTransactionLegacyCustomGas(t *testing.T) {
	f := newFixture(t)
	opened := f.popup(transactionPopup(true))

	tx, err := f.wallet.ConfirmTransaction(context.Background(), CustomGas{
		GasLimit: 21000,
		GasPrice: decimal.RequireFromString("12.5"),
	})
	require.NoError(t, err)

	assert.Equal(t, TxData{
		CustomNonce: "7",
		Origin:      "http://localhost:3000",
		Bytes:       "68",
		HexData:     "0xa9059cbb",
		Confirmed:   true,
	}, tx)

	w := <-opened
	assert.Equal(t, "21000", w.Typed(confirmPage.GasLimitLegacyInput.Selector))
	assert.Equal(t, "12.5", w.Typed(confirmPage.GasPriceLegacyInput.Selector))
	assert.True(t, w.Clicked(confirmPage.SaveCustomGasButton.Selector))
	assert.Equal(t, browser.WindowRunner, f.active())
}

func TestConfirmTransactionLegacyIgnoresPreset(t *testing.T) {
	f := newFixture(t)
	opened := f.popup(transactionPopup(true))

	tx, err := f.wallet.ConfirmTransaction(context.Background(), GasAggressive)
	require.NoError(t, err)
	assert.True(t, tx.Confirmed)

	w := <-opened
	assert.False(t, w.Clicked(confirmPage.EditGasFeeLegacyButton.Selector))
}

func TestConfirmTransactionPreset(t *testing.T) {
	f := newFixture(t)
	opened := f.popup(transactionPopup(false))

	tx, err := f.wallet.ConfirmTransaction(context.Background(), GasAggressive)
	require.NoError(t, err)
	assert.Equal(t, "7", tx.CustomNonce)

	w := <-opened
	assert.True(t, w.Clicked(confirmPage.EditGasFeeButton.Selector))
	assert.True(t, w.Clicked(confirmPage.GasOptionAggressive.Selector))
	assert.False(t, w.Clicked(confirmPage.SaveCustomGasButton.Selector))
}
