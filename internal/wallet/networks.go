package wallet

import (
	"context"
	"fmt"

	"github.com/neboloop/walletpilot/internal/browser"
)

// ChangeNetwork selects a network in the network switcher and waits until
// the wallet shows it.
func (w *Wallet) ChangeNetwork(ctx context.Context, network Network) error {
	return w.run(ctx, "change network", func(ctx context.Context) error {
		name := network.DisplayName()
		err := w.onExtension(ctx, func(ctx context.Context) error {
			if err := w.click(ctx, mainPage.NetworkButton); err != nil {
				return err
			}
			var item browser.Target
			switch n := network.(type) {
			case NamedNetwork:
				item = n.switcherItem()
			case CustomNetwork:
				item = mainPage.NetworkMenuItem.WithText(name)
			default:
				return fmt.Errorf("unsupported network %T", network)
			}
			if err := w.click(ctx, item); err != nil {
				return err
			}
			if err := w.s.WaitForText(ctx, mainPage.NetworkName, name); err != nil {
				return err
			}
			return w.ClosePopupAndTooltips(ctx)
		})
		if err != nil {
			return err
		}
		w.update(func(s *Setup) { s.Network = name })
		return nil
	})
}

// AddNetwork fills in the add-network form, saves it and waits until the
// wallet switched to the new network.
func (w *Wallet) AddNetwork(ctx context.Context, network CustomNetwork) error {
	if err := network.Validate(); err != nil {
		return fmt.Errorf("add network: %w", err)
	}
	chainID, err := network.ChainIDInt()
	if err != nil {
		return fmt.Errorf("add network: %w", err)
	}

	return w.run(ctx, "add network", func(ctx context.Context) error {
		name := network.DisplayName()
		err := w.onExtension(ctx, func(ctx context.Context) error {
			if err := w.GoToAddNetwork(ctx); err != nil {
				return err
			}
			fields := []struct {
				t     browser.Target
				value string
			}{
				{addNetworkPage.NetworkNameInput, network.Name},
				{addNetworkPage.RPCURLInput, network.RPCURL},
				{addNetworkPage.ChainIDInput, chainID.String()},
				{addNetworkPage.SymbolInput, network.Symbol},
				{addNetworkPage.BlockExplorerInput, network.BlockExplorer},
			}
			for _, f := range fields {
				if f.value == "" {
					continue
				}
				if err := w.s.TypeAndAwait(ctx, f.t, f.value); err != nil {
					return err
				}
			}
			if err := w.clickAndNavigate(ctx, addNetworkPage.SaveButton); err != nil {
				return err
			}
			if err := w.ClosePopupAndTooltips(ctx); err != nil {
				return err
			}
			// Switching to a freshly added network is slower than a normal wait.
			return w.s.WaitForText(ctx, mainPage.NetworkName, name,
				browser.WithTimeout(w.s.Timing().EventTimeout))
		})
		if err != nil {
			return err
		}
		w.update(func(s *Setup) { s.Network = name })
		return nil
	})
}
