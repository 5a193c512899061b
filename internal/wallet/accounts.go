package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ImportAccount imports a private key as a new account.
func (w *Wallet) ImportAccount(ctx context.Context, privateKey string) error {
	addr, err := AddressFromPrivateKey(privateKey)
	if err != nil {
		return fmt.Errorf("import account: %w", err)
	}
	return w.run(ctx, "import account", func(ctx context.Context) error {
		w.logger.Debug("importing account", "address", addr.Hex())
		err := w.onExtension(ctx, func(ctx context.Context) error {
			if err := w.GoToImportAccount(ctx); err != nil {
				return err
			}
			if err := w.s.TypeAndAwait(ctx, mainPage.ImportAccountInput, privateKey); err != nil {
				return err
			}
			if err := w.clickAndNavigate(ctx, mainPage.ImportAccountButton); err != nil {
				return err
			}
			return w.ClosePopupAndTooltips(ctx)
		})
		return err
	})
}

// CreateAccount adds an account, optionally named.
func (w *Wallet) CreateAccount(ctx context.Context, name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	return w.run(ctx, "create account", func(ctx context.Context) error {
		return w.onExtension(ctx, func(ctx context.Context) error {
			if err := w.GoToNewAccount(ctx); err != nil {
				return err
			}
			if name != "" {
				if err := w.s.TypeAndAwait(ctx, mainPage.CreateAccountInput, name); err != nil {
					return err
				}
			}
			if err := w.click(ctx, mainPage.CreateAccountButton); err != nil {
				return err
			}
			return w.ClosePopupAndTooltips(ctx)
		})
	})
}

// SwitchAccount selects an account from the account menu.
func (w *Wallet) SwitchAccount(ctx context.Context, account Account) error {
	return w.run(ctx, "switch account", func(ctx context.Context) error {
		return w.onExtension(ctx, func(ctx context.Context) error {
			if err := w.ClosePopupAndTooltips(ctx); err != nil {
				return err
			}
			if err := w.click(ctx, mainPage.AccountMenuButton); err != nil {
				return err
			}
			switch a := account.(type) {
			case AccountByNumber:
				if err := w.click(ctx, accountButton(int(a))); err != nil {
					return err
				}
			case AccountByName:
				name := strings.ToLower(string(a))
				if err := w.click(ctx, mainPage.AccountName.WithText(name)); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported account selector %T", account)
			}
			return w.ClosePopupAndTooltips(ctx)
		})
	})
}

// GetWalletAddress reads the selected account's address from the account
// details modal and records it in the setup result.
func (w *Wallet) GetWalletAddress(ctx context.Context) (common.Address, error) {
	var addr common.Address
	err := w.run(ctx, "get wallet address", func(ctx context.Context) error {
		return w.onExtension(ctx, func(ctx context.Context) error {
			if err := w.click(ctx, mainPage.OptionsMenuButton); err != nil {
				return err
			}
			if err := w.click(ctx, mainPage.AccountDetailsButton); err != nil {
				return err
			}
			raw, err := w.s.Value(ctx, mainPage.WalletAddressInput)
			if err != nil {
				return err
			}
			a, err := ParseAddress(raw)
			if err != nil {
				return err
			}
			addr = a
			w.update(func(s *Setup) { s.Address = a })
			return w.click(ctx, mainPage.AccountModalClose)
		})
	})
	return addr, err
}
