package wallet

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/neboloop/walletpilot/internal/browser"
)

var secretPhraseLengths = []int{12, 15, 18, 21, 24}

// Unlock enters the password on the lock screen.
func (w *Wallet) Unlock(ctx context.Context, password string) error {
	return w.run(ctx, "unlock", func(ctx context.Context) error {
		if err := w.FixBlankPage(ctx); err != nil {
			return err
		}
		err := w.onExtension(ctx, func(ctx context.Context) error {
			if err := w.s.TypeAndAwait(ctx, unlockPage.PasswordInput, password); err != nil {
				return err
			}
			return w.clickAndNavigate(ctx, unlockPage.UnlockButton)
		})
		if err != nil {
			return err
		}
		return w.ClosePopupAndTooltips(ctx)
	})
}

// OptOutAnalytics declines the analytics prompt of the first-time flow.
func (w *Wallet) OptOutAnalytics(ctx context.Context) error {
	return w.run(ctx, "opt out analytics", func(ctx context.Context) error {
		return w.onExtension(ctx, func(ctx context.Context) error {
			return w.clickAndNavigate(ctx, metametricsPage.OptOutButton)
		})
	})
}

// ImportWallet restores a wallet from its secret recovery phrase.
func (w *Wallet) ImportWallet(ctx context.Context, secretWords, password string) error {
	words := strings.Fields(secretWords)
	if !slices.Contains(secretPhraseLengths, len(words)) {
		return fmt.Errorf("import wallet: secret phrase has %d words, want one of %v", len(words), secretPhraseLengths)
	}

	return w.run(ctx, "import wallet", func(ctx context.Context) error {
		if err := w.OptOutAnalytics(ctx); err != nil {
			return err
		}
		err := w.onExtension(ctx, func(ctx context.Context) error {
			if err := w.clickAndNavigate(ctx, firstTimeFlowPage.ImportWalletButton); err != nil {
				return err
			}
			if len(words) != secretPhraseLengths[0] {
				if err := w.click(ctx, importPage.WordCountDropdown); err != nil {
					return err
				}
				if err := w.click(ctx, wordCountOption(len(words))); err != nil {
					return err
				}
			}
			for i, word := range words {
				if err := w.s.TypeAndAwait(ctx, secretWordInput(i), word); err != nil {
					return err
				}
			}
			if err := w.s.TypeAndAwait(ctx, importPage.PasswordInput, password); err != nil {
				return err
			}
			if err := w.s.TypeAndAwait(ctx, importPage.ConfirmPasswordInput, password); err != nil {
				return err
			}
			if err := w.click(ctx, importPage.TermsCheckbox); err != nil {
				return err
			}
			if err := w.clickAndNavigate(ctx, importPage.ImportButton); err != nil {
				return err
			}
			return w.clickAndNavigate(ctx, endOfFlowPage.AllDoneButton)
		})
		if err != nil {
			return err
		}
		return w.ClosePopupAndTooltips(ctx)
	})
}

// CreateWallet creates a new wallet and skips the seed phrase backup.
func (w *Wallet) CreateWallet(ctx context.Context, password string) error {
	return w.run(ctx, "create wallet", func(ctx context.Context) error {
		if err := w.OptOutAnalytics(ctx); err != nil {
			return err
		}
		err := w.onExtension(ctx, func(ctx context.Context) error {
			if err := w.clickAndNavigate(ctx, firstTimeFlowPage.CreateWalletButton); err != nil {
				return err
			}
			if err := w.s.TypeAndAwait(ctx, createPage.NewPasswordInput, password); err != nil {
				return err
			}
			if err := w.s.TypeAndAwait(ctx, createPage.ConfirmPasswordInput, password); err != nil {
				return err
			}
			if err := w.click(ctx, createPage.TermsCheckbox); err != nil {
				return err
			}
			if err := w.clickAndNavigate(ctx, createPage.CreateButton); err != nil {
				return err
			}
			if err := w.clickAndNavigate(ctx, secureWalletPage.NextButton); err != nil {
				return err
			}
			return w.clickAndNavigate(ctx, revealSeedPage.RemindLaterButton)
		})
		if err != nil {
			return err
		}
		return w.ClosePopupAndTooltips(ctx)
	})
}

// SetupOptions configures InitialSetup.
type SetupOptions struct {
	// SecretWordsOrPrivateKey imports a wallet when it contains spaces,
	// otherwise creates a wallet and imports the key as an account.
	SecretWordsOrPrivateKey string
	Password                string
	Network                 Network
	EnableAdvancedSettings  bool
	// Reset refuses to reuse an already unlocked wallet.
	Reset bool
}

// InitialSetup brings the extension from whatever state it is in (fresh,
// locked or unlocked) to an unlocked wallet on the requested network, and
// records the extension URLs and wallet address. The runner window is
// active afterwards.
func (w *Wallet) InitialSetup(ctx context.Context, opts SetupOptions) (Setup, error) {
	err := w.run(ctx, "initial setup", func(ctx context.Context) error {
		if !w.s.Registry().Has(browser.WindowExtension) {
			if _, err := w.s.AssignWindows(ctx); err != nil {
				return err
			}
		}
		if _, err := w.DetectExtension(ctx); err != nil {
			return err
		}
		return w.onExtension(ctx, func(ctx context.Context) error {
			return w.initialSetup(ctx, opts)
		})
	})
	if err != nil {
		return Setup{}, err
	}
	if err := w.s.SwitchTo(ctx, browser.WindowRunner); err != nil {
		return Setup{}, err
	}
	return w.Setup(), nil
}

func (w *Wallet) initialSetup(ctx context.Context, opts SetupOptions) error {
	if err := w.FixBlankPage(ctx); err != nil {
		return err
	}

	welcome, err := w.s.Appears(ctx, welcomePage.ConfirmButton)
	if err != nil {
		return err
	}
	switch {
	case welcome:
		w.logger.Info("fresh extension, onboarding")
		return w.onboard(ctx, opts)

	case w.s.Probe(ctx, unlockPage.PasswordInput):
		w.logger.Info("wallet locked, unlocking")
		if err := w.Unlock(ctx, opts.Password); err != nil {
			return err
		}
		_, err := w.GetWalletAddress(ctx)
		return err

	case w.s.Probe(ctx, mainPage.WalletOverview) && !opts.Reset:
		w.logger.Info("wallet already unlocked")
		_, err := w.GetWalletAddress(ctx)
		return err

	default:
		return &browser.Error{
			Kind:   browser.ErrUnexpectedState,
			Op:     "initial setup",
			Window: browser.WindowExtension,
			Err:    fmt.Errorf("resetting an existing wallet is not supported"),
		}
	}
}

func (w *Wallet) onboard(ctx context.Context, opts SetupOptions) error {
	if err := w.ConfirmWelcomePage(ctx); err != nil {
		return err
	}

	secret := strings.TrimSpace(opts.SecretWordsOrPrivateKey)
	if strings.Contains(secret, " ") {
		if err := w.ImportWallet(ctx, secret, opts.Password); err != nil {
			return err
		}
	} else {
		if err := w.CreateWallet(ctx, opts.Password); err != nil {
			return err
		}
		if err := w.ImportAccount(ctx, secret); err != nil {
			return err
		}
	}

	if err := w.setupSettings(ctx, opts.EnableAdvancedSettings); err != nil {
		return err
	}

	network := opts.Network
	if network == nil {
		network = Sepolia
	}
	if custom, ok := network.(CustomNetwork); ok {
		if err := w.AddNetwork(ctx, custom); err != nil {
			return err
		}
	} else if err := w.ChangeNetwork(ctx, network); err != nil {
		return err
	}

	_, err := w.GetWalletAddress(ctx)
	return err
}
