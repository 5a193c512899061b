package wallet

import (
	"context"
	"errors"

	"github.com/neboloop/walletpilot/internal/browser"
)

// DetectExtension derives the extension URLs from the extension window and
// stores them in the setup result.
func (w *Wallet) DetectExtension(ctx context.Context) (ExtensionURLs, error) {
	var urls ExtensionURLs
	err := w.run(ctx, "detect extension", func(ctx context.Context) error {
		initial := w.s.ExtensionURL()
		if initial == "" {
			err := w.onExtension(ctx, func(ctx context.Context) error {
				u, err := w.s.URL(ctx)
				initial = u
				return err
			})
			if err != nil {
				return err
			}
		}
		u, err := DeriveURLs(initial)
		if err != nil {
			return err
		}
		urls = u
		w.update(func(s *Setup) { s.URLs = u })
		return nil
	})
	return urls, err
}

// GoTo navigates the extension window to url.
func (w *Wallet) GoTo(ctx context.Context, url string) error {
	if url == "" {
		return errNotDetected
	}
	return w.onExtension(ctx, func(ctx context.Context) error {
		return w.s.Goto(ctx, url)
	})
}

func (w *Wallet) GoToHome(ctx context.Context) error     { return w.GoTo(ctx, w.urls().Home) }
func (w *Wallet) GoToSettings(ctx context.Context) error { return w.GoTo(ctx, w.urls().Settings) }
func (w *Wallet) GoToAdvancedSettings(ctx context.Context) error {
	return w.GoTo(ctx, w.urls().AdvancedSettings)
}
func (w *Wallet) GoToExperimentalSettings(ctx context.Context) error {
	return w.GoTo(ctx, w.urls().ExperimentalSettings)
}
func (w *Wallet) GoToAddNetwork(ctx context.Context) error {
	return w.GoTo(ctx, w.urls().AddNetwork)
}
func (w *Wallet) GoToNewAccount(ctx context.Context) error {
	return w.GoTo(ctx, w.urls().NewAccount)
}
func (w *Wallet) GoToImportAccount(ctx context.Context) error {
	return w.GoTo(ctx, w.urls().ImportAccount)
}

// FixBlankPage reloads the extension window until its app renders. The
// extension sometimes comes up blank on first load; giving up is not an
// error.
func (w *Wallet) FixBlankPage(ctx context.Context) error {
	return w.run(ctx, "fix blank page", func(ctx context.Context) error {
		return w.onExtension(ctx, func(ctx context.Context) error {
			policy := w.s.Timing().BlankPage
			err := w.s.Retry(ctx, policy, func(ctx context.Context, n int) (bool, error) {
				if w.s.Probe(ctx, welcomePage.App) {
					return true, nil
				}
				w.logger.Debug("extension page blank, reloading", "attempt", n)
				return false, w.s.Reload(ctx)
			})
			if errors.Is(err, browser.ErrRetriesExhausted) {
				w.logger.Warn("extension page still blank, continuing", "attempts", policy.MaxAttempts)
				return nil
			}
			return err
		})
	})
}

// ConfirmWelcomePage gets past the welcome screen.
func (w *Wallet) ConfirmWelcomePage(ctx context.Context) error {
	return w.run(ctx, "confirm welcome page", func(ctx context.Context) error {
		if err := w.FixBlankPage(ctx); err != nil {
			return err
		}
		return w.onExtension(ctx, func(ctx context.Context) error {
			return w.clickAndNavigate(ctx, welcomePage.ConfirmButton)
		})
	})
}

// ClosePopupAndTooltips dismisses whatever overlay the extension shows on
// its home screen. Each one is optional.
func (w *Wallet) ClosePopupAndTooltips(ctx context.Context) error {
	return w.run(ctx, "close popup and tooltips", func(ctx context.Context) error {
		return w.onExtension(ctx, func(ctx context.Context) error {
			shown, err := w.s.Appears(ctx, mainPage.PopupContainer)
			if err != nil {
				return err
			}
			if shown {
				if err := w.s.ClickBackground(ctx, mainPage.PopupBackground); err != nil {
					return err
				}
			}
			if err := w.clickIfVisible(ctx, mainPage.TooltipClose); err != nil {
				return err
			}
			return w.clickIfVisible(ctx, mainPage.ActionableClose)
		})
	})
}

// CloseModal closes the connected-sites modal if it is open.
func (w *Wallet) CloseModal(ctx context.Context) error {
	return w.run(ctx, "close modal", func(ctx context.Context) error {
		return w.onExtension(ctx, func(ctx context.Context) error {
			shown, err := w.s.Appears(ctx, mainPage.ConnectedSitesModal)
			if err != nil || !shown {
				return err
			}
			return w.click(ctx, mainPage.ConnectedSitesClose)
		})
	})
}
