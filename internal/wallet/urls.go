package wallet

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/neboloop/walletpilot/internal/browser"
)

// ExtensionURLs are the extension pages flows navigate to. Every URL shares
// the extension ID of Initial.
type ExtensionURLs struct {
	Initial              string `json:"initial"`
	ID                   string `json:"id"`
	Home                 string `json:"home"`
	Settings             string `json:"settings"`
	AdvancedSettings     string `json:"advancedSettings"`
	ExperimentalSettings string `json:"experimentalSettings"`
	AddNetwork           string `json:"addNetwork"`
	NewAccount           string `json:"newAccount"`
	ImportAccount        string `json:"importAccount"`
}

// DeriveURLs computes the extension page URLs from any extension page URL.
func DeriveURLs(initial string) (ExtensionURLs, error) {
	id := browser.ExtensionID(initial)
	if id == "" {
		return ExtensionURLs{}, fmt.Errorf("not an extension url: %q", initial)
	}
	home := browser.ExtensionScheme + id + "/home.html"
	settings := home + "#settings"
	newAccount := home + "#new-account"
	return ExtensionURLs{
		Initial:              initial,
		ID:                   id,
		Home:                 home,
		Settings:             settings,
		AdvancedSettings:     settings + "/advanced",
		ExperimentalSettings: settings + "/experimental",
		AddNetwork:           settings + "/networks/add-network",
		NewAccount:           newAccount,
		ImportAccount:        newAccount + "/import",
	}, nil
}

// Detected reports whether the URLs were derived.
func (u ExtensionURLs) Detected() bool { return u.ID != "" }

// List returns the navigable URLs in a stable order.
func (u ExtensionURLs) List() []string {
	return []string{u.Home, u.Settings, u.AdvancedSettings, u.ExperimentalSettings, u.AddNetwork, u.NewAccount, u.ImportAccount}
}

// Setup is the result of initial setup. It is filled once by InitialSetup or
// DetectExtension and is read-only afterwards; Wallet.Setup hands out copies.
type Setup struct {
	URLs    ExtensionURLs  `json:"urls"`
	Address common.Address `json:"address"`
	Network string         `json:"network,omitempty"`
}

// HasAddress reports whether the wallet address was read.
func (s Setup) HasAddress() bool { return s.Address != (common.Address{}) }

func (s Setup) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "extension %s", s.URLs.ID)
	if s.HasAddress() {
		fmt.Fprintf(&b, " address %s", s.Address.Hex())
	}
	if s.Network != "" {
		fmt.Fprintf(&b, " network %s", s.Network)
	}
	return b.String()
}
