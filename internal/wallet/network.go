package wallet

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/go-playground/validator/v10"

	"github.com/neboloop/walletpilot/internal/browser"
	"github.com/neboloop/walletpilot/internal/config"
)

// Network is either a NamedNetwork or a CustomNetwork.
type Network interface {
	// DisplayName is the lower-cased name shown in the network switcher.
	DisplayName() string
	isNetwork()
}

// NamedNetwork is a network already known to the wallet, selected by name.
type NamedNetwork string

// Well-known networks with their own switcher entries.
const (
	Mainnet   NamedNetwork = "mainnet"
	Goerli    NamedNetwork = "goerli"
	Sepolia   NamedNetwork = "sepolia"
	Localhost NamedNetwork = "localhost"
)

func (n NamedNetwork) DisplayName() string { return strings.ToLower(string(n)) }
func (NamedNetwork) isNetwork()            {}

// switcherItem returns the dedicated menu entry of a well-known network, or
// the generic entry matched by text.
func (n NamedNetwork) switcherItem() browser.Target {
	switch NamedNetwork(n.DisplayName()) {
	case Mainnet:
		return mainPage.MainnetNetworkItem
	case Goerli:
		return mainPage.GoerliNetworkItem
	case Sepolia:
		return mainPage.SepoliaNetworkItem
	case Localhost:
		return mainPage.LocalhostNetworkItem
	default:
		return mainPage.NetworkMenuItem.WithText(n.DisplayName())
	}
}

// CustomNetwork describes a network to add to the wallet.
type CustomNetwork struct {
	Name          string `json:"name" validate:"required"`
	RPCURL        string `json:"rpcUrl" validate:"required,url"`
	ChainID       string `json:"chainId" validate:"required,chainid"`
	Symbol        string `json:"symbol,omitempty"`
	BlockExplorer string `json:"blockExplorer,omitempty" validate:"omitempty,url"`
	IsTestnet     bool   `json:"isTestnet,omitempty"`
}

func (n CustomNetwork) DisplayName() string { return strings.ToLower(n.Name) }
func (CustomNetwork) isNetwork()            {}

// ChainIDInt parses the chain ID, decimal or 0x-prefixed hex.
func (n CustomNetwork) ChainIDInt() (*big.Int, error) {
	id, ok := math.ParseBig256(strings.TrimSpace(n.ChainID))
	if !ok || id.Sign() <= 0 {
		return nil, fmt.Errorf("invalid chain id %q", n.ChainID)
	}
	return id, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("chainid", func(fl validator.FieldLevel) bool {
		id, ok := math.ParseBig256(strings.TrimSpace(fl.Field().String()))
		return ok && id.Sign() > 0
	})
	return v
}

// Validate checks the descriptor before any UI is touched.
func (n CustomNetwork) Validate() error {
	if err := validate.Struct(n); err != nil {
		return fmt.Errorf("invalid network %q: %w", n.Name, err)
	}
	return nil
}

// ParseNetwork turns a user-supplied name into a NamedNetwork.
func ParseNetwork(name string) Network {
	return NamedNetwork(strings.ToLower(strings.TrimSpace(name)))
}

// NetworkFromConfig picks the custom network when one is configured,
// otherwise the named one.
func NetworkFromConfig(c config.WalletConfig) Network {
	if n := c.CustomNetwork; n.IsSet() {
		return CustomNetwork{
			Name:          n.Name,
			RPCURL:        n.RPCURL,
			ChainID:       n.ChainID,
			Symbol:        n.Symbol,
			BlockExplorer: n.BlockExplorer,
			IsTestnet:     n.IsTestnet,
		}
	}
	if c.Network == "" {
		return Sepolia
	}
	return ParseNetwork(c.Network)
}
