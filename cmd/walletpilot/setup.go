package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neboloop/walletpilot/internal/wallet"
)

// SetupCmd brings the extension to an unlocked wallet on the configured
// network.
func SetupCmd() *cobra.Command {
	var network string
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Onboard or unlock the wallet and select the configured network",
		Long: `Onboards a fresh extension (import from secret words, or create a wallet
and import a private key), unlocks a locked one, or reuses an unlocked one.
Secrets come from SECRET_WORDS / PRIVATE_KEY / WALLET_PASSWORD or the OS
keychain (see 'walletpilot secrets').`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := open(ctx, false)
			if err != nil {
				return err
			}
			defer e.close(ctx)

			c, err := withSecrets(e.config)
			if err != nil {
				return err
			}
			secret := c.Wallet.SecretWords
			if secret == "" {
				secret = c.Wallet.PrivateKey
			}
			if c.Wallet.Password == "" {
				return errors.New("no wallet password: set WALLET_PASSWORD or run 'walletpilot secrets set wallet-password'")
			}

			n := wallet.NetworkFromConfig(c.Wallet)
			if network != "" {
				n = wallet.ParseNetwork(network)
			}

			setup, err := e.wallet.InitialSetup(ctx, wallet.SetupOptions{
				SecretWordsOrPrivateKey: secret,
				Password:                c.Wallet.Password,
				Network:                 n,
				EnableAdvancedSettings:  c.Wallet.EnableAdvancedSettings,
				Reset:                   c.Wallet.Reset,
			})
			if err != nil {
				return err
			}
			fmt.Println(setup)
			return nil
		},
	}
	cmd.Flags().StringVar(&network, "network", "", "well-known network to select (overrides config)")
	return cmd
}
