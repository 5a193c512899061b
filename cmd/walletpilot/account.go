package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neboloop/walletpilot/internal/config"
	"github.com/neboloop/walletpilot/internal/keyring"
	"github.com/neboloop/walletpilot/internal/wallet"
)

// AccountCmd groups account commands.
func AccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Import, create or switch accounts",
	}
	cmd.AddCommand(accountImportCmd())
	cmd.AddCommand(accountCreateCmd())
	cmd.AddCommand(accountSwitchCmd())
	return cmd
}

func accountImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [private-key]",
		Short: "Import an account from a private key (default: PRIVATE_KEY or keychain)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			} else {
				c, err := config.Load(cfgFile)
				if err != nil {
					return err
				}
				key = c.Wallet.PrivateKey
				if key == "" && keyring.Available() {
					if key, err = keyring.Lookup(keyring.PrivateKey); err != nil {
						return err
					}
				}
			}
			if key == "" {
				return errors.New("no private key given")
			}
			addr, err := wallet.AddressFromPrivateKey(key)
			if err != nil {
				return err
			}
			err = withWallet(cmd.Context(), func(ctx context.Context, w *wallet.Wallet) error {
				return w.ImportAccount(ctx, key)
			})
			if err != nil {
				return err
			}
			fmt.Println(addr.Hex())
			return nil
		},
	}
}

func accountCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return withWallet(cmd.Context(), func(ctx context.Context, w *wallet.Wallet) error {
				return w.CreateAccount(ctx, name)
			})
		},
	}
}

func accountSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <name-or-number>",
		Short: "Switch to an account by name or 1-based position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWallet(cmd.Context(), func(ctx context.Context, w *wallet.Wallet) error {
				return w.SwitchAccount(ctx, wallet.ParseAccount(args[0]))
			})
		},
	}
}
