package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neboloop/walletpilot/internal/wallet"
)

// WindowsCmd lists the logical windows of an attached session.
func WindowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "windows",
		Short: "List the runner and extension windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := open(ctx, false)
			if err != nil {
				return err
			}
			defer e.close(ctx)

			reg := e.session.Registry()
			for _, name := range reg.Names() {
				h, err := reg.Resolve(name)
				if err != nil {
					fmt.Printf("%-24s (closed)\n", name)
					continue
				}
				u, err := h.Window().URL(ctx)
				if err != nil {
					u = "?"
				}
				active := ""
				if e.session.Switcher().Active() == name {
					active = " *"
				}
				fmt.Printf("%-24s %-10s %s%s\n", name, h.Owner(), u, active)
			}
			return nil
		},
	}
}

// URLsCmd prints the extension page URLs.
func URLsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "urls",
		Short: "Print the wallet extension page URLs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWallet(cmd.Context(), func(ctx context.Context, w *wallet.Wallet) error {
				urls := w.Setup().URLs
				if asJSON {
					return printJSON(urls)
				}
				for _, u := range urls.List() {
					fmt.Println(u)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// AddressCmd prints the selected account's address.
func AddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the selected account's address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWallet(cmd.Context(), func(ctx context.Context, w *wallet.Wallet) error {
				addr, err := w.GetWalletAddress(ctx)
				if err != nil {
					return err
				}
				fmt.Println(addr.Hex())
				return nil
			})
		},
	}
}
