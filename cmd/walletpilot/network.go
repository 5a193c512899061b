package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/neboloop/walletpilot/internal/wallet"
)

// NetworkCmd groups network commands.
func NetworkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Add or switch wallet networks",
	}
	cmd.AddCommand(networkAddCmd())
	cmd.AddCommand(networkSwitchCmd())
	return cmd
}

func networkAddCmd() *cobra.Command {
	var n wallet.CustomNetwork
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a custom network and switch to it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := n.Validate(); err != nil {
				return err
			}
			return withWallet(cmd.Context(), func(ctx context.Context, w *wallet.Wallet) error {
				return w.AddNetwork(ctx, n)
			})
		},
	}
	cmd.Flags().StringVar(&n.Name, "name", "", "network name")
	cmd.Flags().StringVar(&n.RPCURL, "rpc-url", "", "RPC endpoint")
	cmd.Flags().StringVar(&n.ChainID, "chain-id", "", "chain ID, decimal or 0x hex")
	cmd.Flags().StringVar(&n.Symbol, "symbol", "", "currency symbol")
	cmd.Flags().StringVar(&n.BlockExplorer, "explorer", "", "block explorer URL")
	cmd.Flags().BoolVar(&n.IsTestnet, "testnet", false, "mark as testnet")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("rpc-url")
	_ = cmd.MarkFlagRequired("chain-id")
	return cmd
}

func networkSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <name>",
		Short: "Switch to a network the wallet knows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWallet(cmd.Context(), func(ctx context.Context, w *wallet.Wallet) error {
				return w.ChangeNetwork(ctx, wallet.ParseNetwork(args[0]))
			})
		},
	}
}
