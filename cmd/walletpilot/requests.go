package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neboloop/walletpilot/internal/browser"
	"github.com/neboloop/walletpilot/internal/wallet"
)

type requestFlags struct {
	allAccounts bool
	gas         string
	closes      bool
}

type answerFunc func(ctx context.Context, w *wallet.Wallet, f requestFlags) error

func plain(fn func(*wallet.Wallet, context.Context) error) answerFunc {
	return func(ctx context.Context, w *wallet.Wallet, _ requestFlags) error {
		return fn(w, ctx)
	}
}

var approvals = map[string]answerFunc{
	"signature":              plain((*wallet.Wallet).ConfirmSignatureRequest),
	"data-signature":         plain((*wallet.Wallet).ConfirmDataSignatureRequest),
	"spend":                  plain((*wallet.Wallet).ConfirmPermissionToSpend),
	"encryption-key":         plain((*wallet.Wallet).ConfirmEncryptionPublicKeyRequest),
	"decryption":             plain((*wallet.Wallet).ConfirmDecryptionRequest),
	"switch-network":         plain((*wallet.Wallet).AllowToSwitchNetwork),
	"add-and-switch-network": plain((*wallet.Wallet).AllowToAddAndSwitchNetwork),
	"access": func(ctx context.Context, w *wallet.Wallet, f requestFlags) error {
		return w.AcceptAccess(ctx, f.allAccounts)
	},
	"add-network": func(ctx context.Context, w *wallet.Wallet, f requestFlags) error {
		ev := browser.EventNone
		if f.closes {
			ev = browser.EventClose
		}
		return w.AllowToAddNetwork(ctx, ev)
	},
	"transaction": func(ctx context.Context, w *wallet.Wallet, f requestFlags) error {
		gas, err := wallet.ParseGas(f.gas)
		if err != nil {
			return err
		}
		tx, err := w.ConfirmTransaction(ctx, gas)
		if err != nil {
			return err
		}
		return printJSON(tx)
	},
}

var rejections = map[string]answerFunc{
	"signature":      plain((*wallet.Wallet).RejectSignatureRequest),
	"data-signature": plain((*wallet.Wallet).RejectDataSignatureRequest),
	"spend":          plain((*wallet.Wallet).RejectPermissionToSpend),
	"transaction":    plain((*wallet.Wallet).RejectTransaction),
	"encryption-key": plain((*wallet.Wallet).RejectEncryptionPublicKeyRequest),
	"decryption":     plain((*wallet.Wallet).RejectDecryptionRequest),
	"add-network":    plain((*wallet.Wallet).RejectToAddNetwork),
	"switch-network": plain((*wallet.Wallet).RejectToSwitchNetwork),
}

func requestKinds(m map[string]answerFunc) []string {
	kinds := make([]string, 0, len(m))
	for k := range m {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func answerCmd(use, short string, answers map[string]answerFunc) (*cobra.Command, *requestFlags) {
	var f requestFlags
	kinds := requestKinds(answers)
	cmd := &cobra.Command{
		Use:       use + " <request>",
		Short:     short,
		Long:      fmt.Sprintf("%s\n\nRequests: %s", short, strings.Join(kinds, ", ")),
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, ok := answers[args[0]]
			if !ok {
				return fmt.Errorf("unknown request %q (want one of %s)", args[0], strings.Join(kinds, ", "))
			}
			return withWallet(cmd.Context(), func(ctx context.Context, w *wallet.Wallet) error {
				return fn(ctx, w, f)
			})
		},
	}
	return cmd, &f
}

// ApproveCmd answers a pending dapp request positively.
func ApproveCmd() *cobra.Command {
	cmd, f := answerCmd("approve", "Approve the dapp request shown in the wallet popup", approvals)
	cmd.Flags().BoolVar(&f.allAccounts, "all-accounts", false, "access: connect every account")
	cmd.Flags().StringVar(&f.gas, "gas", "", "transaction: low|market|aggressive|site or limit=,price=,base=,priority= (gwei)")
	cmd.Flags().BoolVar(&f.closes, "closes", false, "add-network: the popup closes after approval (no switch prompt follows)")
	return cmd
}

// RejectCmd answers a pending dapp request negatively.
func RejectCmd() *cobra.Command {
	cmd, _ := answerCmd("reject", "Reject the dapp request shown in the wallet popup", rejections)
	return cmd
}
