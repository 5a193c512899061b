package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neboloop/walletpilot/internal/keyring"
)

// SecretsCmd manages wallet secrets in the OS keychain.
func SecretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Store wallet secrets in the OS keychain",
		Long: fmt.Sprintf(`Stores wallet secrets in the OS keychain so setup does not need them in
the environment. Environment variables still take precedence.

Names: %s`, strings.Join(keyring.Names, ", ")),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !keyring.Available() {
				return errors.New("OS keychain not available")
			}
			return nil
		},
	}
	cmd.AddCommand(secretsSetCmd())
	cmd.AddCommand(secretsDeleteCmd())
	cmd.AddCommand(secretsListCmd())
	return cmd
}

func checkSecretName(name string) error {
	if !slices.Contains(keyring.Names, name) {
		return fmt.Errorf("unknown secret %q (want one of %s)", name, strings.Join(keyring.Names, ", "))
	}
	return nil
}

func secretsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name>",
		Short: "Store a secret read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := checkSecretName(name); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s: ", name)
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read secret: %w", err)
			}
			value := strings.TrimSpace(line)
			if value == "" {
				return errors.New("empty secret")
			}
			if err := keyring.Set(name, value); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "stored %s\n", name)
			return nil
		},
	}
}

func secretsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkSecretName(args[0]); err != nil {
				return err
			}
			return keyring.Delete(args[0])
		},
	}
}

func secretsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show which secrets are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range keyring.Names {
				v, err := keyring.Lookup(name)
				if err != nil {
					return err
				}
				state := "not set"
				if v != "" {
					state = "stored"
				}
				fmt.Printf("%-16s %s\n", name, state)
			}
			return nil
		},
	}
}
