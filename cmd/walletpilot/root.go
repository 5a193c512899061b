// Package cli is the walletpilot command line.
package cli

import (
	"github.com/spf13/cobra"
)

// Shared CLI flags (used across multiple command files)
var (
	cfgFile     string
	screenshots string
	traceSpans  bool
	showMetrics bool
	verbose     bool
	quiet       bool
)

// SetupRootCmd configures the root command with all subcommands and flags
func SetupRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "walletpilot",
		Short: "walletpilot - drive a browser wallet extension from tests",
		Long: `walletpilot attaches to a Chromium browser running the wallet extension
and performs wallet actions (onboarding, networks, accounts, approving or
rejecting dapp requests) while a test runner drives the dapp page.

Start a browser with 'walletpilot launch', then run 'walletpilot setup'.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: platform data directory)")
	rootCmd.PersistentFlags().StringVar(&screenshots, "screenshots", "", "directory for failure screenshots (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&traceSpans, "trace", false, "print OpenTelemetry spans to stderr")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print browser action metrics on exit")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "no logging")

	rootCmd.AddCommand(LaunchCmd())
	rootCmd.AddCommand(SetupCmd())
	rootCmd.AddCommand(WindowsCmd())
	rootCmd.AddCommand(URLsCmd())
	rootCmd.AddCommand(AddressCmd())
	rootCmd.AddCommand(ApproveCmd())
	rootCmd.AddCommand(RejectCmd())
	rootCmd.AddCommand(NetworkCmd())
	rootCmd.AddCommand(AccountCmd())
	rootCmd.AddCommand(SecretsCmd())
	rootCmd.AddCommand(ConfigCmd())

	return rootCmd
}
