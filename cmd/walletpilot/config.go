package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/neboloop/walletpilot/internal/browser"
	"github.com/neboloop/walletpilot/internal/config"
	"github.com/neboloop/walletpilot/internal/defaults"
)

// ConfigCmd shows or resets the configuration.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			path := cfgFile
			if path == "" {
				dir, err := defaults.DataDir()
				if err != nil {
					return err
				}
				path = filepath.Join(dir, defaults.ConfigFile)
			}
			fmt.Printf("# %s\n", path)

			out, err := yaml.Marshal(c)
			if err != nil {
				return err
			}
			os.Stdout.Write(out)

			r := browser.ResolveConfig(c.Browser)
			fmt.Printf("\n# resolved\n# cdp: %s (attach: %v)\n# user data: %s\n", r.CDPUrl, r.Attach, r.UserDataDir)
			if c.HasCustomNetwork() {
				fmt.Printf("# setup adds network %q\n", c.Wallet.CustomNetwork.Name)
			} else {
				fmt.Printf("# setup selects network %q\n", c.Wallet.Network)
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Overwrite the config file in the data directory with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := defaults.DataDir()
			if err != nil {
				return err
			}
			if err := defaults.Reset(dir); err != nil {
				return err
			}
			fmt.Printf("Reset %s\n", filepath.Join(dir, defaults.ConfigFile))
			return nil
		},
	})
	return cmd
}
