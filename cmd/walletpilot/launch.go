package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// LaunchCmd starts a browser with the wallet extension and keeps it running
// until interrupted, so other commands and the test runner can attach.
func LaunchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "launch",
		Short: "Launch a browser with the wallet extension and keep it running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, err := open(ctx, true)
			if err != nil {
				return err
			}
			defer e.close(ctx)

			cfg := e.manager.Config()
			fmt.Printf("CDP endpoint: %s\n", cfg.CDPUrl)
			fmt.Printf("Extension:    %s\n", e.session.ExtensionURL())
			if r := e.manager.Running(); r != nil {
				fmt.Printf("Browser:      %s (pid %d)\n", r.Executable.Path, r.PID)
			}
			fmt.Println("Press Ctrl+C to stop.")

			<-ctx.Done()
			fmt.Println("\nShutting down...")
			return nil
		},
	}
}
