package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ga-context",
		Short:         "Pick and persist Google Analytics account, property and profile selections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags for defaults (not the selection values themselves)
	pf := cmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default project .ga-context.yml else $HOME/.ga-context/config.yml)")
	pf.BoolP("global", "g", false, "Force use of global config (~/.ga-context/config.yml)")
	pf.String("log-level", "", "Log level: debug|info|warn|error (default from config)")

	cmd.AddCommand(
		newInitCmd(),
		newListCmd(),
		newCurrentCmd(),
		newUseCmd(),
		newSetCmd(),
		newDeleteCmd(),
		newStatusCmd(),
		newExportCmd(),
		newViewCmd(),
		newDaemonCmd(),
		newTuiCmd(),
	)

	return cmd
}

// Execute runs the CLI.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ExecuteDaemon runs the daemon entrypoint.
func ExecuteDaemon() {
	if err := newDaemonServeCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
