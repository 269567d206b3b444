package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adrianmross/ga-context/internal/daemon"
	"github.com/adrianmross/ga-context/pkg/config"
	"github.com/adrianmross/ga-context/pkg/store"
)

func newDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the ga-context daemon",
	}
	cmd.AddCommand(newDaemonServeCmd())
	return cmd
}

func newDaemonServeCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ga-context daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := daemon.EnsureConfig(cfgPath)
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), cfg, path, func(st store.Store) error {
				svc, err := daemon.NewService(path, st, log)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Starting daemon with config %s\n", path)
				return svc.Serve()
			})
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	return cmd
}
