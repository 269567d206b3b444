package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adrianmross/ga-context/pkg/ipc"
)

func newCurrentCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool
	var container string
	var viaDaemon bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show the table id of the current selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			id := cfg.Container(container)
			var table string
			if viaDaemon {
				conn, err := ipc.Dial(cfg.Options.SocketPath)
				if err != nil {
					return fmt.Errorf("connect daemon: %w", err)
				}
				defer conn.Close()
				var out map[string]string
				if err := conn.Call(ipc.Request{Method: "table_id", Container: container}, &out); err != nil {
					return err
				}
				id, table = out["container"], out["table_id"]
			} else {
				_, sel, err := currentSelection(cmd.Context(), cfg, path, container)
				if err != nil {
					return fmt.Errorf("%s: %w", id, err)
				}
				if table, err = sel.TableID(); err != nil {
					return fmt.Errorf("%s: %w", id, err)
				}
			}
			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", id, table)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.ga-context/config.yml)")
	cmd.Flags().StringVarP(&container, "container", "n", "", "Container id (default: current)")
	cmd.Flags().BoolVarP(&viaDaemon, "daemon", "d", false, "Ask the running daemon instead of reading the config")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Prefix the table id with the container id")
	return cmd
}
