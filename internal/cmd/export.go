package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adrianmross/ga-context/internal/daemon"
)

func newExportCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool
	var container string
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current selection as env or json",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			id, sel, err := currentSelection(cmd.Context(), cfg, path, container)
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}

			switch format {
			case "env", "":
				for _, line := range daemon.EnvLines(sel) {
					fmt.Fprintf(cmd.OutOrStdout(), "export %s\n", line)
				}
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(sel); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported format: %s", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.ga-context/config.yml)")
	cmd.Flags().StringVarP(&container, "container", "n", "", "Container id (default: current)")
	cmd.Flags().StringVarP(&format, "format", "f", "env", "Output format: env|json")
	return cmd
}
