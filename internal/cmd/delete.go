package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adrianmross/ga-context/pkg/store"
)

func newDeleteCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool

	cmd := &cobra.Command{
		Use:   "delete <container>",
		Short: "Delete a saved selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			path, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			err = withStore(cmd.Context(), cfg, path, func(st store.Store) error {
				return store.Remove(st, path, name)
			})
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted selection %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.ga-context/config.yml)")
	return cmd
}
