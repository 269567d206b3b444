package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adrianmross/ga-context/pkg/config"
	"github.com/adrianmross/ga-context/pkg/store"
)

func newUseCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool

	cmd := &cobra.Command{
		Use:   "use <container>",
		Short: "Switch the current container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			path, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			err = withStore(cmd.Context(), cfg, path, func(st store.Store) error {
				_, ok, err := st.Load(name)
				if err != nil {
					return err
				}
				if !ok {
					return config.ErrSelectionNotFound
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			err = config.Update(path, func(c *config.Config) error {
				c.CurrentContainer = name
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.ga-context/config.yml)")
	return cmd
}
