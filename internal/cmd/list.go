package cmd

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adrianmross/ga-context/pkg/selector"
	"github.com/adrianmross/ga-context/pkg/store"
)

func newListCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool
	var output string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved selections",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			var selections map[string]selector.Selection
			err = withStore(cmd.Context(), cfg, path, func(st store.Store) error {
				selections, err = st.List()
				return err
			})
			if err != nil {
				return err
			}
			containers := slices.Sorted(maps.Keys(selections))

			switch strings.ToLower(output) {
			case "":
				for _, id := range containers {
					sel := selections[id]
					marker := " "
					if id == cfg.CurrentContainer {
						marker = "*"
					}
					line := fmt.Sprintf("%s %s (account=%s property=%s profile=%s", marker, id, sel.AccountID, sel.PropertyID, sel.ProfileID)
					if verbose {
						table, err := sel.TableID()
						if err != nil {
							table = "-"
						}
						line += " table=" + table
					}
					fmt.Fprintln(cmd.OutOrStdout(), line+")")
				}
				return nil
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(selections)
			case "yaml", "yml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				defer enc.Close()
				return enc.Encode(selections)
			case "plain":
				for _, id := range containers {
					sel := selections[id]
					marker := ""
					if id == cfg.CurrentContainer {
						marker = "*"
					}
					table, _ := sel.TableID()
					fmt.Fprintf(cmd.OutOrStdout(), "container=%s%s account=%s property=%s profile=%s table=%s\n",
						id, marker, sel.AccountID, sel.PropertyID, sel.ProfileID, table)
				}
				return nil
			default:
				return fmt.Errorf("unsupported output format: %s", output)
			}
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.ga-context/config.yml)")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Output format: json|yaml|plain (default: human-readable)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show table ids in human-readable output")
	return cmd
}
