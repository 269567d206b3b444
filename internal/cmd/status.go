package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newStatusCmd() *cobra.Command {
	var useGlobal bool
	var cfgPath string
	var container string
	var output string
	var plain bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current selection with friendly names",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			id, sel, err := currentSelection(ctx, cfg, path, container)
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			fetcher, err := newFetcher(ctx, cfg)
			if err != nil {
				return err
			}
			details, err := describeSelection(ctx, fetcher, sel)
			if err != nil {
				return err
			}
			resp := map[string]string{
				"container":   id,
				"account":     details.AccountName,
				"account_id":  details.AccountID,
				"property":    details.PropertyName,
				"property_id": details.PropertyID,
				"profile":     details.ProfileName,
				"profile_id":  details.ProfileID,
				"table_id":    details.TableID,
			}
			if plain {
				fmt.Fprintf(cmd.OutOrStdout(), "container=%s account=%s property=%s profile=%s table=%s\n",
					resp["container"], resp["account_id"], resp["property_id"], resp["profile_id"], resp["table_id"])
				return nil
			}
			switch strings.ToLower(output) {
			case "":
				fmt.Fprintf(cmd.OutOrStdout(), "container: %s\n", resp["container"])
				fmt.Fprintf(cmd.OutOrStdout(), "account: %s (%s)\n", resp["account"], resp["account_id"])
				if resp["property_id"] != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "property: %s (%s)\n", resp["property"], resp["property_id"])
				}
				if resp["profile_id"] != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "profile: %s (%s)\n", resp["profile"], resp["profile_id"])
					fmt.Fprintf(cmd.OutOrStdout(), "table: %s\n", resp["table_id"])
				}
				return nil
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			case "yaml", "yml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				defer enc.Close()
				return enc.Encode(resp)
			case "plain":
				fmt.Fprintf(cmd.OutOrStdout(), "container=%s account=%s (%s) property=%s (%s) profile=%s (%s) table=%s\n",
					resp["container"],
					resp["account"], resp["account_id"],
					resp["property"], resp["property_id"],
					resp["profile"], resp["profile_id"],
					resp["table_id"],
				)
				return nil
			default:
				return fmt.Errorf("unsupported output format: %s", output)
			}
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.ga-context/config.yml)")
	cmd.Flags().StringVarP(&container, "container", "n", "", "Container id (default: current)")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Output format: json|yaml|plain (default: human-readable)")
	cmd.Flags().BoolVarP(&plain, "plain", "p", false, "Plain ids only (no names)")
	return cmd
}
