package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adrianmross/ga-context/pkg/selector"
)

type viewResult struct {
	Container string              `json:"container" yaml:"container"`
	State     string              `json:"state" yaml:"state"`
	TableID   string              `json:"table_id,omitempty" yaml:"table_id,omitempty"`
	Error     string              `json:"error,omitempty" yaml:"error,omitempty"`
	Dropdowns []selector.Dropdown `json:"dropdowns" yaml:"dropdowns"`
}

func newViewCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool
	var container string
	var output string
	var account, property, profile string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Load the account/property/profile chain and print the three lists",
		Long: "Load the account/property/profile chain for a container and print the three lists.\n" +
			"--account and --property change a level before printing; --profile selects and saves a profile.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			st, closeStore, err := openStore(ctx, cfg, path)
			if err != nil {
				return err
			}
			defer closeStore()
			fetcher, err := newFetcher(ctx, cfg)
			if err != nil {
				return err
			}

			id := cfg.Container(container)
			s := selector.New(id, st, selector.WithLogger(log))
			if err := s.Load(ctx, fetcher); err != nil {
				return err
			}
			if err := applyViewChanges(ctx, s, fetcher, account, property, profile); err != nil {
				return err
			}

			res := viewResult{Container: id, State: s.State().String(), Error: s.Err(), Dropdowns: s.View()}
			if table, err := s.TableID(); err == nil {
				res.TableID = table
			}
			if err := writeView(cmd.OutOrStdout(), res, output); err != nil {
				return err
			}
			if s.State() == selector.StateHalted {
				return fmt.Errorf("%s: %s", id, s.Err())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.ga-context/config.yml)")
	cmd.Flags().StringVarP(&container, "container", "n", "", "Container id (default: current)")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Output format: json|yaml|html (default: human-readable)")
	cmd.Flags().StringVarP(&account, "account", "a", "", "Switch to this account")
	cmd.Flags().StringVarP(&property, "property", "p", "", "Switch to this property")
	cmd.Flags().StringVarP(&profile, "profile", "P", "", "Select and save this profile")
	return cmd
}

// applyViewChanges replays user choices against a loaded selector, top down.
func applyViewChanges(ctx context.Context, s *selector.Selector, f selector.Fetcher, account, property, profile string) error {
	if account != "" {
		req, err := s.ChangeAccount(account)
		if err != nil {
			return err
		}
		if err := s.Run(ctx, f, req); err != nil {
			return err
		}
	}
	if property != "" {
		req, err := s.ChangeProperty(property)
		if err != nil {
			return err
		}
		if err := s.Run(ctx, f, req); err != nil {
			return err
		}
	}
	if profile != "" {
		return s.ChangeProfile(profile)
	}
	return nil
}

func writeView(w io.Writer, res viewResult, output string) error {
	switch strings.ToLower(output) {
	case "":
		for _, d := range res.Dropdowns {
			fmt.Fprintf(w, "%s [%s]\n", d.Level, d.ElementID)
			if len(d.Options) == 0 {
				fmt.Fprintf(w, "  %s\n", d.Placeholder)
				continue
			}
			for _, o := range d.Options {
				marker := " "
				if o.Selected {
					marker = "*"
				}
				fmt.Fprintf(w, "  %s %s (%s)\n", marker, o.Name, o.ID)
			}
		}
		if res.TableID != "" {
			fmt.Fprintf(w, "table: %s\n", res.TableID)
		}
		if res.Error != "" {
			fmt.Fprintf(w, "error: %s\n", res.Error)
		}
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(res)
	case "html":
		fmt.Fprintf(w, "<div id=\"%s\">\n", template.HTMLEscapeString(res.Container))
		for _, d := range res.Dropdowns {
			markup, err := d.HTML()
			if err != nil {
				return err
			}
			fmt.Fprintln(w, markup)
		}
		fmt.Fprintln(w, "</div>")
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", output)
	}
}
