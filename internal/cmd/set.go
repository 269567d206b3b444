package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adrianmross/ga-context/pkg/selector"
	"github.com/adrianmross/ga-context/pkg/store"
)

// applySelectionFlags merges flag values into sel. A new account drops the
// property and profile below it; a new property drops the profile.
func applySelectionFlags(sel selector.Selection, account, property, profile string) (selector.Selection, error) {
	if account != "" && account != sel.AccountID {
		sel = selector.Selection{AccountID: account}
	}
	if property != "" && property != sel.PropertyID {
		sel.PropertyID = property
		sel.ProfileID = ""
	}
	if profile != "" {
		sel.ProfileID = profile
	}
	if sel.PropertyID != "" && sel.AccountID == "" {
		return sel, errors.New("property requires an account")
	}
	if sel.ProfileID != "" && sel.PropertyID == "" {
		return sel, errors.New("profile requires a property")
	}
	return sel, nil
}

func newSetCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool
	var account, property, profile string

	cmd := &cobra.Command{
		Use:   "set <container>",
		Short: "Create or update the selection of a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			path, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			err = withStore(cmd.Context(), cfg, path, func(st store.Store) error {
				sel, _, err := st.Load(name)
				if err != nil {
					return err
				}
				sel, err = applySelectionFlags(sel, account, property, profile)
				if err != nil {
					return err
				}
				return store.Put(st, path, name, sel)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated selection %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.ga-context/config.yml)")
	cmd.Flags().StringVarP(&account, "account", "a", "", "Account id")
	cmd.Flags().StringVarP(&property, "property", "p", "", "Web property id")
	cmd.Flags().StringVarP(&profile, "profile", "P", "", "Profile (view) id")

	return cmd
}
