package ga

import (
	"context"
	"fmt"

	"github.com/adrianmross/ga-context/pkg/selector"
)

// Details holds friendly names for a saved selection.
type Details struct {
	AccountName  string
	AccountID    string
	PropertyName string
	PropertyID   string
	ProfileName  string
	ProfileID    string
	TableID      string
}

// Describe resolves names for each level of sel. Ids missing from their list
// keep an empty name; an error payload at any level is returned as an error.
func Describe(ctx context.Context, f selector.Fetcher, sel selector.Selection) (Details, error) {
	d := Details{AccountID: sel.AccountID, PropertyID: sel.PropertyID, ProfileID: sel.ProfileID}
	if table, err := sel.TableID(); err == nil {
		d.TableID = table
	}

	reqs := []selector.Request{
		{Level: selector.LevelAccount},
		{Level: selector.LevelProperty, AccountID: sel.AccountID},
		{Level: selector.LevelProfile, AccountID: sel.AccountID, PropertyID: sel.PropertyID},
	}
	names := []*string{&d.AccountName, &d.PropertyName, &d.ProfileName}
	ids := []string{sel.AccountID, sel.PropertyID, sel.ProfileID}
	for i, req := range reqs {
		if ids[i] == "" {
			break
		}
		res := f.Fetch(ctx, req)
		if res.Err != nil {
			return Details{}, fmt.Errorf("list %s: %s", req.Level, res.Err.Message)
		}
		for _, it := range res.Items {
			if it.ID == ids[i] {
				*names[i] = it.Name
				break
			}
		}
	}
	return d, nil
}
