package selector

import (
	"html/template"
	"slices"
	"strings"
)

// NotFoundLabel is the placeholder shown when a list comes back empty.
const NotFoundLabel = "not found"

// LoadingLabel is the placeholder shown before a list has been fetched.
const LoadingLabel = "loading..."

// Option is one rendered entry of a dropdown.
type Option struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Selected bool   `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// Dropdown is the view-model for one of the three select elements.
type Dropdown struct {
	ElementID   string   `json:"element_id" yaml:"element_id"`
	Level       Level    `json:"level" yaml:"level"`
	Options     []Option `json:"options" yaml:"options"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// ElementID names the child element for a level under the container.
func ElementID(containerID string, l Level) string {
	return containerID + "-" + l.elementSuffix()
}

// SortByName returns a copy of items ordered by lowercased name, ties kept in input order.
func SortByName(items []Item) []Item {
	out := cloneItems(items)
	slices.SortStableFunc(out, func(a, b Item) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out
}

// RenderOptions maps items to options, marking the one whose id equals selectedID.
func RenderOptions(items []Item, selectedID string) []Option {
	out := make([]Option, len(items))
	for i, it := range items {
		out[i] = Option{ID: it.ID, Name: it.Name, Selected: it.ID == selectedID}
	}
	return out
}

// SelectedIndex returns the index of the selected option, or -1.
func (d Dropdown) SelectedIndex() int {
	for i, o := range d.Options {
		if o.Selected {
			return i
		}
	}
	return -1
}

var selectTmpl = template.Must(template.New("select").Parse(
	`<select id="{{.ElementID}}">` +
		`{{if .Placeholder}}<option value="">{{.Placeholder}}</option>{{end}}` +
		`{{range .Options}}<option value="{{.ID}}"{{if .Selected}} selected{{end}}>{{.Name}}</option>{{end}}` +
		`</select>`))

// HTML renders the dropdown as an escaped select element.
func (d Dropdown) HTML() (string, error) {
	var b strings.Builder
	if err := selectTmpl.Execute(&b, d); err != nil {
		return "", err
	}
	return b.String(), nil
}
