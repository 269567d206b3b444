package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/adrianmross/ga-context/pkg/config"
	"github.com/adrianmross/ga-context/pkg/selector"
)

func TestListOutputs(t *testing.T) {
	baseCfg := config.Config{
		Selections: map[string]selector.Selection{
			"main":  {AccountID: "2", PropertyID: "UA-2-2", ProfileID: "22"},
			"draft": {AccountID: "1", PropertyID: "UA-1-1"},
		},
		CurrentContainer: "main",
	}

	tests := []struct {
		name      string
		args      []string
		assert    func(t *testing.T, got string, err error)
		assertErr string
	}{
		{
			name: "default human output",
			args: []string{"list"},
			assert: func(t *testing.T, got string, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				want := strings.Join([]string{
					"  draft (account=1 property=UA-1-1 profile=)",
					"* main (account=2 property=UA-2-2 profile=22)",
					"",
				}, "\n")
				if got != want {
					t.Fatalf("output mismatch\nwant:\n%q\ngot:\n%q", want, got)
				}
			},
		},
		{
			name: "verbose human output",
			args: []string{"list", "-v"},
			assert: func(t *testing.T, got string, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				want := strings.Join([]string{
					"  draft (account=1 property=UA-1-1 profile= table=-)",
					"* main (account=2 property=UA-2-2 profile=22 table=ga:22)",
					"",
				}, "\n")
				if got != want {
					t.Fatalf("output mismatch\nwant:\n%q\ngot:\n%q", want, got)
				}
			},
		},
		{
			name: "plain output",
			args: []string{"list", "-o", "plain"},
			assert: func(t *testing.T, got string, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				want := strings.Join([]string{
					"container=draft account=1 property=UA-1-1 profile= table=",
					"container=main* account=2 property=UA-2-2 profile=22 table=ga:22",
					"",
				}, "\n")
				if got != want {
					t.Fatalf("output mismatch\nwant:\n%q\ngot:\n%q", want, got)
				}
			},
		},
		{
			name: "json output",
			args: []string{"list", "-o", "json"},
			assert: func(t *testing.T, got string, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				var out map[string]selector.Selection
				if err := json.Unmarshal([]byte(got), &out); err != nil {
					t.Fatalf("unmarshal json: %v", err)
				}
				if len(out) != 2 || out["main"] != baseCfg.Selections["main"] || out["draft"] != baseCfg.Selections["draft"] {
					t.Fatalf("unexpected selections %+v", out)
				}
			},
		},
		{
			name: "yaml output",
			args: []string{"list", "-o", "yaml"},
			assert: func(t *testing.T, got string, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				var out map[string]selector.Selection
				if err := yaml.Unmarshal([]byte(got), &out); err != nil {
					t.Fatalf("unmarshal yaml: %v", err)
				}
				if out["main"] != baseCfg.Selections["main"] {
					t.Fatalf("unexpected main selection %+v", out["main"])
				}
			},
		},
		{
			name:      "unsupported output",
			args:      []string{"list", "-o", "xml"},
			assertErr: "unsupported output format: xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := writeConfig(t, baseCfg)

			cmd := newListCmd()
			buf := &bytes.Buffer{}
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(append(tt.args, "--config", cfgPath))
			err := cmd.Execute()

			if tt.assertErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.assertErr) {
					t.Fatalf("expected error %q, got %v", tt.assertErr, err)
				}
				return
			}

			if tt.assert == nil {
				t.Fatalf("assert function must be provided for test %q", tt.name)
			}
			tt.assert(t, buf.String(), err)
		})
	}
}
