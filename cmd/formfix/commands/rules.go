package commands

import (
	"encoding/json"
	"fmt"

	"github.com/kwanter/formfix/cmd/formfix/opts"
	"github.com/kwanter/formfix/pkg/rule"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

type ruleRow struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Primary  string `json:"primary"`
	Fallback string `json:"fallback,omitempty"`
	Filter   string `json:"file_filter_glob,omitempty"`
}

func describe(r rule.Rule) ruleRow {
	row := ruleRow{Name: r.Name()}
	switch r := r.(type) {
	case *rule.PatternRule:
		row.Kind = "pattern"
		row.Primary = r.Primary().Describe()
		if r.Fallback() != nil {
			row.Fallback = r.Fallback().Describe()
		}
		row.Filter = r.FileFilter()
	case *rule.LineFilterRule:
		row.Kind = "line_filter"
		row.Primary = r.LineFilter().Describe()
		row.Filter = r.FileFilter()
	default:
		row.Kind = fmt.Sprintf("%T", r)
	}
	return row
}

// NewRulesCmd creates the rules command
func NewRulesCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rules and checks of the selected rule set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := o.LoadRuleSet(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([]ruleRow, 0, len(rs.Rules))
			for _, r := range rs.Rules {
				rows = append(rows, describe(r))
			}

			if o.JSON {
				out, err := json.MarshalIndent(map[string]any{
					"name":   rs.Name,
					"source": rs.Source,
					"rules":  rows,
					"checks": rs.Checklist,
				}, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(o.Stdout, string(out))
				return err
			}

			data := pterm.TableData{{"#", "Rule", "Kind", "Primary", "Fallback"}}
			for i, row := range rows {
				data = append(data, []string{fmt.Sprint(i + 1), row.Name, row.Kind, truncate(row.Primary, 48), truncate(row.Fallback, 32)})
			}
			rulesTable, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Errorf("rendering rules table: %w", err)
			}

			checks := pterm.TableData{{"Check", "Expect", "Fragment", "Rule"}}
			for _, c := range rs.Checklist {
				expect := "present"
				if !c.ExpectPresent {
					expect = "absent"
				}
				checks = append(checks, []string{c.Label, expect, truncate(c.Fragment, 48), c.Rule})
			}
			checksTable, err := pterm.DefaultTable.WithHasHeader().WithData(checks).Srender()
			if err != nil {
				return errors.Errorf("rendering checks table: %w", err)
			}

			_, err = fmt.Fprintf(o.Stdout, "📜 %s (%s)\n\n%s\n\n%s\n", rs.Name, rs.Source, rulesTable, checksTable)
			return err
		},
	}

	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
