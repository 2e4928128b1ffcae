package commands

import (
	"fmt"

	"github.com/kwanter/formfix/cmd/formfix/opts"
	"github.com/kwanter/formfix/pkg/log"
	"github.com/kwanter/formfix/pkg/operation"
	"github.com/kwanter/formfix/pkg/report"
	"github.com/kwanter/formfix/pkg/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewPlanCmd creates the plan command
func NewPlanCmd(o *opts.RootOpts) *cobra.Command {
	var noDiff bool

	cmd := &cobra.Command{
		Use:   "plan [path...]",
		Short: "Show what run would change without writing anything",
		Long: `Plan applies the rules and the checklist in memory and prints a
unified diff of the change. No backup is written and the document is left
untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "plan").Logger().WithContext(ctx)

			rs, err := o.LoadRuleSet(ctx)
			if err != nil {
				return err
			}
			targets, err := rs.Targets(args)
			if err != nil {
				return err
			}
			identities, err := localTargets(ctx, o, targets)
			if err != nil {
				return err
			}

			op, err := operation.New(operation.Options{
				Store:     store.NewFileStore(o.BaseDir),
				Rules:     rs.Rules,
				Checklist: rs.Checklist,
			})
			if err != nil {
				return errors.Errorf("creating operator: %w", err)
			}

			reports := make([]*report.RunReport, 0, len(identities))
			for _, identity := range identities {
				r, d, err := op.Plan(ctx, identity)
				if err != nil {
					return err
				}
				reports = append(reports, r)

				if o.JSON || noDiff {
					continue
				}
				l := log.FromContext(ctx)
				if d.Empty() {
					l.Infof("%s: no changes", identity)
					continue
				}
				l.Raw(d.Unified())
				l.Raw(fmt.Sprintf("%s %s\n\n", identity, d.Stat()))
			}

			return printReports(ctx, o, reports)
		},
	}

	cmd.Flags().BoolVar(&noDiff, "no-diff", false, "do not print the diff")
	return cmd
}
