package commands

import (
	"github.com/kwanter/formfix/cmd/formfix/opts"
	"github.com/kwanter/formfix/pkg/operation"
	"github.com/kwanter/formfix/pkg/report"
	"github.com/kwanter/formfix/pkg/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewRunCmd creates the run command
func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [path...]",
		Short: "Migrate documents in place",
		Long: `Run migrates each document in turn. It will:
1. Write <path>.backup the first time a document is migrated
2. Apply every rule in order
3. Verify the result against the checklist
4. Write the migrated document back, even when checks fail

Paths may be doublestar globs. Without a path the rule set's default
target is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "run").Logger().WithContext(ctx)

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
				r, err := op.Migrate(ctx, identity)
				if err != nil {
					if len(reports) == 0 {
						return err
					}
					// documents migrated so far are already written
					if perr := printReports(ctx, o, reports); perr != nil {
						return errors.Join(err, perr)
					}
					return err
				}
				reports = append(reports, r)
			}

			return printReports(ctx, o, reports)
		},
	}

	return cmd
}
