package commands

import (
	"github.com/kwanter/formfix/cmd/formfix/opts"
	"github.com/kwanter/formfix/pkg/operation"
	"github.com/kwanter/formfix/pkg/store"
	"github.com/kwanter/formfix/pkg/store/github"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd(o *opts.RootOpts) *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "verify [path|glob|github:owner/repo@ref:path...]",
		Short: "Evaluate the checklist without applying any rule",
		Long: `Verify reads each document and reports which checklist items hold.
Nothing is written. Documents are read concurrently.

GitHub references use GITHUB_TOKEN when it is set, for example:
  formfix verify 'github:acme/portal@main:resources/views/**/create.blade.php'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "verify").Logger().WithContext(ctx)

			rs, err := o.LoadRuleSet(ctx)
			if err != nil {
				return err
			}
			targets, err := rs.Targets(args)
			if err != nil {
				return err
			}

			remote := github.NewFromEnv()
			identities, err := operation.ExpandTargets(ctx, o.BaseDir, remote, targets)
			if err != nil {
				return err
			}

			src := &operation.MultiSource{Local: store.NewFileStore(o.BaseDir), Remote: remote}
			reports, err := operation.Verify(ctx, src, rs.Checklist, identities, jobs)
			if err != nil {
				return err
			}

			return printReports(ctx, o, reports)
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "documents read at once (0 means one per CPU)")
	return cmd
}
