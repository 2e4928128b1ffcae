package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kwanter/formfix/cmd/formfix/opts"
	"github.com/kwanter/formfix/pkg/log"
	"github.com/kwanter/formfix/pkg/operation"
	"github.com/kwanter/formfix/pkg/report"
	"github.com/kwanter/formfix/pkg/store"
	"github.com/kwanter/formfix/pkg/store/github"
	"gitlab.com/tozd/go/errors"
)

// printReports writes reports as JSON or console lines and records the exit code
func printReports(ctx context.Context, o *opts.RootOpts, reports []*report.RunReport) error {
	o.Finish(reports)

	if o.JSON {
		out, err := report.JSON(reports)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(o.Stdout, string(out))
		return err
	}

	l := log.FromContext(ctx)
	for _, r := range reports {
		report.Render(ctx, l, r, backupPath(o, r.Document))
	}

	if len(reports) > 1 {
		table, err := report.SummaryTable(reports)
		if err != nil {
			return err
		}
		l.LogNewline()
		l.Raw(table + "\n")
	}
	return nil
}

func backupPath(o *opts.RootOpts, identity string) string {
	if github.IsRef(identity) || filepath.IsAbs(identity) {
		return store.BackupIdentity(identity)
	}
	return store.BackupIdentity(filepath.Join(o.BaseDir, identity))
}

// localTargets expands targets and rejects remote references, which are read only
func localTargets(ctx context.Context, o *opts.RootOpts, targets []string) ([]string, error) {
	for _, t := range targets {
		if github.IsRef(t) {
			return nil, errors.Errorf("%s: github references can only be verified", t)
		}
		if store.IsArtifact(t) {
			return nil, errors.Errorf("%s: backups and temp files are never migrated", t)
		}
	}
	return operation.ExpandTargets(ctx, o.BaseDir, nil, targets)
}
