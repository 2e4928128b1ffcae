package report

import (
	"context"
	"fmt"

	"github.com/kwanter/formfix/pkg/log"
	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
)

// FormatChecks formats the pass count line with emojis
func FormatChecks(passed, total int) string {
	if passed >= total {
		return fmt.Sprintf("✅ Checks: %d/%d passed", passed, total)
	}
	return fmt.Sprintf("⚠️  Checks: %d/%d passed", passed, total)
}

// FormatBackup formats the backup state
func FormatBackup(identity string, state BackupState) string {
	switch state {
	case BackupCreated:
		return fmt.Sprintf("📦 Backup created at %s", identity)
	case BackupKept:
		return fmt.Sprintf("📦 Backup kept at %s", identity)
	default:
		return "📦 No backup written"
	}
}

// FormatStatus formats the overall verdict
func FormatStatus(r *RunReport) string {
	switch {
	case r.Mode == ModePlan:
		return fmt.Sprintf("🔎 Plan %s (nothing written)", r.Status)
	case r.Status == StatusCompleted:
		return fmt.Sprintf("🎉 Migration %s", r.Status)
	default:
		return fmt.Sprintf("🚧 Migration %s", r.Status)
	}
}

// 🖨️ Render writes a full report to the console logger
func Render(ctx context.Context, l *log.Logger, r *RunReport, backupIdentity string) {
	l.Header(r.Document)

	if len(r.Outcomes) > 0 {
		l.Section("rules")
		for _, o := range r.Outcomes {
			l.LogRule(ctx, o)
		}
		l.LogNewline()
	}

	if len(r.Checks) > 0 {
		l.Section("checks")
		for _, c := range r.Checks {
			l.LogCheck(ctx, c)
		}
		l.LogNewline()
	}

	if r.Mode == ModeRun {
		l.Raw(FormatBackup(backupIdentity, r.Backup) + "\n")
	}
	for _, label := range r.Unattributed {
		l.Infof("check %q passed without its rule applying", label)
	}

	l.Raw(FormatChecks(r.Passed, r.Passed+r.Failed) + "\n")
	l.Raw(FormatStatus(r) + "\n")
}

// 📋 SummaryTable renders one row per report
func SummaryTable(reports []*RunReport) (string, error) {
	data := pterm.TableData{{"Document", "Rules applied", "Passed", "Failed", "Status"}}
	for _, r := range reports {
		data = append(data, []string{
			r.Document,
			fmt.Sprintf("%d/%d", r.Applied(), len(r.Outcomes)),
			fmt.Sprint(r.Passed),
			fmt.Sprint(r.Failed),
			string(r.Status),
		})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Errorf("rendering summary table: %w", err)
	}
	return out, nil
}
