package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/kwanter/formfix/pkg/report"
	"github.com/kwanter/formfix/pkg/ruleset/sakip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = "../../pkg/ruleset/sakip/testdata/create.blade.php"

// project lays out a project directory holding the pristine form
func project(t *testing.T) (dir string, pristine []byte) {
	t.Helper()
	pristine, err := os.ReadFile(fixture)
	require.NoError(t, err)

	dir = t.TempDir()
	target := filepath.Join(dir, sakip.DefaultTarget)
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, pristine, 0o644))
	return dir, pristine
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_MigratesInPlace(t *testing.T) {
	dir, pristine := project(t)
	target := filepath.Join(dir, sakip.DefaultTarget)

	code, stdout, stderr := execute(t, "run", "--rules", sakip.Name, "--base-dir", dir)
	require.Equal(t, report.ExitOK, code, "stderr: %s", stderr)
	assert.Contains(t, stdout, "category-options")
	assert.Contains(t, stdout, "📦 Backup created at")
	assert.Contains(t, stdout, "✅ Checks: 17/17 passed")
	assert.Contains(t, stdout, "🎉 Migration completed")

	backup, err := os.ReadFile(target + ".backup")
	require.NoError(t, err)
	assert.Equal(t, pristine, backup)

	migrated, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.NotEqual(t, pristine, migrated)
	assert.NotContains(t, string(migrated), `name="department_id"`)

	code, stdout, _ = execute(t, "run", "--rules", sakip.Name, "--base-dir", dir)
	require.Equal(t, report.ExitOK, code)
	assert.Contains(t, stdout, "📦 Backup kept at")

	again, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, migrated, again, "second run changes nothing")

	backup, err = os.ReadFile(target + ".backup")
	require.NoError(t, err)
	assert.Equal(t, pristine, backup, "backup is never overwritten")
}

func TestPlan_LeavesFilesAlone(t *testing.T) {
	dir, pristine := project(t)
	target := filepath.Join(dir, sakip.DefaultTarget)

	code, stdout, _ := execute(t, "plan", "--rules", sakip.Name, "--base-dir", dir)
	require.Equal(t, report.ExitOK, code)
	assert.Contains(t, stdout, "--- "+sakip.DefaultTarget)
	assert.Contains(t, stdout, "@@ -")
	assert.Contains(t, stdout, "🔎 Plan completed (nothing written)")

	current, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, pristine, current)

	_, err = os.Stat(target + ".backup")
	assert.True(t, os.IsNotExist(err))
}

func TestVerify_ExitCodes(t *testing.T) {
	dir, _ := project(t)

	code, stdout, _ := execute(t, "verify", "--rules", sakip.Name, "--base-dir", dir, "--json")
	require.Equal(t, report.ExitWarnings, code, "a pristine form fails its checks")

	var reports []report.RunReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, report.ModeVerify, reports[0].Mode)
	assert.Equal(t, report.StatusCompletedWithWarnings, reports[0].Status)
	assert.Empty(t, reports[0].Outcomes)

	code, _, _ = execute(t, "run", "--rules", sakip.Name, "--base-dir", dir)
	require.Equal(t, report.ExitOK, code)

	code, _, _ = execute(t, "verify", "--rules", sakip.Name, "--base-dir", dir, "resources/**/*.blade.php")
	assert.Equal(t, report.ExitOK, code)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantStderr string
	}{
		{
			name:       "missing_source",
			args:       []string{"run", "--rules", sakip.Name, "--base-dir", t.TempDir()},
			wantStderr: "source not found",
		},
		{
			name:       "github_reference_is_read_only",
			args:       []string{"run", "--rules", sakip.Name, "github:acme/portal:create.blade.php"},
			wantStderr: "can only be verified",
		},
		{
			name:       "unknown_rules_file",
			args:       []string{"rules", "--rules", filepath.Join(t.TempDir(), "rules.ini")},
			wantStderr: "loading rule set",
		},
		{
			name:       "unknown_command",
			args:       []string{"migrate"},
			wantStderr: "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, tt.args...)
			assert.Equal(t, report.ExitFatal, code)
			assert.Contains(t, stderr, tt.wantStderr)
		})
	}
}

func TestRun_CustomRuleSet(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "form.blade.php"), []byte("<input name=\"year\">\n<input name=\"title\">\n"), 0o644))
	rules := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte(`name: drop-year
rules:
  - name: remove-year
    kind: line_filter
    fields: [year]
checks:
  - label: year removed
    fragment: name="year"
    expect: absent
    rule: remove-year
`), 0o644))

	code, _, stderr := execute(t, "run", "--rules", rules, "--base-dir", dir)
	assert.Equal(t, report.ExitFatal, code, "custom rule sets have no default target")
	assert.Contains(t, stderr, "no default target")

	code, stdout, stderr := execute(t, "run", "--rules", rules, "--base-dir", dir, "--json", "form.blade.php")
	require.Equal(t, report.ExitOK, code, "stderr: %s", stderr)

	var reports []report.RunReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, report.BackupCreated, reports[0].Backup)
	assert.Equal(t, 1, reports[0].Passed)

	migrated, err := os.ReadFile(filepath.Join(dir, "form.blade.php"))
	require.NoError(t, err)
	assert.Equal(t, "<input name=\"title\">\n", string(migrated))
}

func TestRulesAndVersion(t *testing.T) {
	code, stdout, _ := execute(t, "rules", "--rules", sakip.Name, "--json")
	require.Equal(t, report.ExitOK, code)

	var listed struct {
		Name  string `json:"name"`
		Rules []struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"rules"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &listed))
	assert.Equal(t, sakip.Name, listed.Name)
	require.Len(t, listed.Rules, len(sakip.Rules()))
	assert.Equal(t, "category-options", listed.Rules[0].Name)
	assert.Equal(t, "pattern", listed.Rules[0].Kind)

	code, stdout, _ = execute(t, "rules", "--rules", sakip.Name)
	require.Equal(t, report.ExitOK, code)
	assert.Contains(t, stdout, "remove-target-fields")

	code, stdout, _ = execute(t, "version")
	require.Equal(t, report.ExitOK, code)
	assert.Contains(t, stdout, "🚀 formfix version info:")
}

func TestRun_GlobRerunKeepsBackupPristine(t *testing.T) {
	dir, pristine := project(t)
	target := filepath.Join(dir, sakip.DefaultTarget)

	code, _, stderr := execute(t, "run", "--rules", sakip.Name, "--base-dir", dir)
	require.Equal(t, report.ExitOK, code, "stderr: %s", stderr)

	code, stdout, stderr := execute(t, "run", "--rules", sakip.Name, "--base-dir", dir, "--json", "resources/views/sakip/indicators/create*")
	require.Equal(t, report.ExitOK, code, "stderr: %s", stderr)

	var reports []report.RunReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &reports))
	require.Len(t, reports, 1, "the backup is not a target")
	assert.Equal(t, sakip.DefaultTarget, reports[0].Document)

	backup, err := os.ReadFile(target + ".backup")
	require.NoError(t, err)
	assert.Equal(t, pristine, backup)

	_, err = os.Stat(target + ".backup.backup")
	assert.True(t, os.IsNotExist(err))

	code, _, stderr = execute(t, "run", "--rules", sakip.Name, "--base-dir", dir, sakip.DefaultTarget+".backup")
	assert.Equal(t, report.ExitFatal, code)
	assert.Contains(t, stderr, "never migrated")
}

func TestRun_ReportsEarlierTargetsOnFailure(t *testing.T) {
	dir, _ := project(t)

	code, stdout, stderr := execute(t, "run", "--rules", sakip.Name, "--base-dir", dir, sakip.DefaultTarget, "missing.blade.php")
	assert.Equal(t, report.ExitFatal, code)
	assert.Contains(t, stderr, "source not found")
	assert.Contains(t, stdout, "📦 Backup created at")
	assert.Contains(t, stdout, "🎉 Migration completed")
}
