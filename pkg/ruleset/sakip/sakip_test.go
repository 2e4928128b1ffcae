package sakip

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kwanter/formfix/pkg/checklist"
	"github.com/kwanter/formfix/pkg/document"
	"github.com/kwanter/formfix/pkg/pipeline"
	"github.com/kwanter/formfix/pkg/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadForm(t *testing.T) document.Document {
	t.Helper()
	content, err := os.ReadFile("testdata/create.blade.php")
	require.NoError(t, err)
	return document.New("resources/views/sakip/indicators/create.blade.php", string(content))
}

func migrate(t *testing.T, doc document.Document) (document.Document, []rule.Outcome) {
	t.Helper()
	p, err := pipeline.New(Rules()...)
	require.NoError(t, err)
	return p.Run(context.Background(), doc)
}

func TestRuleSetIsValid(t *testing.T) {
	require.NoError(t, rule.ValidateRules(Rules()))
	require.NoError(t, checklist.Validate(Checklist()))
	assert.Len(t, Checklist(), 17)

	names := map[string]bool{}
	for _, r := range Rules() {
		names[r.Name()] = true
	}
	for _, item := range Checklist() {
		if item.Rule != "" {
			assert.True(t, names[item.Rule], "check %q links unknown rule %q", item.Label, item.Rule)
		}
	}
}

func TestPhaseOne_EndToEnd(t *testing.T) {
	final, outcomes := migrate(t, loadForm(t))

	want := []struct {
		name         string
		method       rule.Method
		replacements int
	}{
		{"category-options", rule.MethodPrimary, 1},
		{"remove-department-field", rule.MethodPrimary, 1},
		{"remove-year-field", rule.MethodPrimary, 1},
		{"remove-strategic-linkage", rule.MethodPrimary, 1},
		{"rename-calculation-method", rule.MethodPrimary, 6},
		{"remove-target-fields", rule.MethodPrimary, 28},
		{"remove-validation-fields", rule.MethodPrimary, 12},
		{"remove-formula-fields", rule.MethodPrimary, 2},
		{"category-descriptions", rule.MethodPrimary, 1},
		{"remove-update-target-fields", rule.MethodPrimary, 1},
		{"strip-update-target-fields-handler", rule.MethodNone, 0},
	}
	require.Len(t, outcomes, len(want))
	for i, w := range want {
		assert.Equal(t, w.name, outcomes[i].RuleName)
		assert.Equal(t, w.method, outcomes[i].Method, "rule %s", w.name)
		assert.Equal(t, w.replacements, outcomes[i].Replacements, "rule %s", w.name)
	}

	results := checklist.Evaluate(final, Checklist())
	for _, r := range results {
		assert.True(t, r.Passed, "check %q failed", r.Item.Label)
	}

	text := final.Text()
	assert.Equal(t, 4, strings.Count(text, "{{ old('category') =="), "exactly the four new category options")
	for _, v := range []string{"input", "output", "outcome", "impact"} {
		assert.Equal(t, 1, strings.Count(text, `<option value="`+v+`"`), "option %s", v)
	}
	assert.Contains(t, text, "                                    <option value=\"input\" {{ old('category') == 'input' ? 'selected' : '' }}>\n                                        Input\n                                    </option>")

	_, body, ok := strings.Cut(text, "function updateCategoryDescription() {")
	require.True(t, ok)
	body, _, _ = strings.Cut(body, "\n}")
	assert.Contains(t, body, "'input': 'Input: Sumber daya yang digunakan untuk menghasilkan output',")
	assert.Contains(t, body, "'impact': 'Impact: Dampak jangka panjang bagi masyarakat'\n    };")
	for _, key := range []string{"'iku':", "'ikk':", "'ikt':", "'iks':"} {
		assert.NotContains(t, body, key)
	}

	assert.NotContains(t, text, "Keterkaitan dengan Tujuan Strategis")
	assert.NotContains(t, text, "calculation_method")
	assert.Contains(t, text, `for="calculation_formula"`)
	assert.Contains(t, text, "@error('calculation_formula')")
	assert.Contains(t, text, "function previewFiles()", "neighbouring functions survive")
	assert.Contains(t, text, `name="description"`, "neighbouring form groups survive")
}

func TestPhaseOne_Idempotent(t *testing.T) {
	once, _ := migrate(t, loadForm(t))
	twice, outcomes := migrate(t, once)

	assert.Empty(t, cmp.Diff(once.Text(), twice.Text()))
	for _, o := range outcomes {
		assert.False(t, o.Applied, "rule %s applied on an already migrated form", o.RuleName)
		assert.Equal(t, rule.MethodNone, o.Method)
	}
}

func TestPhaseOne_Fallbacks(t *testing.T) {
	doc := loadForm(t)
	drifted := strings.Replace(doc.Text(),
		`<option value="">Pilih Kategori</option>`,
		`<option value="">-- Pilih Kategori --</option>`, 1)
	drifted = strings.Replace(drifted,
		"<div class=\"mb-3\">\n                                <label for=\"department_id\"",
		"<div class=\"mb-3 department\">\n                                <label for=\"department_id\"", 1)
	require.NotEqual(t, doc.Text(), drifted)

	final, outcomes := migrate(t, doc.WithText(drifted))

	byName := map[string]rule.Outcome{}
	for _, o := range outcomes {
		byName[o.RuleName] = o
	}
	assert.Equal(t, rule.MethodFallback, byName["category-options"].Method)
	assert.Equal(t, rule.MethodFallback, byName["remove-department-field"].Method)
	assert.Equal(t, 2, byName["remove-department-field"].Replacements)
	assert.Equal(t, rule.MethodPrimary, byName["remove-year-field"].Method)

	assert.True(t, checklist.AllPassed(checklist.Evaluate(final, Checklist())))
}

func TestPhaseOne_CRLF(t *testing.T) {
	doc := loadForm(t)
	lf, lfOutcomes := migrate(t, doc)

	crlf := document.New(doc.Identity(), strings.ReplaceAll(doc.Text(), "\n", "\r\n"))
	require.Equal(t, document.CRLF, crlf.Terminator())

	final, outcomes := migrate(t, crlf)
	require.Len(t, outcomes, len(lfOutcomes))
	for i, o := range lfOutcomes {
		assert.Equal(t, o.Method, outcomes[i].Method, "rule %s", o.RuleName)
		assert.Equal(t, o.Replacements, outcomes[i].Replacements, "rule %s", o.RuleName)
	}

	assert.True(t, checklist.AllPassed(checklist.Evaluate(final, Checklist())))
	assert.Empty(t, cmp.Diff(strings.ReplaceAll(lf.Text(), "\n", "\r\n"), final.Text()))
}

func TestPhaseOne_ChecklistFailsOnPristineForm(t *testing.T) {
	results := checklist.Evaluate(loadForm(t), Checklist())

	failed := map[string]bool{}
	for _, r := range results {
		if !r.Passed {
			failed[r.Item.Label] = true
		}
	}
	assert.True(t, failed["category input"])
	assert.True(t, failed["removed year"])
	assert.True(t, failed["old category iku"])
	assert.False(t, failed["field data_source"])
	assert.False(t, failed["removed sasaran_strategis_id"])
}
