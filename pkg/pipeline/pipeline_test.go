package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kwanter/formfix/pkg/document"
	"github.com/kwanter/formfix/pkg/rule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const formula = `<div class="mb-3">
    <label for="calculation_method">Metode</label>
    <textarea id="calculation_method" name="calculation_method"></textarea>
    <!-- legacy calculation_method helper -->
</div>
`

func renameRule() rule.Rule {
	return rule.NewPatternRule("rename-calculation-method",
		rule.MustRegex(`((?:\bid|\bname|\bfor)=")calculation_method(")`, "${1}calculation_formula${2}"),
		nil,
	)
}

func sweepRule() rule.Rule {
	return rule.NewLineFilterRule("sweep-calculation-method", rule.MustLineFilter("calculation_method"))
}

func TestRun_OrderSensitivity(t *testing.T) {
	ctx := context.Background()
	doc := document.New("form.blade.php", formula)

	t.Run("rename_then_sweep", func(t *testing.T) {
		final, outcomes, err := Run(ctx, doc, []rule.Rule{renameRule(), sweepRule()})
		require.NoError(t, err)

		assert.Zero(t, strings.Count(final.Text(), "calculation_method"))
		assert.Contains(t, final.Text(), `name="calculation_formula"`)
		assert.Contains(t, final.Text(), `for="calculation_formula"`)
		assert.Equal(t, rule.MethodPrimary, outcomes[0].Method)
		assert.Equal(t, 1, outcomes[1].Replacements, "only the leftover comment line is dropped")
	})

	// Swapped, the sweep deletes the field before the rename can see it, so the
	// document ends up without the renamed field at all.
	t.Run("sweep_then_rename_is_stale", func(t *testing.T) {
		final, outcomes, err := Run(ctx, doc, []rule.Rule{sweepRule(), renameRule()})
		require.NoError(t, err)

		assert.Zero(t, strings.Count(final.Text(), "calculation_method"))
		assert.NotContains(t, final.Text(), "calculation_formula")
		assert.Equal(t, 3, outcomes[0].Replacements)
		assert.Equal(t, rule.MethodNone, outcomes[1].Method)
		assert.False(t, outcomes[1].Applied)
	})
}

func TestRun_Idempotent(t *testing.T) {
	ctx := context.Background()
	rules := []rule.Rule{
		renameRule(),
		rule.NewLineFilterRule("remove-year", rule.MustLineFilter(rule.FieldFragments([]string{"year"})...)),
		rule.NewPatternRule("swap-label",
			rule.MustRegex(`(<label for="calculation_formula">)[^<]*(</label>)`, "${1}Formula${2}"),
			nil,
		),
	}
	doc := document.New("form.blade.php", formula+"<select id=\"year\" name=\"year\"></select>\n")

	p, err := New(rules...)
	require.NoError(t, err)

	once, _ := p.Run(ctx, doc)
	twice, outcomes := p.Run(ctx, once)

	if diff := cmp.Diff(once.Text(), twice.Text()); diff != "" {
		t.Fatalf("second run changed the document (-once +twice):\n%s", diff)
	}
	assert.Equal(t, rule.MethodNone, outcomes[0].Method)
	assert.Equal(t, rule.MethodNone, outcomes[1].Method)
	assert.Equal(t, rule.MethodPrimary, outcomes[2].Method, "a structural rewrite may match again without changing anything")
}

func TestRun_RecordsEveryRule(t *testing.T) {
	rules := []rule.Rule{
		rule.NewLineFilterRule("a", rule.MustLineFilter("nope")),
		rule.NewLineFilterRule("b", rule.MustLineFilter("also nope")),
		renameRule(),
	}
	doc := document.New("x", formula)

	final, outcomes, err := Run(context.Background(), doc, rules)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	names := []string{outcomes[0].RuleName, outcomes[1].RuleName, outcomes[2].RuleName}
	assert.Equal(t, []string{"a", "b", "rename-calculation-method"}, names)
	assert.False(t, outcomes[0].Applied)
	assert.False(t, outcomes[1].Applied)
	assert.True(t, outcomes[2].Applied)
	assert.Equal(t, formula, doc.Text())
	assert.NotEqual(t, formula, final.Text())
}

func TestNew_DuplicateNames(t *testing.T) {
	_, err := New(renameRule(), renameRule())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already used")
}
