package pipeline_test

import (
	"context"
	"fmt"

	"github.com/kwanter/formfix/pkg/document"
	"github.com/kwanter/formfix/pkg/pipeline"
	"github.com/kwanter/formfix/pkg/rule"
)

func ExampleRun() {
	doc := document.New("form.blade.php", "<input name=\"old_title\">\n<input name=\"year\">\n")

	final, outcomes, err := pipeline.Run(context.Background(), doc, []rule.Rule{
		rule.NewPatternRule("rename-title", rule.MustLiteral(`name="old_title"`, `name="title"`), nil),
		rule.NewLineFilterRule("remove-year", rule.MustLineFilter(`name="year"`)),
		rule.NewLineFilterRule("remove-notes", rule.MustLineFilter(`name="notes"`)),
	})
	if err != nil {
		panic(err)
	}

	fmt.Print(final.Text())
	for _, o := range outcomes {
		fmt.Printf("%s %s %d\n", o.RuleName, o.Method, o.Replacements)
	}
	// Output:
	// <input name="title">
	// rename-title primary 1
	// remove-year primary 1
	// remove-notes none 0
}
