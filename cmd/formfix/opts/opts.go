package opts

import (
	"context"
	"io"

	"github.com/kwanter/formfix/pkg/checklist"
	"github.com/kwanter/formfix/pkg/config"
	"github.com/kwanter/formfix/pkg/report"
	"github.com/kwanter/formfix/pkg/rule"
	"github.com/kwanter/formfix/pkg/ruleset/sakip"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	// RulesFile is a rule-set file or the name of a builtin rule set. Empty
	// means the XDG default file, then the builtin set.
	RulesFile string
	// BaseDir resolves relative document paths
	BaseDir string
	// JSON prints reports as JSON instead of console lines
	JSON  bool
	Debug bool

	Stdout io.Writer

	exitCode int
}

// RuleSet is a compiled set of rules and checks ready to run.
type RuleSet struct {
	Name      string
	Source    string
	Rules     []rule.Rule
	Checklist []checklist.Item
	// DefaultTargets are used when no target is given on the command line
	DefaultTargets []string
}

// 📜 LoadRuleSet resolves --rules into a compiled rule set
func (o *RootOpts) LoadRuleSet(ctx context.Context) (*RuleSet, error) {
	path := o.RulesFile
	if path == "" {
		path = config.FindDefault()
	}

	if path == "" || path == sakip.Name {
		zerolog.Ctx(ctx).Debug().Str("rule_set", sakip.Name).Msg("using builtin rule set")
		return &RuleSet{
			Name:           sakip.Name,
			Source:         "builtin",
			Rules:          sakip.Rules(),
			Checklist:      sakip.Checklist(),
			DefaultTargets: []string{sakip.DefaultTarget},
		}, nil
	}

	rs, err := config.Load(ctx, path)
	if err != nil {
		return nil, errors.Errorf("loading rule set: %w", err)
	}
	rules, items, err := rs.Compile()
	if err != nil {
		return nil, errors.Errorf("compiling rule set %s: %w", path, err)
	}
	zerolog.Ctx(ctx).Debug().Str("rule_set", rs.Name).Str("path", rs.Location()).Int("rules", len(rules)).Msg("loaded rule set")
	return &RuleSet{Name: rs.Name, Source: rs.Location(), Rules: rules, Checklist: items}, nil
}

// Targets returns args, or the rule set's default targets when args is empty.
func (rs *RuleSet) Targets(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(rs.DefaultTargets) == 0 {
		return nil, errors.Errorf("rule set %q has no default target, pass at least one path", rs.Name)
	}
	return rs.DefaultTargets, nil
}

// 🚦 Finish records the exit code for reports. The highest code wins.
func (o *RootOpts) Finish(reports []*report.RunReport) {
	if code := report.ExitCodeFor(reports); code > o.exitCode {
		o.exitCode = code
	}
}

// ExitCode is the process exit status for a successful command.
func (o *RootOpts) ExitCode() int {
	return o.exitCode
}
