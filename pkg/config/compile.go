package config

import (
	"github.com/kwanter/formfix/pkg/checklist"
	"github.com/kwanter/formfix/pkg/rule"
	"gitlab.com/tozd/go/errors"
)

// 🏗️ Compile turns the declarations into rules and checklist items. It fails
// on invalid patterns, unknown forms, duplicate rule names and bad globs.
func (rs *RuleSet) Compile() ([]rule.Rule, []checklist.Item, error) {
	rules := make([]rule.Rule, 0, len(rs.Rules))
	for _, rc := range rs.Rules {
		r, err := rc.compile()
		if err != nil {
			return nil, nil, errors.Errorf("rule %q: %w", rc.Name, err)
		}
		rules = append(rules, r)
	}
	if err := rule.ValidateRules(rules); err != nil {
		return nil, nil, err
	}

	items := make([]checklist.Item, 0, len(rs.Checks))
	for _, c := range rs.Checks {
		item := checklist.Present(c.Label, c.Fragment)
		if c.Expect == ExpectAbsent {
			item = checklist.Absent(c.Label, c.Fragment)
		}
		items = append(items, item.ForRule(c.Rule))
	}
	if err := checklist.Validate(items); err != nil {
		return nil, nil, err
	}

	return rules, items, nil
}

func (rc RuleConfig) compile() (rule.Rule, error) {
	if rc.Kind == KindLineFilter {
		lf, err := lineFilter(rc.Fields, rc.Forms, rc.Fragments)
		if err != nil {
			return nil, err
		}
		return rule.NewLineFilterRule(rc.Name, lf).WithFileFilter(rc.FileFilter), nil
	}

	primary, err := rule.NewRegex(rc.Pattern, rc.Replace)
	if err != nil {
		return nil, err
	}

	var fallback rule.Matcher
	if rc.Fallback != nil {
		fallback, err = rc.Fallback.compile()
		if err != nil {
			return nil, errors.Errorf("fallback: %w", err)
		}
	}

	return rule.NewPatternRule(rc.Name, primary, fallback).WithFileFilter(rc.FileFilter), nil
}

func (f *FallbackConfig) compile() (rule.Matcher, error) {
	switch f.Kind {
	case FallbackLiteral:
		return rule.NewLiteral(f.Old, f.New)
	case FallbackRegex:
		return rule.NewRegex(f.Pattern, f.Replace)
	case FallbackLineFilter:
		return lineFilter(f.Fields, f.Forms, f.Fragments)
	}
	return nil, errors.Errorf("unknown kind %q", f.Kind)
}

// lineFilter expands fields in the given forms and appends raw fragments.
func lineFilter(fields, formNames, fragments []string) (*rule.LineFilter, error) {
	forms := make([]rule.Form, 0, len(formNames))
	for _, name := range formNames {
		form, ok := rule.ParseForm(name)
		if !ok {
			return nil, errors.Errorf("unknown form %q (want id, name, for or quoted)", name)
		}
		forms = append(forms, form)
	}

	all := append(rule.FieldFragments(fields, forms...), fragments...)
	return rule.NewLineFilter(all...)
}
