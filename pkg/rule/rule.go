// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rule implements named, idempotent text transformations over a
// document.Document. A rule is either a PatternRule (primary matcher with an
// optional fallback) or a LineFilterRule (drop lines matching a predicate).
package rule

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kwanter/formfix/pkg/document"
	"gitlab.com/tozd/go/errors"
)

// 📊 Method records which strategy changed the document
type Method string

const (
	MethodPrimary  Method = "primary"
	MethodFallback Method = "fallback"
	MethodNone     Method = "none"
)

// 📝 Outcome is the result of applying one rule once
type Outcome struct {
	RuleName     string `json:"rule_name"`
	Applied      bool   `json:"applied"`
	Method       Method `json:"method"`
	Skipped      bool   `json:"skipped,omitempty"`
	Replacements int    `json:"replacements"`
}

// 🎯 Rule transforms one document into the next
type Rule interface {
	Name() string
	Apply(doc document.Document) (document.Document, Outcome)
}

// 🔧 PatternRule tries its primary matcher, then its fallback
type PatternRule struct {
	name     string
	primary  Matcher
	fallback Matcher
	filter   string
}

// 🏭 NewPatternRule creates a rule. fallback may be nil.
func NewPatternRule(name string, primary, fallback Matcher) *PatternRule {
	return &PatternRule{name: name, primary: primary, fallback: fallback}
}

// WithFileFilter restricts the rule to documents whose identity matches glob.
func (r *PatternRule) WithFileFilter(glob string) *PatternRule {
	cp := *r
	cp.filter = glob
	return &cp
}

func (r *PatternRule) Name() string { return r.name }

// Primary and Fallback expose the matchers for listing.
func (r *PatternRule) Primary() Matcher { return r.primary }
func (r *PatternRule) Fallback() Matcher { return r.fallback }
func (r *PatternRule) FileFilter() string { return r.filter }

func (r *PatternRule) Apply(doc document.Document) (document.Document, Outcome) {
	if !matchesFilter(r.filter, doc) {
		return doc, Outcome{RuleName: r.name, Method: MethodNone, Skipped: true}
	}

	if next, n := r.primary.Replace(doc); n > 0 {
		return next, Outcome{RuleName: r.name, Applied: true, Method: MethodPrimary, Replacements: n}
	}

	if r.fallback != nil {
		if next, n := r.fallback.Replace(doc); n > 0 {
			return next, Outcome{RuleName: r.name, Applied: true, Method: MethodFallback, Replacements: n}
		}
	}

	return doc, Outcome{RuleName: r.name, Method: MethodNone}
}

// ✂️ LineFilterRule drops lines as its only strategy
type LineFilterRule struct {
	name   string
	lines  *LineFilter
	filter string
}

// 🏭 NewLineFilterRule creates a standalone line filter rule
func NewLineFilterRule(name string, lines *LineFilter) *LineFilterRule {
	return &LineFilterRule{name: name, lines: lines}
}

// WithFileFilter restricts the rule to documents whose identity matches glob.
func (r *LineFilterRule) WithFileFilter(glob string) *LineFilterRule {
	cp := *r
	cp.filter = glob
	return &cp
}

func (r *LineFilterRule) Name() string { return r.name }
func (r *LineFilterRule) LineFilter() *LineFilter { return r.lines }
func (r *LineFilterRule) FileFilter() string { return r.filter }

func (r *LineFilterRule) Apply(doc document.Document) (document.Document, Outcome) {
	if !matchesFilter(r.filter, doc) {
		return doc, Outcome{RuleName: r.name, Method: MethodNone, Skipped: true}
	}

	next, dropped := r.lines.Replace(doc)
	if dropped == 0 {
		return doc, Outcome{RuleName: r.name, Method: MethodNone}
	}
	return next, Outcome{RuleName: r.name, Applied: true, Method: MethodPrimary, Replacements: dropped}
}

type fileFiltered interface {
	FileFilter() string
}

// 🔍 ValidateRules checks that names are present and unique and that file
// filters are valid doublestar patterns
func ValidateRules(rules []Rule) error {
	seen := make(map[string]int, len(rules))
	for i, r := range rules {
		if r == nil {
			return errors.Errorf("rule %d: is nil", i)
		}
		if r.Name() == "" {
			return errors.Errorf("rule %d: name is required", i)
		}
		if j, ok := seen[r.Name()]; ok {
			return errors.Errorf("rule %d: name %q already used by rule %d", i, r.Name(), j)
		}
		seen[r.Name()] = i

		if ff, ok := r.(fileFiltered); ok && ff.FileFilter() != "" {
			if !doublestar.ValidatePattern(ff.FileFilter()) {
				return errors.Errorf("rule %q: invalid file filter %q", r.Name(), ff.FileFilter())
			}
		}
	}
	return nil
}

func matchesFilter(glob string, doc document.Document) bool {
	if glob == "" {
		return true
	}
	ok, err := doublestar.Match(glob, filepath.ToSlash(doc.Identity()))
	return err == nil && ok
}
