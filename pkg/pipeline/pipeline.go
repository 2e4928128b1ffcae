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

// Package pipeline applies an ordered rule sequence to a document.
package pipeline

import (
	"context"

	"github.com/kwanter/formfix/pkg/document"
	"github.com/kwanter/formfix/pkg/rule"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔗 Pipeline is an ordered, validated rule sequence
type Pipeline struct {
	rules []rule.Rule
}

// 🏭 New validates rules and returns a pipeline that applies them in order
func New(rules ...rule.Rule) (*Pipeline, error) {
	if err := rule.ValidateRules(rules); err != nil {
		return nil, errors.Errorf("validating rules: %w", err)
	}
	return &Pipeline{rules: append([]rule.Rule(nil), rules...)}, nil
}

// Rules returns the rules in application order.
func (p *Pipeline) Rules() []rule.Rule {
	return append([]rule.Rule(nil), p.rules...)
}

// 🏃 Run applies every rule in declaration order. Each rule sees the output of
// the rules before it. A rule that matches nothing is recorded and the run
// continues; Run never stops early.
func (p *Pipeline) Run(ctx context.Context, doc document.Document) (document.Document, []rule.Outcome) {
	logger := zerolog.Ctx(ctx)

	outcomes := make([]rule.Outcome, 0, len(p.rules))
	current := doc
	for _, r := range p.rules {
		next, outcome := r.Apply(current)
		outcomes = append(outcomes, outcome)

		switch {
		case outcome.Skipped:
			logger.Debug().Str("rule", outcome.RuleName).Str("document", doc.Identity()).Msg("rule skipped by file filter")
		case !outcome.Applied:
			logger.Warn().Str("rule", outcome.RuleName).Msg("rule matched nothing")
		default:
			logger.Debug().
				Str("rule", outcome.RuleName).
				Str("method", string(outcome.Method)).
				Int("replacements", outcome.Replacements).
				Msg("rule applied")
		}

		current = next
	}

	return current, outcomes
}

// Run is a convenience for a one-off pipeline.
func Run(ctx context.Context, doc document.Document, rules []rule.Rule) (document.Document, []rule.Outcome, error) {
	p, err := New(rules...)
	if err != nil {
		return doc, nil, err
	}
	final, outcomes := p.Run(ctx, doc)
	return final, outcomes, nil
}
