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

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Rule kinds.
const (
	KindPattern    = "pattern"
	KindLineFilter = "line_filter"
)

// Fallback kinds.
const (
	FallbackLiteral    = "literal"
	FallbackRegex      = "regex"
	FallbackLineFilter = "line_filter"
)

// Check expectations.
const (
	ExpectPresent = "present"
	ExpectAbsent  = "absent"
)

// 🔌 Parser is the interface for rule set parsers
type Parser interface {
	// 📝 Parse parses the rule set from bytes
	Parse(ctx context.Context, data []byte, filename string) (*RuleSet, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 RuleSet is a user supplied list of rules and checks
type RuleSet struct {
	Name   string        `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Rules  []RuleConfig  `json:"rules" yaml:"rules" toml:"rules"`
	Checks []CheckConfig `json:"checks,omitempty" yaml:"checks,omitempty" toml:"checks,omitempty"`

	location string
}

// 🔄 RuleConfig declares one rule. Kind "pattern" (the default) needs Pattern;
// kind "line_filter" needs Fields or Fragments.
type RuleConfig struct {
	Name       string          `json:"name" yaml:"name" toml:"name"`
	Kind       string          `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"`
	Pattern    string          `json:"pattern,omitempty" yaml:"pattern,omitempty" toml:"pattern,omitempty"`
	Replace    string          `json:"replace,omitempty" yaml:"replace,omitempty" toml:"replace,omitempty"`
	Fields     []string        `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
	Forms      []string        `json:"forms,omitempty" yaml:"forms,omitempty" toml:"forms,omitempty"`
	Fragments  []string        `json:"fragments,omitempty" yaml:"fragments,omitempty" toml:"fragments,omitempty"`
	FileFilter string          `json:"file_filter_glob,omitempty" yaml:"file_filter_glob,omitempty" toml:"file_filter_glob,omitempty"`
	Fallback   *FallbackConfig `json:"fallback,omitempty" yaml:"fallback,omitempty" toml:"fallback,omitempty"`
}

// FallbackConfig declares the coarser matcher tried when the pattern misses.
type FallbackConfig struct {
	Kind      string   `json:"kind" yaml:"kind" toml:"kind"`
	Old       string   `json:"old,omitempty" yaml:"old,omitempty" toml:"old,omitempty"`
	New       string   `json:"new,omitempty" yaml:"new,omitempty" toml:"new,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty" toml:"pattern,omitempty"`
	Replace   string   `json:"replace,omitempty" yaml:"replace,omitempty" toml:"replace,omitempty"`
	Fields    []string `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
	Forms     []string `json:"forms,omitempty" yaml:"forms,omitempty" toml:"forms,omitempty"`
	Fragments []string `json:"fragments,omitempty" yaml:"fragments,omitempty" toml:"fragments,omitempty"`
}

// ✅ CheckConfig declares one checklist item.
type CheckConfig struct {
	Label    string `json:"label" yaml:"label" toml:"label"`
	Fragment string `json:"fragment" yaml:"fragment" toml:"fragment"`
	Expect   string `json:"expect,omitempty" yaml:"expect,omitempty" toml:"expect,omitempty"`
	Rule     string `json:"rule,omitempty" yaml:"rule,omitempty" toml:"rule,omitempty"`
}

// Location is the file the rule set was loaded from.
func (rs *RuleSet) Location() string {
	return rs.location
}

// 🎯 Load loads a rule set from a file. The format is picked by extension:
// .hcl, .yaml/.yml, .json or .toml. A .formfix file may be YAML or HCL.
func Load(ctx context.Context, path string) (*RuleSet, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading rule set")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading rule set file: %w", err)
	}

	var rs *RuleSet
	if strings.EqualFold(filepath.Ext(path), ".formfix") {
		rs, err = parseAny(ctx, data, path, "rules.yaml", "rules.hcl")
	} else {
		p := GetParser(path)
		if p == nil {
			return nil, errors.Errorf("unsupported file extension %q", filepath.Ext(path))
		}
		rs, err = p.Parse(ctx, data, path)
	}
	if err != nil {
		return nil, errors.Errorf("parsing rule set: %w", err)
	}

	rs.location = path
	if err := rs.Validate(); err != nil {
		return nil, errors.Errorf("validating rule set: %w", err)
	}

	logger.Debug().Str("path", path).Int("rules", len(rs.Rules)).Int("checks", len(rs.Checks)).Msg("loaded rule set")
	return rs, nil
}

// parseAny tries the parsers for each candidate filename in order.
func parseAny(ctx context.Context, data []byte, path string, candidates ...string) (*RuleSet, error) {
	var errs []error
	for _, candidate := range candidates {
		rs, err := GetParser(candidate).Parse(ctx, data, path)
		if err == nil {
			return rs, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Errorf("no format matched: %w", errors.Join(errs...))
}

// 🔍 Validate checks declarations that do not need compiling
func (rs *RuleSet) Validate() error {
	if len(rs.Rules) == 0 {
		return errors.Errorf("at least one rule is required")
	}

	for i, r := range rs.Rules {
		if r.Name == "" {
			return errors.Errorf("rule %d: name is required", i)
		}
		switch r.Kind {
		case "", KindPattern:
			if r.Pattern == "" {
				return errors.Errorf("rule %q: pattern is required", r.Name)
			}
		case KindLineFilter:
			if len(r.Fields) == 0 && len(r.Fragments) == 0 {
				return errors.Errorf("rule %q: fields or fragments are required", r.Name)
			}
			if r.Fallback != nil {
				return errors.Errorf("rule %q: line filter rules take no fallback", r.Name)
			}
		default:
			return errors.Errorf("rule %q: unknown kind %q", r.Name, r.Kind)
		}

		if r.Fallback != nil {
			if err := r.Fallback.validate(); err != nil {
				return errors.Errorf("rule %q: fallback: %w", r.Name, err)
			}
		}
	}

	for i, c := range rs.Checks {
		switch c.Expect {
		case "", ExpectPresent, ExpectAbsent:
		default:
			return errors.Errorf("check %d: expect must be %q or %q, got %q", i, ExpectPresent, ExpectAbsent, c.Expect)
		}
	}

	return nil
}

func (f *FallbackConfig) validate() error {
	switch f.Kind {
	case FallbackLiteral:
		if f.Old == "" {
			return errors.Errorf("literal fallback needs old")
		}
	case FallbackRegex:
		if f.Pattern == "" {
			return errors.Errorf("regex fallback needs pattern")
		}
	case FallbackLineFilter:
		if len(f.Fields) == 0 && len(f.Fragments) == 0 {
			return errors.Errorf("line filter fallback needs fields or fragments")
		}
	default:
		return errors.Errorf("unknown kind %q", f.Kind)
	}
	return nil
}
