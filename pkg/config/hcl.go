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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

type hclRuleSet struct {
	Name   *string    `hcl:"name,optional"`
	Rules  []hclRule  `hcl:"rule,block"`
	Checks []hclCheck `hcl:"check,block"`
}

type hclRule struct {
	Name       string       `hcl:"name,label"`
	Kind       *string      `hcl:"kind,optional"`
	Pattern    *string      `hcl:"pattern,optional"`
	Replace    *string      `hcl:"replace,optional"`
	Fields     []string     `hcl:"fields,optional"`
	Forms      []string     `hcl:"forms,optional"`
	Fragments  []string     `hcl:"fragments,optional"`
	FileFilter *string      `hcl:"file_filter_glob,optional"`
	Fallback   *hclFallback `hcl:"fallback,block"`
}

type hclFallback struct {
	Kind      string   `hcl:"kind"`
	Old       *string  `hcl:"old,optional"`
	New       *string  `hcl:"new,optional"`
	Pattern   *string  `hcl:"pattern,optional"`
	Replace   *string  `hcl:"replace,optional"`
	Fields    []string `hcl:"fields,optional"`
	Forms     []string `hcl:"forms,optional"`
	Fragments []string `hcl:"fragments,optional"`
}

type hclCheck struct {
	Label    string  `hcl:"label,label"`
	Fragment string  `hcl:"fragment"`
	Expect   *string `hcl:"expect,optional"`
	Rule     *string `hcl:"rule,optional"`
}

// 📝 Parse parses the rule set from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte, filename string) (*RuleSet, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	var raw hclRuleSet
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &raw)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	rs := &RuleSet{Name: deref(raw.Name)}
	for _, r := range raw.Rules {
		rc := RuleConfig{
			Name:       r.Name,
			Kind:       deref(r.Kind),
			Pattern:    deref(r.Pattern),
			Replace:    deref(r.Replace),
			Fields:     r.Fields,
			Forms:      r.Forms,
			Fragments:  r.Fragments,
			FileFilter: deref(r.FileFilter),
		}
		if r.Fallback != nil {
			rc.Fallback = &FallbackConfig{
				Kind:      r.Fallback.Kind,
				Old:       deref(r.Fallback.Old),
				New:       deref(r.Fallback.New),
				Pattern:   deref(r.Fallback.Pattern),
				Replace:   deref(r.Fallback.Replace),
				Fields:    r.Fallback.Fields,
				Forms:     r.Fallback.Forms,
				Fragments: r.Fallback.Fragments,
			}
		}
		rs.Rules = append(rs.Rules, rc)
	}
	for _, c := range raw.Checks {
		rs.Checks = append(rs.Checks, CheckConfig{
			Label:    c.Label,
			Fragment: c.Fragment,
			Expect:   deref(c.Expect),
			Rule:     deref(c.Rule),
		})
	}

	return rs, nil
}

// evalContext exposes the environment as env.NAME.
func evalContext() *hcl.EvalContext {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !hclsyntaxIdent(k) {
			continue
		}
		vars[k] = cty.StringVal(v)
	}

	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": env,
		},
	}
}

// hclsyntaxIdent reports whether s can be used as an attribute name.
func hclsyntaxIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case i > 0 && (c >= '0' && c <= '9' || c == '-'):
		default:
			return false
		}
	}
	return true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
