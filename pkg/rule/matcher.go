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

package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kwanter/formfix/pkg/document"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Matcher finds a span of a document and rewrites it. The returned count is
// zero when nothing matched, in which case the document is returned unchanged.
type Matcher interface {
	Replace(doc document.Document) (document.Document, int)
	Describe() string
}

// 🔍 Regex matches an RE2 pattern and expands a template that may reference
// capture groups as ${1}. A literal dollar sign in the template is written $$.
type Regex struct {
	re       *regexp.Regexp
	template string
}

// 🏭 NewRegex compiles pattern
func NewRegex(pattern, template string) (*Regex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Errorf("compiling pattern %q: %w", pattern, err)
	}
	return &Regex{re: re, template: template}, nil
}

// MustRegex is NewRegex for patterns known at compile time.
func MustRegex(pattern, template string) *Regex {
	m, err := NewRegex(pattern, template)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Regex) Replace(doc document.Document) (document.Document, int) {
	matches := m.re.FindAllStringIndex(doc.Text(), -1)
	if len(matches) == 0 {
		return doc, 0
	}
	tmpl := withTerminator(m.template, doc.Terminator())
	return doc.WithText(m.re.ReplaceAllString(doc.Text(), tmpl)), len(matches)
}

func (m *Regex) Describe() string {
	return fmt.Sprintf("regex %s", m.re.String())
}

// 📋 Literal replaces an exact block of text. Blocks are written with "\n" and
// adapted to the document's terminator before matching.
type Literal struct {
	old string
	new string
}

// 🏭 NewLiteral creates a literal block matcher
func NewLiteral(old, new string) (*Literal, error) {
	if old == "" {
		return nil, errors.Errorf("literal block must not be empty")
	}
	return &Literal{old: old, new: new}, nil
}

// MustLiteral is NewLiteral for blocks known at compile time.
func MustLiteral(old, new string) *Literal {
	m, err := NewLiteral(old, new)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Literal) Replace(doc document.Document) (document.Document, int) {
	old := withTerminator(m.old, doc.Terminator())
	count := strings.Count(doc.Text(), old)
	if count == 0 {
		return doc, 0
	}
	return doc.WithText(strings.ReplaceAll(doc.Text(), old, withTerminator(m.new, doc.Terminator()))), count
}

func (m *Literal) Describe() string {
	first, _, _ := strings.Cut(m.old, "\n")
	return fmt.Sprintf("literal block %q", strings.TrimSpace(first))
}

// ✂️ LineFilter drops every line containing one of its fragments.
type LineFilter struct {
	fragments []string
}

// 🏭 NewLineFilter creates a line filter over exact fragments
func NewLineFilter(fragments ...string) (*LineFilter, error) {
	if len(fragments) == 0 {
		return nil, errors.Errorf("line filter needs at least one fragment")
	}
	for i, f := range fragments {
		if f == "" {
			return nil, errors.Errorf("fragment %d: must not be empty", i)
		}
	}
	return &LineFilter{fragments: append([]string(nil), fragments...)}, nil
}

// MustLineFilter is NewLineFilter for fragments known at compile time.
func MustLineFilter(fragments ...string) *LineFilter {
	m, err := NewLineFilter(fragments...)
	if err != nil {
		panic(err)
	}
	return m
}

// Keep reports whether line survives the filter.
func (m *LineFilter) Keep(line string) bool {
	for _, f := range m.fragments {
		if strings.Contains(line, f) {
			return false
		}
	}
	return true
}

func (m *LineFilter) Replace(doc document.Document) (document.Document, int) {
	lines := doc.Lines()
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if m.Keep(line) {
			kept = append(kept, line)
		}
	}
	dropped := len(lines) - len(kept)
	if dropped == 0 {
		return doc, 0
	}
	return doc.JoinLines(kept), dropped
}

func (m *LineFilter) Describe() string {
	return fmt.Sprintf("line filter %s", strings.Join(m.fragments, ", "))
}

// Fragments returns a copy of the filter's fragments.
func (m *LineFilter) Fragments() []string {
	return append([]string(nil), m.fragments...)
}

func withTerminator(s, term string) string {
	if term == document.LF {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, document.CRLF, document.LF), document.LF, term)
}
