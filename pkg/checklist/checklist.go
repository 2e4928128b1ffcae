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

// Package checklist evaluates presence and absence checks against a migrated document.
package checklist

import (
	"github.com/kwanter/formfix/pkg/document"
	"gitlab.com/tozd/go/errors"
)

// ✅ Item asserts that Fragment is present (or absent) in the final document.
// Rule optionally names the rule expected to have produced this state.
type Item struct {
	Label         string `json:"label"`
	Fragment      string `json:"fragment"`
	ExpectPresent bool   `json:"expect_present"`
	Rule          string `json:"rule,omitempty"`
}

// Present builds an item that requires fragment to appear.
func Present(label, fragment string) Item {
	return Item{Label: label, Fragment: fragment, ExpectPresent: true}
}

// Absent builds an item that requires fragment not to appear.
func Absent(label, fragment string) Item {
	return Item{Label: label, Fragment: fragment}
}

// ForRule links the item to the rule that should have produced it.
func (i Item) ForRule(name string) Item {
	i.Rule = name
	return i
}

// 📝 Result is one evaluated item
type Result struct {
	Item   Item `json:"item"`
	Found  bool `json:"found"`
	Passed bool `json:"passed"`
}

// Check evaluates a single item.
func (i Item) Check(doc document.Document) Result {
	found := doc.Contains(i.Fragment)
	return Result{Item: i, Found: found, Passed: found == i.ExpectPresent}
}

// 🔍 Evaluate checks every item against doc. Items are independent, so the
// result for an item does not depend on its position.
func Evaluate(doc document.Document, items []Item) []Result {
	results := make([]Result, 0, len(items))
	for _, item := range items {
		results = append(results, item.Check(doc))
	}
	return results
}

// AllPassed is the AND over results.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// Validate rejects items without a label or fragment and duplicate labels.
func Validate(items []Item) error {
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		if item.Label == "" {
			return errors.Errorf("check %d: label is required", i)
		}
		if item.Fragment == "" {
			return errors.Errorf("check %q: fragment is required", item.Label)
		}
		if seen[item.Label] {
			return errors.Errorf("check %q: duplicate label", item.Label)
		}
		seen[item.Label] = true
	}
	return nil
}
