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

// Package sakip holds the builtin phase 1 migration for the SAKIP indicator
// create form: category values move from iku/ikk/ikt/iks to
// input/output/outcome/impact and fields missing from the database schema are
// removed.
package sakip

import (
	"fmt"
	"strings"

	"github.com/kwanter/formfix/pkg/checklist"
	"github.com/kwanter/formfix/pkg/rule"
)

// Name identifies this rule set on the command line.
const Name = "sakip"

// DefaultTarget is the form this rule set was written for.
const DefaultTarget = "resources/views/sakip/indicators/create.blade.php"

const (
	optionIndent = "                                    "
	labelIndent  = "                                        "
	entryIndent  = "        "
)

type category struct {
	value       string
	label       string
	description string
}

var oldCategories = []category{
	{"iku", "IKU (Indikator Kinerja Utama)", "Indikator Kinerja Utama: Mengukur hasil utama dari unit kerja"},
	{"ikk", "IKK (Indikator Kinerja Kegiatan)", "Indikator Kinerja Kegiatan: Mengukur hasil dari kegiatan tertentu"},
	{"ikt", "IKT (Indikator Kinerja Turunan)", "Indikator Kinerja Turunan: Indikator yang diturunkan dari IKU"},
	{"iks", "IKS (Indikator Kinerja Strategis)", "Indikator Kinerja Strategis: Mengukur pencapaian strategis organisasi"},
}

var newCategories = []category{
	{"input", "Input", "Input: Sumber daya yang digunakan untuk menghasilkan output"},
	{"output", "Output", "Output: Hasil langsung dari kegiatan/program"},
	{"outcome", "Outcome", "Outcome: Dampak jangka menengah dari program"},
	{"impact", "Impact", "Impact: Dampak jangka panjang bagi masyarakat"},
}

// options renders the <option> list of the category select.
func options(cats []category) string {
	blocks := make([]string, 0, len(cats))
	for _, c := range cats {
		blocks = append(blocks, fmt.Sprintf("%s<option value=%q {{ old('category') == '%s' ? 'selected' : '' }}>\n%s%s\n%s</option>",
			optionIndent, c.value, c.value, labelIndent, c.label, optionIndent))
	}
	return strings.Join(blocks, "\n")
}

// descriptions renders the entries of the updateCategoryDescription lookup
// object, each preceded by a newline.
func descriptions(cats []category) string {
	entries := make([]string, 0, len(cats))
	for _, c := range cats {
		entries = append(entries, fmt.Sprintf("\n%s'%s': '%s'", entryIndent, c.value, c.description))
	}
	return strings.Join(entries, ",")
}

// formGroup matches a whole <div class="mb-3"> group whose label targets
// field, through its @enderror and closing </div>, plus one trailing blank line.
func formGroup(field string) string {
	return `(?s)[ \t]*<div class="mb-3">\s*<label for="` + field + `"[^>]*>.*?@enderror\s*</div>[ \t]*\r?\n(?:[ \t]*\r?\n)?`
}

func lineFilterRule(name string, fields []string, forms ...rule.Form) rule.Rule {
	return rule.NewLineFilterRule(name, rule.MustLineFilter(rule.FieldFragments(fields, forms...)...))
}

// 📜 Rules returns the ordered phase 1 rules. Later rules assume the earlier
// ones ran: the line filters sweep whatever the structural rules left.
func Rules() []rule.Rule {
	return []rule.Rule{
		rule.NewPatternRule("category-options",
			rule.MustRegex(`(?s)(<select[^>]*\bid="category"[^>]*>\s*<option value="">Pilih Kategori</option>)\s*<option value="iku".*?(\s*</select>)`,
				"${1}\n"+options(newCategories)+"${2}"),
			rule.MustLiteral(options(oldCategories), options(newCategories)),
		),
		rule.NewPatternRule("remove-department-field",
			rule.MustRegex(formGroup("department_id"), ""),
			rule.MustLineFilter(rule.FieldFragments([]string{"department_id"}, rule.FormID, rule.FormName, rule.FormFor)...),
		),
		rule.NewPatternRule("remove-year-field",
			rule.MustRegex(formGroup("year"), ""),
			rule.MustLineFilter(rule.FieldFragments([]string{"year"}, rule.FormID, rule.FormName, rule.FormFor)...),
		),
		rule.NewPatternRule("remove-strategic-linkage",
			rule.MustRegex(`(?s)[ \t]*<div class="card">\s*<div class="card-header">\s*<h5[^>]*>\s*<i class="fas fa-link"></i> Keterkaitan dengan Tujuan Strategis`+
				`.*?@error\('program_id'\).*?@enderror\s*</div>\s*</div>\s*</div>\s*</div>\s*</div>[ \t]*\r?\n(?:[ \t]*\r?\n)?`, ""),
			nil,
		),
		rule.NewPatternRule("rename-calculation-method",
			rule.MustRegex(`((?:\bid|\bname|\bfor)="|getElementById\('|@error\('|old\(')calculation_method(["'])`, "${1}calculation_formula${2}"),
			nil,
		),
		lineFilterRule("remove-target-fields",
			[]string{"target_value", "target_type", "target_direction", "baseline_value", "baseline_year"},
			rule.FormID, rule.FormName, rule.FormQuoted),
		lineFilterRule("remove-validation-fields",
			[]string{"validation_frequency", "responsible_person"},
			rule.FormID, rule.FormName, rule.FormQuoted),
		lineFilterRule("remove-formula-fields",
			[]string{"numerator", "denominator"}),
		rule.NewPatternRule("category-descriptions",
			rule.MustRegex(`(?s)(function updateCategoryDescription\(\) \{.*?const descriptions = \{)\s*'iku':.*?(\r?\n[ \t]*\};)`,
				"${1}"+descriptions(newCategories)+"${2}"),
			rule.MustLiteral(descriptions(oldCategories), descriptions(newCategories)),
		),
		rule.NewPatternRule("remove-update-target-fields",
			rule.MustRegex(`(?s)// Update target fields\s*function updateTargetFields\(\) \{.*?\n\}[ \t]*\r?\n(?:[ \t]*\r?\n)?`, ""),
			nil,
		),
		rule.NewPatternRule("strip-update-target-fields-handler",
			rule.MustRegex(`[ \t]*onchange="updateTargetFields\(\)"`, ""),
			nil,
		),
	}
}

// ✅ Checklist returns the post-conditions of the phase 1 migration.
func Checklist() []checklist.Item {
	items := make([]checklist.Item, 0, 17)
	for _, c := range newCategories {
		items = append(items, checklist.Present("category "+c.value, fmt.Sprintf("value=%q", c.value)).ForRule("category-options"))
	}
	items = append(items,
		checklist.Present("field calculation_formula", `name="calculation_formula"`).ForRule("rename-calculation-method"),
		checklist.Present("field data_source", `name="data_source"`),
		checklist.Absent("removed department_id", `name="department_id"`).ForRule("remove-department-field"),
		checklist.Absent("removed year", `name="year"`).ForRule("remove-year-field"),
		checklist.Absent("removed target_value", `name="target_value"`).ForRule("remove-target-fields"),
		checklist.Absent("removed sasaran_strategis_id", `name="sasaran_strategis_id"`),
		checklist.Absent("removed validation_frequency", `name="validation_frequency"`).ForRule("remove-validation-fields"),
		checklist.Absent("removed numerator", `name="numerator"`).ForRule("remove-formula-fields"),
		checklist.Absent("removed updateTargetFields", "function updateTargetFields").ForRule("remove-update-target-fields"),
	)
	for _, c := range oldCategories {
		items = append(items, checklist.Absent("old category "+c.value, fmt.Sprintf("value=%q", c.value)).ForRule("category-options"))
	}
	return items
}
