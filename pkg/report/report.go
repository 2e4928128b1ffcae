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

// Package report aggregates rule outcomes and checklist results into a run report.
package report

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/kwanter/formfix/pkg/checklist"
	"github.com/kwanter/formfix/pkg/rule"
	"gitlab.com/tozd/go/errors"
)

// Exit codes returned by the CLI.
const (
	ExitOK       = 0
	ExitWarnings = 1
	ExitFatal    = 2
)

// Status is the overall verdict of a run.
type Status string

const (
	StatusCompleted             Status = "completed"
	StatusCompletedWithWarnings Status = "completed with warnings"
)

// BackupState records what the backup guard did.
type BackupState string

const (
	BackupCreated BackupState = "created"
	BackupKept    BackupState = "kept"
	BackupNone    BackupState = "none"
)

// Mode is the kind of run that produced the report.
type Mode string

const (
	ModeRun    Mode = "run"
	ModePlan   Mode = "plan"
	ModeVerify Mode = "verify"
)

// 📊 RunReport is the immutable result of one document run
type RunReport struct {
	ID           uuid.UUID          `json:"id"`
	Document     string             `json:"document"`
	Mode         Mode               `json:"mode"`
	Backup       BackupState        `json:"backup"`
	Outcomes     []rule.Outcome     `json:"outcomes"`
	Checks       []checklist.Result `json:"checks"`
	Passed       int                `json:"passed"`
	Failed       int                `json:"failed"`
	Status       Status             `json:"status"`
	Unattributed []string           `json:"unattributed,omitempty"`
	Changed      bool               `json:"changed"`
	Persisted    bool               `json:"persisted"`
}

// Params carries everything Build needs.
type Params struct {
	Document  string
	Mode      Mode
	Backup    BackupState
	Outcomes  []rule.Outcome
	Checks    []checklist.Result
	Changed   bool
	Persisted bool
}

// 🏗️ Build aggregates outcomes and checks into a report
func Build(p Params) *RunReport {
	r := &RunReport{
		ID:        uuid.New(),
		Document:  p.Document,
		Mode:      p.Mode,
		Backup:    p.Backup,
		Outcomes:  append([]rule.Outcome(nil), p.Outcomes...),
		Checks:    append([]checklist.Result(nil), p.Checks...),
		Changed:   p.Changed,
		Persisted: p.Persisted,
	}
	if r.Backup == "" {
		r.Backup = BackupNone
	}

	for _, c := range r.Checks {
		if c.Passed {
			r.Passed++
		} else {
			r.Failed++
		}
	}

	r.Status = StatusCompleted
	if r.Failed > 0 {
		r.Status = StatusCompletedWithWarnings
	}

	r.Unattributed = unattributed(r.Outcomes, r.Checks)
	return r
}

// unattributed lists passing checks whose linked rule did not apply in this
// run. They describe a state the document already had.
func unattributed(outcomes []rule.Outcome, checks []checklist.Result) []string {
	applied := make(map[string]bool, len(outcomes))
	for _, o := range outcomes {
		applied[o.RuleName] = o.Applied
	}

	var labels []string
	for _, c := range checks {
		if c.Item.Rule == "" || !c.Passed {
			continue
		}
		if !applied[c.Item.Rule] {
			labels = append(labels, c.Item.Label)
		}
	}
	return labels
}

// AllPassed reports whether every checklist item passed.
func (r *RunReport) AllPassed() bool {
	return r.Failed == 0
}

// Applied counts rules that changed the document.
func (r *RunReport) Applied() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Applied {
			n++
		}
	}
	return n
}

// ExitCode maps the report to a process exit status.
func (r *RunReport) ExitCode() int {
	if r.AllPassed() {
		return ExitOK
	}
	return ExitWarnings
}

// ExitCodeFor returns the worst exit code across reports.
func ExitCodeFor(reports []*RunReport) int {
	code := ExitOK
	for _, r := range reports {
		if c := r.ExitCode(); c > code {
			code = c
		}
	}
	return code
}

// 📦 JSON encodes reports for scripting
func JSON(reports []*RunReport) ([]byte, error) {
	out, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return nil, errors.Errorf("encoding report: %w", err)
	}
	return out, nil
}
