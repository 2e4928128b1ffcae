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

package operation

import (
	"context"

	"github.com/kwanter/formfix/pkg/backup"
	"github.com/kwanter/formfix/pkg/checklist"
	"github.com/kwanter/formfix/pkg/diff"
	"github.com/kwanter/formfix/pkg/document"
	"github.com/kwanter/formfix/pkg/pipeline"
	"github.com/kwanter/formfix/pkg/report"
	"github.com/kwanter/formfix/pkg/rule"
	"github.com/kwanter/formfix/pkg/store"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📖 Source reads whole documents
type Source interface {
	Read(ctx context.Context, identity string) (document.Document, error)
}

// 💾 Store is the file system boundary of a migration
type Store interface {
	Source
	Write(ctx context.Context, doc document.Document) error
	BackupExists(ctx context.Context, identity string) (bool, error)
	WriteBackup(ctx context.Context, doc document.Document) error
}

// State is a step of the migration lifecycle.
type State string

const (
	StateStart                 State = "start"
	StateBackedUp              State = "backed_up"
	StateTransformed           State = "transformed"
	StateVerified              State = "verified"
	StatePersisted             State = "persisted"
	StateCompleted             State = "completed"
	StateCompletedWithWarnings State = "completed_with_warnings"
	StateMissingSource         State = "missing_source"
)

// 🔧 Options contains configuration for the operator
type Options struct {
	// Store reads, backs up and writes documents
	Store Store
	// Rules are applied in order
	Rules []rule.Rule
	// Checklist is evaluated after the rules
	Checklist []checklist.Item
	// OnTransition, when set, is called as each state is entered
	OnTransition func(identity string, state State)
}

// 🎮 Operator runs migrations
type Operator struct {
	store        Store
	pipeline     *pipeline.Pipeline
	checklist    []checklist.Item
	onTransition func(identity string, state State)
}

// 🏭 New creates a new operator with the given options. Rule names and
// checklist items are validated here, before any document is read.
func New(opts Options) (*Operator, error) {
	if opts.Store == nil {
		return nil, errors.Errorf("store is required")
	}
	p, err := pipeline.New(opts.Rules...)
	if err != nil {
		return nil, err
	}
	if err := checklist.Validate(opts.Checklist); err != nil {
		return nil, errors.Errorf("validating checklist: %w", err)
	}
	return &Operator{
		store:        opts.Store,
		pipeline:     p,
		checklist:    append([]checklist.Item(nil), opts.Checklist...),
		onTransition: opts.OnTransition,
	}, nil
}

func (o *Operator) enter(ctx context.Context, identity string, state State) {
	zerolog.Ctx(ctx).Debug().Str("document", identity).Str("state", string(state)).Msg("entering state")
	if o.onTransition != nil {
		o.onTransition(identity, state)
	}
}

func (o *Operator) read(ctx context.Context, identity string) (document.Document, error) {
	o.enter(ctx, identity, StateStart)
	doc, err := o.store.Read(ctx, identity)
	if err != nil {
		if errors.Is(err, store.ErrSourceNotFound) {
			o.enter(ctx, identity, StateMissingSource)
		}
		return document.Document{}, errors.Errorf("reading %s: %w", identity, err)
	}
	return doc, nil
}

// 🏃 Migrate backs up, transforms, verifies and persists one document. The
// document is written even when checks fail; only a missing source or an
// I/O failure returns an error.
func (o *Operator) Migrate(ctx context.Context, identity string) (*report.RunReport, error) {
	original, err := o.read(ctx, identity)
	if err != nil {
		return nil, err
	}

	created, err := backup.Ensure(ctx, original, o.store.BackupExists, o.store.WriteBackup)
	if err != nil {
		return nil, err
	}
	backupState := report.BackupKept
	if created {
		backupState = report.BackupCreated
	}
	o.enter(ctx, identity, StateBackedUp)

	final, outcomes := o.pipeline.Run(ctx, original)
	o.enter(ctx, identity, StateTransformed)

	results := checklist.Evaluate(final, o.checklist)
	o.enter(ctx, identity, StateVerified)

	if err := o.store.Write(ctx, final); err != nil {
		return nil, errors.Errorf("writing %s: %w", identity, err)
	}
	o.enter(ctx, identity, StatePersisted)

	r := report.Build(report.Params{
		Document:  identity,
		Mode:      report.ModeRun,
		Backup:    backupState,
		Outcomes:  outcomes,
		Checks:    results,
		Changed:   !final.Equal(original),
		Persisted: true,
	})
	o.finish(ctx, identity, r)
	return r, nil
}

// 🔎 Plan runs the rules and checks without writing anything and returns the
// diff the migration would produce.
func (o *Operator) Plan(ctx context.Context, identity string) (*report.RunReport, *diff.FileDiff, error) {
	original, err := o.read(ctx, identity)
	if err != nil {
		return nil, nil, err
	}

	final, outcomes := o.pipeline.Run(ctx, original)
	o.enter(ctx, identity, StateTransformed)

	results := checklist.Evaluate(final, o.checklist)
	o.enter(ctx, identity, StateVerified)

	r := report.Build(report.Params{
		Document: identity,
		Mode:     report.ModePlan,
		Backup:   report.BackupNone,
		Outcomes: outcomes,
		Checks:   results,
		Changed:  !final.Equal(original),
	})
	d := diff.Compute(identity, identity+" (migrated)", original.Text(), final.Text(), diff.DefaultContext)
	o.finish(ctx, identity, r)
	return r, d, nil
}

func (o *Operator) finish(ctx context.Context, identity string, r *report.RunReport) {
	if r.AllPassed() {
		o.enter(ctx, identity, StateCompleted)
		return
	}
	o.enter(ctx, identity, StateCompletedWithWarnings)
}
