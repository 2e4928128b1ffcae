package operation

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kwanter/formfix/pkg/document"
	"github.com/kwanter/formfix/pkg/store"
	"github.com/kwanter/formfix/pkg/store/github"
	"gitlab.com/tozd/go/errors"
)

// 🔀 MultiSource sends github: references to Remote and everything else to Local.
type MultiSource struct {
	Local  Source
	Remote *github.Source
}

func (m *MultiSource) Read(ctx context.Context, identity string) (document.Document, error) {
	if github.IsRef(identity) {
		if m.Remote == nil {
			return document.Document{}, errors.Errorf("no github source configured for %s", identity)
		}
		return m.Remote.Read(ctx, identity)
	}
	return m.Local.Read(ctx, identity)
}

// 🎯 ExpandTargets resolves doublestar patterns, local or github:, into
// document identities. Relative local patterns are matched under baseDir and
// returned relative to it. Plain paths pass through unchanged so a missing
// file is reported by the read that follows. Duplicates are dropped, and so
// are backups and temp files a pattern happens to match.
func ExpandTargets(ctx context.Context, baseDir string, remote *github.Source, targets []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(ids ...string) {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}

	for _, target := range targets {
		if github.IsRef(target) {
			ref, err := github.ParseRef(target)
			if err != nil {
				return nil, err
			}
			if !hasMeta(ref.Path) {
				add(target)
				continue
			}
			if remote == nil {
				return nil, errors.Errorf("no github source configured for %s", target)
			}
			matches, err := remote.Glob(ctx, ref)
			if err != nil {
				return nil, errors.Errorf("expanding %s: %w", target, err)
			}
			matches = withoutArtifacts(matches)
			if len(matches) == 0 {
				return nil, errors.Errorf("%w: no files match %s", store.ErrSourceNotFound, target)
			}
			add(matches...)
			continue
		}

		if !hasMeta(target) {
			add(target)
			continue
		}
		matches, err := globLocal(baseDir, target)
		if err != nil {
			return nil, errors.Errorf("expanding %s: %w", target, err)
		}
		matches = withoutArtifacts(matches)
		if len(matches) == 0 {
			return nil, errors.Errorf("%w: no files match %s", store.ErrSourceNotFound, target)
		}
		add(matches...)
	}
	return out, nil
}

func globLocal(baseDir, pattern string) ([]string, error) {
	if filepath.IsAbs(pattern) || baseDir == "" {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		sort.Strings(matches)
		return matches, err
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(baseDir, pattern), doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	for i, m := range matches {
		rel, err := filepath.Rel(baseDir, m)
		if err != nil {
			return nil, err
		}
		matches[i] = rel
	}
	sort.Strings(matches)
	return matches, nil
}

func withoutArtifacts(paths []string) []string {
	kept := paths[:0]
	for _, p := range paths {
		if !store.IsArtifact(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

func hasMeta(path string) bool {
	for _, c := range path {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
