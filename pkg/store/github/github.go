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

// Package github reads documents straight from a GitHub repository so they
// can be verified without a checkout. It never writes.
package github

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/go-github/v60/github"
	"github.com/kwanter/formfix/pkg/document"
	"github.com/kwanter/formfix/pkg/store"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Scheme prefixes remote document references.
const Scheme = "github:"

// 📍 Ref points at a path in a repository: github:owner/repo@ref:path.
// An empty Ref means the default branch.
type Ref struct {
	Owner string
	Repo  string
	Ref   string
	Path  string
}

// IsRef reports whether s uses the github: scheme.
func IsRef(s string) bool {
	return strings.HasPrefix(s, Scheme)
}

// 🔍 ParseRef parses github:owner/repo[@ref]:path
func ParseRef(s string) (Ref, error) {
	rest, ok := strings.CutPrefix(s, Scheme)
	if !ok {
		return Ref{}, errors.Errorf("reference %q: missing %q prefix", s, Scheme)
	}

	repoPart, path, ok := strings.Cut(rest, ":")
	if !ok || path == "" {
		return Ref{}, errors.Errorf("reference %q: missing path", s)
	}

	repoPart, gitRef, _ := strings.Cut(repoPart, "@")
	owner, repo, ok := strings.Cut(repoPart, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return Ref{}, errors.Errorf("reference %q: repository must be owner/repo", s)
	}

	return Ref{Owner: owner, Repo: repo, Ref: gitRef, Path: strings.TrimPrefix(path, "/")}, nil
}

func (r Ref) String() string {
	if r.Ref == "" {
		return fmt.Sprintf("%s%s/%s:%s", Scheme, r.Owner, r.Repo, r.Path)
	}
	return fmt.Sprintf("%s%s/%s@%s:%s", Scheme, r.Owner, r.Repo, r.Ref, r.Path)
}

// WithPath returns a copy of r pointing at path.
func (r Ref) WithPath(path string) Ref {
	r.Path = path
	return r
}

// 🐙 Source reads documents through the GitHub contents API
type Source struct {
	client *github.Client
}

// 🏭 New creates a source. token may be empty for public repositories.
func New(token string) *Source {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &Source{client: client}
}

// NewFromEnv creates a source authenticated with GITHUB_TOKEN when it is set.
func NewFromEnv() *Source {
	return New(os.Getenv("GITHUB_TOKEN"))
}

// NewWithClient wraps an existing client.
func NewWithClient(client *github.Client) *Source {
	return &Source{client: client}
}

// 📖 Read fetches the document named by a github: reference
func (s *Source) Read(ctx context.Context, identity string) (document.Document, error) {
	ref, err := ParseRef(identity)
	if err != nil {
		return document.Document{}, err
	}

	zerolog.Ctx(ctx).Debug().Str("reference", ref.String()).Msg("fetching document from github")

	var opts *github.RepositoryContentGetOptions
	if ref.Ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref.Ref}
	}

	file, _, _, err := s.client.Repositories.GetContents(ctx, ref.Owner, ref.Repo, ref.Path, opts)
	if err != nil {
		if isNotFound(err) {
			return document.Document{}, errors.Errorf("%w: %s", store.ErrSourceNotFound, ref)
		}
		return document.Document{}, errors.Errorf("getting file content: %w", err)
	}
	if file == nil {
		return document.Document{}, errors.Errorf("reference %s is a directory", ref)
	}

	content, err := file.GetContent()
	if err != nil {
		return document.Document{}, errors.Errorf("decoding content: %w", err)
	}

	return document.New(identity, content), nil
}

// 📋 Glob lists blobs under ref whose repository path matches ref.Path as a
// doublestar pattern. Results are sorted full references.
func (s *Source) Glob(ctx context.Context, ref Ref) ([]string, error) {
	if !doublestar.ValidatePattern(ref.Path) {
		return nil, errors.Errorf("invalid pattern %q", ref.Path)
	}

	sha := ref.Ref
	if sha == "" {
		sha = "HEAD"
	}

	tree, _, err := s.client.Git.GetTree(ctx, ref.Owner, ref.Repo, sha, true)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Errorf("%w: %s", store.ErrSourceNotFound, ref)
		}
		return nil, errors.Errorf("getting repository tree: %w", err)
	}
	if tree.GetTruncated() {
		zerolog.Ctx(ctx).Warn().Str("reference", ref.String()).Msg("repository tree truncated, some files may be missing")
	}

	var matches []string
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		if ok, _ := doublestar.Match(ref.Path, entry.GetPath()); ok {
			matches = append(matches, ref.WithPath(entry.GetPath()).String())
		}
	}
	sort.Strings(matches)
	return matches, nil
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
