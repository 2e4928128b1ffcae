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

package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/kwanter/formfix/pkg/document"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// BackupSuffix is appended to a document's path to name its backup.
const BackupSuffix = ".backup"

// tempInfix marks the hidden sibling used while a file is written atomically.
const tempInfix = ".tmp-"

// 🧹 IsArtifact reports whether path is a backup or an in-flight temp file
// written by a store rather than a document to migrate.
func IsArtifact(path string) bool {
	if strings.HasSuffix(path, BackupSuffix) {
		return true
	}
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && strings.Contains(base, tempInfix)
}

// ErrSourceNotFound is returned when the document to migrate does not exist.
var ErrSourceNotFound = errors.Base("source not found")

// 💾 FileStore reads and writes documents on the local file system. Relative
// identities are resolved against BaseDir.
type FileStore struct {
	baseDir string
}

// 🏭 NewFileStore creates a store rooted at baseDir ("" means the working directory)
func NewFileStore(baseDir string) *FileStore {
	if baseDir != "" {
		baseDir = filepath.Clean(baseDir)
	}
	return &FileStore{baseDir: baseDir}
}

// 🔒 absPath returns the path for an identity
func (s *FileStore) absPath(identity string) string {
	if filepath.IsAbs(identity) || s.baseDir == "" {
		return identity
	}
	return filepath.Join(s.baseDir, identity)
}

// BackupIdentity derives the backup identity from a document identity.
func BackupIdentity(identity string) string {
	return identity + BackupSuffix
}

// 📖 Read loads a whole document
func (s *FileStore) Read(ctx context.Context, identity string) (document.Document, error) {
	path := s.absPath(identity)
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("reading document")

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return document.Document{}, errors.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return document.Document{}, errors.Errorf("reading file: %w", err)
	}
	return document.New(identity, string(content)), nil
}

// ✍️ Write replaces the document at its identity
func (s *FileStore) Write(ctx context.Context, doc document.Document) error {
	return s.writeFileAtomic(ctx, s.absPath(doc.Identity()), []byte(doc.Text()))
}

// Exists reports whether a document exists at identity.
func (s *FileStore) Exists(ctx context.Context, identity string) (bool, error) {
	_, err := os.Stat(s.absPath(identity))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("checking file existence: %w", err)
}

// BackupExists reports whether the backup for identity has already been written.
func (s *FileStore) BackupExists(ctx context.Context, identity string) (bool, error) {
	return s.Exists(ctx, BackupIdentity(identity))
}

// 📦 WriteBackup persists doc under its backup identity
func (s *FileStore) WriteBackup(ctx context.Context, doc document.Document) error {
	path := s.absPath(BackupIdentity(doc.Identity()))
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("writing backup")
	return s.writeFileAtomic(ctx, path, []byte(doc.Text()))
}

func (s *FileStore) writeFileAtomic(ctx context.Context, path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+tempInfix+"*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, mode); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("setting temp file mode: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(content)).Msg("wrote file")
	return nil
}
