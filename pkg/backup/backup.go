// Package backup keeps the first pristine snapshot of a document.
package backup

import (
	"context"

	"github.com/kwanter/formfix/pkg/document"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ExistsFunc reports whether a backup for identity has already been persisted.
type ExistsFunc func(ctx context.Context, identity string) (bool, error)

// PersistFunc writes the backup snapshot.
type PersistFunc func(ctx context.Context, doc document.Document) error

// 🛡️ Guard writes a backup once and never overwrites it
type Guard struct {
	exists  ExistsFunc
	persist PersistFunc
}

// 🏭 NewGuard creates a guard over the given backup boundary
func NewGuard(exists ExistsFunc, persist PersistFunc) *Guard {
	return &Guard{exists: exists, persist: persist}
}

// Ensure persists original as the backup unless one already exists. It
// returns true when this call created the backup.
func (g *Guard) Ensure(ctx context.Context, original document.Document) (bool, error) {
	return Ensure(ctx, original, g.exists, g.persist)
}

// Ensure is the functional form of Guard.Ensure.
func Ensure(ctx context.Context, original document.Document, exists ExistsFunc, persist PersistFunc) (bool, error) {
	logger := zerolog.Ctx(ctx)

	found, err := exists(ctx, original.Identity())
	if err != nil {
		return false, errors.Errorf("checking backup: %w", err)
	}
	if found {
		logger.Debug().Str("document", original.Identity()).Msg("backup already present, keeping it")
		return false, nil
	}

	if err := persist(ctx, original); err != nil {
		return false, errors.Errorf("writing backup: %w", err)
	}
	logger.Debug().Str("document", original.Identity()).Str("checksum", original.Checksum()).Msg("backup created")
	return true, nil
}
