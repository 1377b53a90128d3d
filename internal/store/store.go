package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/semdex/semdex/pkg/types"
)

// Store persists and retrieves the search index as one unit. Save replaces
// whatever was persisted before; partial updates do not exist at this layer.
type Store interface {
	// Save atomically replaces the persisted index.
	Save(ctx context.Context, idx *types.Index) error

	// Load returns the persisted index, types.ErrIndexNotFound when none
	// exists, or types.ErrCorruptIndex when what exists fails validation.
	Load(ctx context.Context) (*types.Index, error)

	// Close releases any resources held by the store.
	Close() error
}

// Backend names accepted by New
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// New creates a Store for the named backend. An empty backend selects the
// JSON file store.
func New(backend, path string, logger *zap.Logger) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(path, logger), nil
	case BackendSQLite:
		return NewSQLiteStore(path, logger)
	default:
		return nil, fmt.Errorf("unsupported index backend %q", backend)
	}
}

// validateForSave rejects indexes that must never reach disk.
func validateForSave(idx *types.Index) error {
	if idx == nil {
		return fmt.Errorf("%w: nil index", types.ErrCorruptIndex)
	}
	if idx.Model == "" {
		return types.ErrEmptyModel
	}
	return idx.Validate()
}
