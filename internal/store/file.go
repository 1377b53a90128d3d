package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/semdex/semdex/pkg/types"
)

// FileStore persists the index as a single JSON document. Saves write to a
// temp file in the same directory and rename over the target, so a reader
// never observes a half-written index and a cancelled build leaves the old
// file untouched.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a file-backed store at path. The file is not created
// until the first Save.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the location of the persisted index file.
func (s *FileStore) Path() string {
	return s.path
}

// Save atomically replaces the persisted index.
func (s *FileStore) Save(ctx context.Context, idx *types.Index) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateForSave(idx); err != nil {
		return err
	}

	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create index directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace index: %w", err)
	}

	s.logger.Debug("index saved",
		zap.String("path", s.path),
		zap.Int("snippets", idx.Len()),
		zap.Int("bytes", len(data)))

	return nil
}

// Load reads and validates the persisted index.
func (s *FileStore) Load(ctx context.Context) (*types.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, types.ErrIndexNotFound
		}
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	var idx types.Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrCorruptIndex, err)
	}
	if idx.Model == "" {
		return nil, fmt.Errorf("%w: missing embedding model", types.ErrCorruptIndex)
	}
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	s.logger.Debug("index loaded",
		zap.String("path", s.path),
		zap.Int("snippets", idx.Len()),
		zap.Int("dimension", idx.Dimension()))

	return &idx, nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}
