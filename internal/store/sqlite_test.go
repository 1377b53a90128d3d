package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semdex/semdex/pkg/types"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	// Use in-memory database for testing
	s, err := NewSQLiteStore(":memory:", nil)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func TestSQLiteStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	defer s.Close()

	want := testIndex()
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Snippets, got.Snippets)
	assert.Equal(t, want.Vectors, got.Vectors)
	assert.Equal(t, want.Model, got.Model)
}

func TestSQLiteStore_LoadEmpty(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, types.ErrIndexNotFound)
}

func TestSQLiteStore_SaveReplacesExisting(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	defer s.Close()

	require.NoError(t, s.Save(ctx, testIndex()))

	second := &types.Index{
		Snippets: []types.Snippet{{File: "new.c", Name: "only", Code: "void only();"}},
		Vectors:  [][]float32{{1, 2}},
		Model:    "text-embedding-3-large",
	}
	require.NoError(t, s.Save(ctx, second))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
	assert.Equal(t, "only", got.Snippets[0].Name)
	assert.Equal(t, "text-embedding-3-large", got.Model)
}

func TestSQLiteStore_ReopenPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	s, err := NewSQLiteStore(path, nil)
	require.NoError(t, err)
	want := testIndex()
	require.NoError(t, s.Save(ctx, want))
	require.NoError(t, s.Close())

	// Reopening applies migrations again; they must be idempotent.
	s2, err := NewSQLiteStore(path, nil)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Snippets, got.Snippets)
	assert.Equal(t, want.Vectors, got.Vectors)

	var versions int
	err = s2.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&versions)
	require.NoError(t, err)
	assert.Equal(t, 1, versions, "migration must be recorded exactly once")
}

func TestSQLiteStore_EmptyIndex(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	defer s.Close()

	empty := &types.Index{Model: "text-embedding-3-small"}
	require.NoError(t, s.Save(ctx, empty))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.Equal(t, "text-embedding-3-small", got.Model)
}

func TestSQLiteStore_SaveValidates(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	defer s.Close()

	err := s.Save(ctx, nil)
	assert.ErrorIs(t, err, types.ErrCorruptIndex)

	noModel := testIndex()
	noModel.Model = ""
	err = s.Save(ctx, noModel)
	assert.ErrorIs(t, err, types.ErrEmptyModel)

	misaligned := testIndex()
	misaligned.Vectors = misaligned.Vectors[:2]
	err = s.Save(ctx, misaligned)
	assert.ErrorIs(t, err, types.ErrCorruptIndex)

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, types.ErrIndexNotFound)
}

func TestSQLiteStore_CorruptCountMismatch(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	defer s.Close()

	require.NoError(t, s.Save(ctx, testIndex()))

	// Drop one embedding row behind the store's back.
	_, err := s.db.Exec("DELETE FROM embeddings WHERE pos = 1")
	require.NoError(t, err)

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, types.ErrCorruptIndex)
}

func TestSQLiteStore_CorruptVectorBlob(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	defer s.Close()

	require.NoError(t, s.Save(ctx, testIndex()))

	// A blob whose length is not a multiple of 4 cannot decode.
	_, err := s.db.Exec("UPDATE embeddings SET vector = ? WHERE pos = 0", []byte{1, 2, 3})
	require.NoError(t, err)

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, types.ErrCorruptIndex)
}

func TestSQLiteStore_SaveCancelledLeavesPreviousIndex(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	want := testIndex()
	require.NoError(t, s.Save(context.Background(), want))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Save(ctx, &types.Index{Model: "other"})
	assert.ErrorIs(t, err, context.Canceled)

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want.Snippets, got.Snippets)
	assert.Equal(t, want.Model, got.Model)
}

func TestSQLiteStore_RollbackMigration(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	defer s.Close()

	require.NoError(t, s.Save(ctx, testIndex()))

	require.NoError(t, RollbackMigration(ctx, s.db))

	// Schema is gone; loading must fail outright.
	_, err := s.Load(ctx)
	assert.Error(t, err)

	// Re-applying migrations restores an empty schema.
	require.NoError(t, ApplyMigrations(ctx, s.db))
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, types.ErrIndexNotFound)
}
