package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/semdex/semdex/pkg/types"
)

// SQLiteStore persists the index in a SQLite database. Save replaces the
// whole index inside a single transaction, so readers observe either the
// previous index or the new one, never a mix.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore opens the database at path, creating it and its parent
// directory if needed, and applies pending migrations.
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
	}

	db, err := openDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Save atomically replaces the persisted index.
func (s *SQLiteStore) Save(ctx context.Context, idx *types.Index) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateForSave(idx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Clear the previous index; embeddings first because of the FK.
	for _, stmt := range []string{
		"DELETE FROM embeddings",
		"DELETE FROM snippets",
		"DELETE FROM index_meta",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear previous index: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO index_meta (id, model, dimension, snippet_count) VALUES (1, ?, ?, ?)",
		idx.Model, idx.Dimension(), idx.Len())
	if err != nil {
		return fmt.Errorf("failed to write index metadata: %w", err)
	}

	insertSnippet, err := tx.PrepareContext(ctx,
		"INSERT INTO snippets (pos, file, name, code) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare snippet insert: %w", err)
	}
	defer insertSnippet.Close()

	insertVector, err := tx.PrepareContext(ctx,
		"INSERT INTO embeddings (pos, vector) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare embedding insert: %w", err)
	}
	defer insertVector.Close()

	for i, snippet := range idx.Snippets {
		if _, err := insertSnippet.ExecContext(ctx, i, snippet.File, snippet.Name, snippet.Code); err != nil {
			return fmt.Errorf("failed to insert snippet %d: %w", i, err)
		}
		if _, err := insertVector.ExecContext(ctx, i, serializeVector(idx.Vectors[i])); err != nil {
			return fmt.Errorf("failed to insert embedding %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index: %w", err)
	}

	s.logger.Debug("index saved",
		zap.String("backend", BackendSQLite),
		zap.Int("snippets", idx.Len()),
		zap.Int("dimension", idx.Dimension()))

	return nil
}

// Load reads and validates the persisted index.
func (s *SQLiteStore) Load(ctx context.Context) (*types.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		model     string
		dimension int
		count     int
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT model, dimension, snippet_count FROM index_meta WHERE id = 1").
		Scan(&model, &dimension, &count)
	if err == sql.ErrNoRows {
		return nil, types.ErrIndexNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index metadata: %w", err)
	}

	idx := &types.Index{
		Snippets: make([]types.Snippet, 0, count),
		Vectors:  make([][]float32, 0, count),
		Model:    model,
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.file, s.name, s.code, e.vector
		FROM snippets s
		JOIN embeddings e ON e.pos = s.pos
		ORDER BY s.pos`)
	if err != nil {
		return nil, fmt.Errorf("failed to read snippets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			snippet types.Snippet
			blob    []byte
		)
		if err := rows.Scan(&snippet.File, &snippet.Name, &snippet.Code, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan snippet row: %w", err)
		}
		vector, err := deserializeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrCorruptIndex, err)
		}
		idx.Snippets = append(idx.Snippets, snippet)
		idx.Vectors = append(idx.Vectors, vector)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snippets: %w", err)
	}

	if idx.Len() != count {
		return nil, fmt.Errorf("%w: metadata records %d snippets, found %d",
			types.ErrCorruptIndex, count, idx.Len())
	}
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	s.logger.Debug("index loaded",
		zap.String("backend", BackendSQLite),
		zap.Int("snippets", idx.Len()),
		zap.Int("dimension", idx.Dimension()))

	return idx, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
