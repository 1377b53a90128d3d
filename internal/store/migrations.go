package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CurrentSchemaVersion is the schema version this build writes.
const CurrentSchemaVersion = "1.0.0"

// Migration pairs an Up script with the Down script that undoes it.
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations lists every migration, oldest first.
var AllMigrations = []Migration{
	{Version: "1.0.0", Up: migrationV1Up, Down: migrationV1Down},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Single-row metadata for the persisted index
CREATE TABLE IF NOT EXISTS index_meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    model TEXT NOT NULL,
    dimension INTEGER NOT NULL,
    snippet_count INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Snippets table; pos preserves extraction order
CREATE TABLE IF NOT EXISTS snippets (
    pos INTEGER PRIMARY KEY,
    file TEXT NOT NULL,
    name TEXT NOT NULL,
    code TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snippets_file ON snippets(file);

-- Embeddings table, aligned with snippets by pos
CREATE TABLE IF NOT EXISTS embeddings (
    pos INTEGER PRIMARY KEY,
    vector BLOB NOT NULL,
    FOREIGN KEY (pos) REFERENCES snippets(pos) ON DELETE CASCADE
);
`

const migrationV1Down = `
-- Drop all tables in reverse order of dependencies
DROP TABLE IF EXISTS embeddings;
DROP INDEX IF EXISTS idx_snippets_file;
DROP TABLE IF EXISTS snippets;
DROP TABLE IF EXISTS index_meta;
DROP TABLE IF EXISTS schema_version;
`

// schemaVersion reads the most recently applied migration version.
// A database without a schema_version table reports 0.0.0.
func schemaVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	var name string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&name)
	if err == sql.ErrNoRows {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check schema_version table: %w", err)
	}

	var version string
	err = db.QueryRowContext(ctx,
		"SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows || version == "" {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("invalid schema version %q: %w", version, err)
	}
	return v, nil
}

// ApplyMigrations brings the database up to the current schema, running
// each pending migration in order and recording it in schema_version.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	current, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range AllMigrations {
		target, err := semver.NewVersion(m.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %q: %w", m.Version, err)
		}
		if !current.LessThan(target) {
			continue
		}

		if _, err := db.ExecContext(ctx, m.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.Version, err)
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.Version, err)
		}
		current = target
	}

	return nil
}

// RollbackMigration undoes the most recently applied migration. The v1
// Down script drops schema_version itself, so no row cleanup follows it.
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	var version string
	err := db.QueryRowContext(ctx,
		"SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("no migrations to roll back: %w", err)
	}

	for i := range AllMigrations {
		if AllMigrations[i].Version != version {
			continue
		}
		if _, err := db.ExecContext(ctx, AllMigrations[i].Down); err != nil {
			return fmt.Errorf("failed to roll back migration %s: %w", version, err)
		}
		return nil
	}
	return fmt.Errorf("migration %s not found", version)
}
