//go:build purego || !cgo_sqlite
// +build purego !cgo_sqlite

package store

// This file is compiled when building without CGO or with the purego tag.
// It selects modernc.org/sqlite, a pure Go translation of SQLite, for the
// sqlite index backend.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// Trade-offs against the C driver:
//   - no C compiler needed, trivially cross-compiles
//   - inserts and scans run somewhat slower

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is what the sqlite backend passes to sql.Open.
	DriverName = "sqlite"

	// BuildMode names the compiled driver variant for index_status and
	// --version output.
	BuildMode = "purego"
)
