//go:build cgo_sqlite
// +build cgo_sqlite

package store

// This file is compiled when building with CGO and the cgo_sqlite tag.
// It selects github.com/mattn/go-sqlite3, which links the upstream C
// SQLite, for the sqlite index backend.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "cgo_sqlite" ./...
//
// Trade-offs against the pure Go driver:
//   - faster inserts and scans on large indexes
//   - needs a C compiler on the build host

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is what the sqlite backend passes to sql.Open.
	DriverName = "sqlite3"

	// BuildMode names the compiled driver variant for index_status and
	// --version output.
	BuildMode = "cgo"
)
