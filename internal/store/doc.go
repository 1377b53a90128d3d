// Package store persists the search index and loads it back.
//
// Two backends implement the Store interface:
//   - FileStore: one JSON document, written atomically via temp file + rename
//   - SQLiteStore: relational layout, replaced wholesale in one transaction
//
// Both treat the index as a unit. Save replaces everything; Load returns
// types.ErrIndexNotFound when nothing was persisted yet and
// types.ErrCorruptIndex when the persisted data fails validation
// (misaligned snippet/vector counts, ragged dimensions, missing model).
//
// # JSON Layout
//
// The file backend writes the index as:
//
//	{
//	  "snippets":   [{"file": ..., "name": ..., "code": ...}, ...],
//	  "embeddings": [[...], ...],
//	  "model":      "text-embedding-3-small"
//	}
//
// # Database Schema
//
// The sqlite backend uses:
//   - index_meta: single row (model, dimension, snippet_count)
//   - snippets: pos, file, name, code
//   - embeddings: pos, vector BLOB (little-endian float32)
//
// # Basic Usage
//
//	st, err := store.New(store.BackendFile, "~/.semdex/code_embeddings.json", logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
//	idx, err := st.Load(ctx)
//	if errors.Is(err, types.ErrIndexNotFound) {
//	    // build it
//	}
//
// The sqlite backend compiles against modernc.org/sqlite by default; build
// with -tags cgo_sqlite to use github.com/mattn/go-sqlite3 instead.
package store
