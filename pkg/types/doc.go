// Package types provides shared type definitions for the semdex MCP server.
//
// This package defines the domain types used across semdex components:
// snippets, the persisted index, search results, and build progress.
//
// # Core Types
//
// Snippet represents a unit of source text extracted for embedding. For
// function-oriented files the unit is a single function; for everything else
// it is a fixed-size block of lines:
//
//	snippet := types.Snippet{
//	    File: "src/alloc.c",
//	    Name: "arena_alloc",
//	    Code: "void *arena_alloc(arena *a, size_t n) { ... }",
//	}
//
// Index is the persisted product of a build: snippets and their embedding
// vectors in strict positional alignment, plus the model that produced them:
//
//	idx := &types.Index{
//	    Snippets: snippets,
//	    Vectors:  vectors,
//	    Model:    "text-embedding-3-small",
//	}
//	if err := idx.Validate(); err != nil {
//	    // misaligned or ragged index
//	}
//
// # Alignment
//
// Vectors[i] always embeds Snippets[i].Code. Every operation that creates or
// loads an Index must preserve this property; Validate enforces it together
// with uniform vector dimensionality. Failed per-item embeddings are stored
// as zero vectors rather than dropped so alignment survives partial provider
// outages; DegradedCount reports how many such rows an index carries.
//
// # Search Results
//
// SearchResult pairs a snippet with its cosine similarity to a query:
//
//	result := types.SearchResult{
//	    Snippet:    snippet,
//	    Similarity: 0.92,
//	}
//
// Similarity values are cosine similarities in [-1, 1], with higher values
// indicating closer matches.
package types
