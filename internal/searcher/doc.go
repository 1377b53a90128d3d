// Package searcher ranks indexed snippets against a query.
//
// The query is embedded through the same client that embedded the index,
// then scored by cosine similarity against every stored vector. Results
// come back most similar first; equal scores keep their index order, so
// ranking is deterministic run to run.
//
// # Basic Usage
//
//	s := searcher.New(client, logger)
//	results, err := s.Search(ctx, "parse configuration file", 5, idx)
//	for _, r := range results {
//	    fmt.Printf("%.3f  %s (%s)\n", r.Similarity, r.Snippet.Name, r.Snippet.File)
//	}
//
// # Guards
//
// A query against an index built with a different embedding model fails
// with types.ErrModelMismatch before any provider call; comparing vectors
// from different models is meaningless. Zero-norm rows (placeholders from
// degraded builds) and rows whose dimension differs from the query vector
// score 0 and sink to the bottom.
package searcher
