// Package embedder turns text into vector embeddings through pluggable
// providers, with batching, caching, and graceful degradation.
//
// # Providers
//
// Two providers are built in:
//
//   - openai: the OpenAI embeddings API, with capped exponential backoff
//     on rate limits and server errors.
//   - static: deterministic hash-derived vectors requiring no network or
//     keys, for offline operation and tests.
//
// The factory picks one from configuration or the environment:
//
//	client, err := embedder.New(embedder.Config{
//	    Provider: "openai",
//	    Model:    "text-embedding-3-small",
//	}, tok, logger)
//
// # Batching and Degradation
//
// Embed sends texts in fixed-size batches. A failed batch is not fatal:
// every text in it is retried individually, and a text that still fails is
// recorded as a zero-vector placeholder so the output stays aligned with
// the input. The only error Embed returns is caller cancellation.
//
//	result, err := client.Embed(ctx, embedder.EmbedRequest{Texts: texts})
//	if err != nil {
//	    // ctx was cancelled; nothing was persisted
//	}
//	result.Report.Placeholders // degraded rows, if any
//
// # Caching
//
// Vectors are cached in-memory by SHA-256 content hash with LRU eviction.
// Single-text calls (item retries, query embedding) consult the cache;
// batch successes populate it.
package embedder
