// Package tokenizer provides token counting and budget-aware truncation for
// text headed to an embedding provider.
//
// Embedding models reject inputs above a token ceiling, so every snippet is
// measured and, when needed, trimmed before dispatch. Two implementations
// are provided:
//
//   - TikToken: exact counts using the cl100k_base BPE that OpenAI
//     embedding models use.
//   - Heuristic: a runes/4 estimate that needs no BPE data, for offline
//     operation and tests.
//
// # Usage
//
//	tok, err := tokenizer.NewTikToken()
//	if err != nil {
//	    tok = tokenizer.NewHeuristic() // degrade to the estimate
//	}
//
//	if tok.Count(code) > tokenizer.DefaultMaxTokens {
//	    code = tok.Truncate(code, tokenizer.DefaultMaxTokens)
//	}
//
// Both implementations satisfy the truncation law
// Count(Truncate(text, n)) <= n, and Truncate returns text unchanged when it
// is already within budget.
package tokenizer
