// Package extractor divides source files into named snippets for embedding
// and search.
//
// Two strategies cover the supported file types. C-family sources (.c, .h,
// .cpp, .hpp and friends) are scanned for function definitions and
// prototypes, producing one snippet per function named after it. Everything
// else is cut into fixed-size blocks of lines with positional names like
// snippet_0, snippet_1.
//
// # Basic Usage
//
//	ex := extractor.New(tok)
//	snippets := ex.Extract("src/alloc.c", content)
//
//	for _, s := range snippets {
//	    fmt.Printf("%s: %s (%d bytes)\n", s.File, s.Name, len(s.Code))
//	}
//
// # Function Extraction
//
// Function matching is regex-based, not a real parser. It recognizes a
// return type, a name, a parameter list, and a body balanced to one level
// of brace nesting (or a prototype's semicolon). Deeply nested functions
// match only partially; that tradeoff keeps extraction fast and
// dependency-free, and partial bodies still rank well in practice.
//
// # Line Chunking
//
// Non-C files are split every DefaultChunkLines lines. Blocks that are
// entirely whitespace are dropped, and names keep their positional index,
// so snippet_2 always starts at line 40 regardless of what was dropped
// before it.
//
// # Token Budget
//
// Every snippet is measured with the configured tokenizer and truncated to
// the budget (default tokenizer.DefaultMaxTokens) before it leaves this
// package, so downstream embedding calls never see oversized input.
//
// Extraction is deterministic: the same path and content always produce the
// same snippets.
package extractor
