package extractor

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/semdex/semdex/internal/tokenizer"
	"github.com/semdex/semdex/pkg/types"
)

// DefaultChunkLines is the block size, in lines, used for files that have no
// function-oriented extraction strategy
const DefaultChunkLines = 20

// funcPattern matches C-family function definitions and prototypes: a return
// type, a name, a parenthesized parameter list, then either a body balanced
// to one level of brace nesting or a trailing semicolon. Deliberately
// approximate; good enough for ranking whole functions.
var funcPattern = regexp.MustCompile(`\w+\s+\w+\s*\([^)]*\)\s*(?:\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}|;)`)

// namePattern captures the identifier directly before a parameter list.
var namePattern = regexp.MustCompile(`(\w+)\s*\(`)

// functionOrientedExts lists extensions that get function extraction rather
// than fixed-size line chunking.
var functionOrientedExts = map[string]bool{
	".c":   true,
	".h":   true,
	".cpp": true,
	".hpp": true,
	".cc":  true,
	".cxx": true,
	".hh":  true,
	".hxx": true,
}

// Extractor turns raw source text into named snippets sized for embedding
type Extractor struct {
	tok        tokenizer.Tokenizer
	chunkLines int
	maxTokens  int
	logger     *zap.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithChunkLines overrides the line-block size for non-function files.
func WithChunkLines(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.chunkLines = n
		}
	}
}

// WithMaxTokens overrides the per-snippet token budget.
func WithMaxTokens(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// WithLogger attaches a logger. The default discards all output.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Extractor that uses tok to enforce the token budget
func New(tok tokenizer.Tokenizer, opts ...Option) *Extractor {
	e := &Extractor{
		tok:        tok,
		chunkLines: DefaultChunkLines,
		maxTokens:  tokenizer.DefaultMaxTokens,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract produces snippets from a single source file. C-family files yield
// one snippet per matched function; every other file is cut into fixed-size
// line blocks, dropping blocks that are entirely blank. Snippets over the
// token budget are truncated in place. The result depends only on path and
// content.
func (e *Extractor) Extract(path, content string) []types.Snippet {
	if FunctionOriented(path) {
		return e.extractFunctions(path, content)
	}
	return e.extractChunks(path, content)
}

// FunctionOriented reports whether path's extension selects function
// extraction instead of line chunking.
func FunctionOriented(path string) bool {
	return functionOrientedExts[strings.ToLower(filepath.Ext(path))]
}

// extractFunctions pulls individual functions out of C-family source.
// Snippet names come from the identifier before the parameter list, with a
// positional fallback when no identifier is found.
func (e *Extractor) extractFunctions(path, content string) []types.Snippet {
	matches := funcPattern.FindAllString(content, -1)

	snippets := make([]types.Snippet, 0, len(matches))
	for i, match := range matches {
		code := strings.TrimSpace(match)
		if code == "" {
			continue
		}

		name := fmt.Sprintf("snippet_%d", i)
		if m := namePattern.FindStringSubmatch(code); m != nil {
			name = m[1]
		}

		snippets = append(snippets, types.Snippet{
			File: path,
			Name: name,
			Code: e.enforceBudget(path, name, code),
		})
	}

	return snippets
}

// extractChunks cuts content into blocks of chunkLines lines. Names encode
// the block's line position, so a dropped blank block leaves a gap rather
// than renumbering its successors.
func (e *Extractor) extractChunks(path, content string) []types.Snippet {
	lines := strings.Split(content, "\n")

	var snippets []types.Snippet
	for i := 0; i < len(lines); i += e.chunkLines {
		end := i + e.chunkLines
		if end > len(lines) {
			end = len(lines)
		}

		chunk := strings.Join(lines[i:end], "\n")
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		name := fmt.Sprintf("snippet_%d", i/e.chunkLines)
		snippets = append(snippets, types.Snippet{
			File: path,
			Name: name,
			Code: e.enforceBudget(path, name, chunk),
		})
	}

	return snippets
}

// enforceBudget truncates code that exceeds the token budget, logging what
// was lost.
func (e *Extractor) enforceBudget(path, name, code string) string {
	count := e.tok.Count(code)
	if count <= e.maxTokens {
		return code
	}

	e.logger.Warn("truncated oversized snippet",
		zap.String("file", path),
		zap.String("snippet", name),
		zap.Int("tokens", count),
		zap.Int("budget", e.maxTokens))

	return e.tok.Truncate(code, e.maxTokens)
}
