package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/semdex/semdex/internal/tokenizer"
	"github.com/semdex/semdex/pkg/types"
)

// Common errors
var (
	ErrProviderFailed      = errors.New("embedding provider failed")
	ErrNoProviderEnabled   = errors.New("no embedding provider configured")
	ErrUnsupportedProvider = errors.New("unsupported embedding provider")
)

const (
	// DefaultBatchSize is the number of texts sent per provider call
	DefaultBatchSize = 100

	// DefaultCacheSize is the number of vectors kept in the LRU cache
	DefaultCacheSize = 10000

	// DefaultDimension sizes placeholder vectors when neither the run nor
	// the model table can tell us better
	DefaultDimension = 1536
)

// modelDimensions maps known embedding models to their published vector
// sizes. Placeholders fall back to this table when a run has produced no
// successful embedding to measure.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// ModelDimension returns the published vector size for a known embedding
// model, or DefaultDimension for anything unrecognized.
func ModelDimension(model string) int {
	if dim, ok := modelDimensions[model]; ok {
		return dim
	}
	return DefaultDimension
}

// Provider performs the embedding calls for one batch of texts.
type Provider interface {
	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error)

	// Name returns the provider name for logs and status output.
	Name() string

	// Close releases any resources held by the provider.
	Close() error
}

// Client turns texts into vectors, batching provider calls and degrading
// gracefully when calls fail: a failed batch is retried one text at a time,
// and a text that still fails becomes a zero-vector placeholder so output
// stays aligned with input. Only caller cancellation aborts a run.
type Client struct {
	provider  Provider
	model     string
	tok       tokenizer.Tokenizer
	batchSize int
	maxTokens int
	cacheSize int
	cache     *Cache
	logger    *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBatchSize overrides the texts-per-call batch size.
func WithBatchSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithMaxTokens overrides the per-text token budget re-checked on the
// item retry path.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithCacheSize overrides the vector cache capacity.
func WithCacheSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.cacheSize = n
		}
	}
}

// WithLogger attaches a logger. The default discards all output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client for the given provider and model.
func NewClient(provider Provider, model string, tok tokenizer.Tokenizer, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, ErrNoProviderEnabled
	}
	if model == "" {
		return nil, types.ErrEmptyModel
	}
	if tok == nil {
		tok = tokenizer.NewHeuristic()
	}

	c := &Client{
		provider:  provider,
		model:     model,
		tok:       tok,
		batchSize: DefaultBatchSize,
		maxTokens: tokenizer.DefaultMaxTokens,
		cacheSize: DefaultCacheSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = NewCache(c.cacheSize)

	return c, nil
}

// Model returns the embedding model identifier this client sends.
func (c *Client) Model() string {
	return c.model
}

// ProviderName returns the name of the underlying provider.
func (c *Client) ProviderName() string {
	return c.provider.Name()
}

// Close releases the underlying provider.
func (c *Client) Close() error {
	return c.provider.Close()
}

// EmbedRequest carries one embedding run.
type EmbedRequest struct {
	Texts []string

	// OnProgress, when set, receives overall build progress after each
	// batch: 50 + processed/total*45, reaching 95 once every text is done.
	OnProgress func(pct int)
}

// Report tallies the degradations applied during a run.
type Report struct {
	Batches        int // provider calls that succeeded as whole batches
	BatchFallbacks int // batches that failed and were retried text by text
	Placeholders   int // texts that ended up as zero-vector placeholders
	Truncated      int // texts re-truncated on the item retry path
}

// EmbedResult is the outcome of a run.
type EmbedResult struct {
	Vectors [][]float32
	Report  Report
}

// Embed produces one vector per request text, in request order. Provider
// failures never abort a run: a failed batch falls back to per-text calls,
// and a text whose call still fails yields a zero-vector placeholder sized
// to match the rest of the run. The only error a run returns is caller
// cancellation via ctx, checked at batch and item boundaries.
func (c *Client) Embed(ctx context.Context, req EmbedRequest) (*EmbedResult, error) {
	total := len(req.Texts)
	result := &EmbedResult{Vectors: make([][]float32, 0, total)}
	if total == 0 {
		return result, nil
	}

	dim := 0 // vector size observed from the first success this run
	for start := 0; start < total; start += c.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+c.batchSize, total)
		batch := req.Texts[start:end]

		vectors, err := c.provider.EmbedBatch(ctx, c.model, batch)
		if err != nil || len(vectors) != len(batch) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}

			c.logger.Warn("batch embedding failed, retrying texts individually",
				zap.Int("batch_start", start),
				zap.Int("batch_len", len(batch)),
				zap.Error(err))
			result.Report.BatchFallbacks++

			vectors, err = c.embedItems(ctx, batch, &dim, &result.Report)
			if err != nil {
				return nil, err
			}
		} else {
			result.Report.Batches++
			c.cacheBatch(batch, vectors)
		}

		for _, vec := range vectors {
			if dim == 0 && len(vec) > 0 && !types.IsZeroVector(vec) {
				dim = len(vec)
			}
		}

		result.Vectors = append(result.Vectors, vectors...)

		if req.OnProgress != nil {
			req.OnProgress(progressAt(end, total))
		}
	}

	return result, nil
}

// EmbedQuery embeds a single query through the same budget and cache path
// used for snippets.
func (c *Client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if query == "" {
		return nil, types.ErrEmptyQuery
	}

	if count := c.tok.Count(query); count > c.maxTokens {
		query = c.tok.Truncate(query, c.maxTokens)
	}

	vec, err := c.embedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	return vec, nil
}

// embedItems recovers a failed batch one text at a time. Each text is
// re-measured against the token budget before sending. A text whose call
// still fails becomes a zero-vector placeholder.
func (c *Client) embedItems(ctx context.Context, texts []string, dim *int, rep *Report) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if count := c.tok.Count(text); count > c.maxTokens {
			c.logger.Warn("truncating oversized text on item retry",
				zap.Int("item", i),
				zap.Int("tokens", count),
				zap.Int("budget", c.maxTokens))
			text = c.tok.Truncate(text, c.maxTokens)
			rep.Truncated++
		}

		vec, err := c.embedOne(ctx, text)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}

			c.logger.Warn("item embedding failed, storing placeholder",
				zap.Int("item", i),
				zap.Error(err))
			rep.Placeholders++
			vectors = append(vectors, make([]float32, c.placeholderDim(*dim)))
			continue
		}

		if *dim == 0 {
			*dim = len(vec)
		}
		vectors = append(vectors, vec)
	}

	return vectors, nil
}

// embedOne sends a single text, consulting the cache first.
func (c *Client) embedOne(ctx context.Context, text string) ([]float32, error) {
	hash := ComputeHash(text)
	if vec, ok := c.cache.Get(hash); ok {
		return vec, nil
	}

	vectors, err := c.provider.EmbedBatch(ctx, c.model, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 vector, got %d", ErrProviderFailed, len(vectors))
	}

	c.cache.Set(hash, vectors[0])
	return vectors[0], nil
}

// cacheBatch stores a successful batch's vectors keyed by text hash.
func (c *Client) cacheBatch(texts []string, vectors [][]float32) {
	for i, text := range texts {
		c.cache.Set(ComputeHash(text), vectors[i])
	}
}

// placeholderDim sizes a zero-vector placeholder: the run's observed
// dimensionality when available, else the model default.
func (c *Client) placeholderDim(observed int) int {
	if observed > 0 {
		return observed
	}
	return ModelDimension(c.model)
}

// progressAt maps texts processed to overall build progress. Embedding owns
// the 50 to 95 range.
func progressAt(processed, total int) int {
	return types.ProgressExtracted + processed*45/total
}

// Cache provides in-memory LRU caching of vectors by content hash
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache creates a new vector cache with LRU eviction
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](maxLen)
	if err != nil {
		// Should never happen with positive size, but fallback to default
		cache, _ = lru.New[string, []float32](DefaultCacheSize)
	}
	return &Cache{
		cache: cache,
	}
}

// Get retrieves a copy of a cached vector. Copies on both sides keep caller
// mutations out of the cache.
func (c *Cache) Get(hash string) ([]float32, bool) {
	vec, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}

	out := make([]float32, len(vec))
	copy(out, vec)
	return out, true
}

// Set stores a copy of vec with automatic LRU eviction.
func (c *Cache) Set(hash string, vec []float32) {
	stored := make([]float32, len(vec))
	copy(stored, vec)
	c.cache.Add(hash, stored)
}

// Size returns the current cache size
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache
func (c *Cache) Clear() {
	c.cache.Purge()
}

// ComputeHash computes the SHA-256 hex digest of text for cache keys
func ComputeHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
