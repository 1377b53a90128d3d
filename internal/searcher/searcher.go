package searcher

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/semdex/semdex/internal/embedder"
	"github.com/semdex/semdex/pkg/types"
)

// Searcher answers natural-language queries against a built index by cosine
// similarity over the stored vectors.
type Searcher struct {
	client *embedder.Client
	logger *zap.Logger
}

// New creates a Searcher backed by the given embedding client.
func New(client *embedder.Client, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{client: client, logger: logger}
}

// Search embeds query and returns the topK most similar snippets from idx,
// most similar first. Equal similarities keep their index order. The index
// must have been built with the client's model; a mismatch fails before any
// provider call.
func (s *Searcher) Search(ctx context.Context, query string, topK int, idx *types.Index) ([]types.SearchResult, error) {
	if idx == nil {
		return nil, types.ErrIndexNotFound
	}
	if idx.Model != s.client.Model() {
		return nil, fmt.Errorf("%w: index built with %q, client uses %q",
			types.ErrModelMismatch, idx.Model, s.client.Model())
	}
	if topK < 1 {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidTopK, topK)
	}
	if query == "" {
		return nil, types.ErrEmptyQuery
	}
	if idx.Len() == 0 {
		return []types.SearchResult{}, nil
	}

	queryVec, err := s.client.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results := make([]types.SearchResult, idx.Len())
	for i, vec := range idx.Vectors {
		results[i] = types.SearchResult{
			Snippet:    idx.Snippets[i],
			Similarity: cosineSimilarity(queryVec, vec),
		}
	}

	// Stable sort keeps earlier snippets ahead on equal similarity.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if topK < len(results) {
		results = results[:topK]
	}

	s.logger.Debug("search complete",
		zap.Int("candidates", idx.Len()),
		zap.Int("returned", len(results)),
		zap.Float64("top_similarity", results[0].Similarity))

	return results, nil
}

// cosineSimilarity calculates the cosine similarity between two vectors.
// Mismatched lengths and zero-norm vectors score 0, so placeholder rows
// rank last instead of failing the whole search.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
