package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"
)

// Provider names accepted by the factory
const (
	ProviderOpenAI = "openai"
	ProviderStatic = "static"
)

// Environment variables consulted by the factory
const (
	EnvProvider  = "SEMDEX_EMBEDDING_PROVIDER"
	EnvOpenAIKey = "OPENAI_API_KEY"
)

const (
	// DefaultModel is used when no embedding model is configured
	DefaultModel = "text-embedding-3-small"

	// StaticDimension is the vector size produced by StaticProvider
	StaticDimension = 384

	// Retry configuration for remote providers
	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// OpenAIProvider calls the OpenAI embeddings API. Transient failures (rate
// limits, 5xx, transport errors) are retried with capped exponential
// backoff before the batch is reported as failed.
type OpenAIProvider struct {
	client *openai.Client
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*openai.ClientConfig)

// WithBaseURL points the provider at an alternate API endpoint. Useful for
// proxies and tests.
func WithBaseURL(url string) OpenAIOption {
	return func(cfg *openai.ClientConfig) {
		if url != "" {
			cfg.BaseURL = url
		}
	}
}

// NewOpenAIProvider creates an OpenAI embedder. An empty apiKey falls back
// to the OPENAI_API_KEY environment variable.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvOpenAIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvOpenAIKey)
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
	}, nil
}

// EmbedBatch sends texts in one API call and returns the vectors in input
// order.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	backoff := retry.WithMaxRetries(maxRetries,
		retry.WithCappedDuration(maxBackoff, retry.NewExponential(initialBackoff)))

	var out [][]float32
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(model),
			Input: texts,
		})
		if err != nil {
			if shouldRetry(err) {
				return retry.RetryableError(err)
			}
			return err
		}

		if len(resp.Data) != len(texts) {
			return fmt.Errorf("%w: sent %d texts, got %d embeddings",
				ErrProviderFailed, len(texts), len(resp.Data))
		}

		out = make([][]float32, len(resp.Data))
		for i, item := range resp.Data {
			vec := make([]float32, len(item.Embedding))
			for j, v := range item.Embedding {
				vec[j] = float32(v)
			}
			out[i] = vec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// Close releases provider resources.
func (p *OpenAIProvider) Close() error {
	return nil
}

// shouldRetry reports whether an API error is worth another attempt.
// Rate limits and server errors are; client errors and context
// cancellation are not.
func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}

	// Transport-level failures are assumed transient.
	return true
}

// StaticProvider produces deterministic pseudo-embeddings derived from a
// SHA-256 expansion of the text. No network, no keys; meant for offline
// operation and tests. Vectors are unit-normalized so cosine scores land
// in the usual range.
type StaticProvider struct {
	dim int
}

// NewStaticProvider returns a provider emitting dim-sized vectors, or
// StaticDimension-sized ones when dim <= 0.
func NewStaticProvider(dim int) *StaticProvider {
	if dim <= 0 {
		dim = StaticDimension
	}
	return &StaticProvider{dim: dim}
}

// EmbedBatch generates one deterministic vector per text.
func (s *StaticProvider) EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = s.vectorFor(text)
	}
	return out, nil
}

// Name returns the provider name.
func (s *StaticProvider) Name() string {
	return ProviderStatic
}

// Close releases provider resources.
func (s *StaticProvider) Close() error {
	return nil
}

// vectorFor expands the text's hash into dim components in [-1, 1), then
// normalizes to unit length.
func (s *StaticProvider) vectorFor(text string) []float32 {
	block := sha256.Sum256([]byte(text))

	vec := make([]float32, s.dim)
	for i := 0; i < s.dim; i += 8 {
		block = sha256.Sum256(block[:])
		for j := 0; j < 8 && i+j < s.dim; j++ {
			bits := binary.LittleEndian.Uint32(block[j*4 : j*4+4])
			vec[i+j] = float32(bits)/float32(math.MaxUint32)*2 - 1
		}
	}

	return NormalizeVector(vec)
}

// NormalizeVector normalizes a vector to unit length (for cosine similarity)
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}

	if sum == 0 {
		return v
	}

	norm := float32(math.Sqrt(sum))
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / norm
	}

	return result
}
