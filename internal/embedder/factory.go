package embedder

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/semdex/semdex/internal/tokenizer"
)

// Config specifies which provider to build and how the client batches work
type Config struct {
	Provider  string // "openai" or "static"; empty means detect from env
	Model     string // embedding model; empty means DefaultModel
	APIKey    string // remote provider key; empty means read from env
	BaseURL   string // optional API endpoint override
	BatchSize int
	MaxTokens int
	CacheSize int
	Dimension int // static provider vector size
}

// New creates a Client from explicit configuration.
func New(cfg Config, tok tokenizer.Tokenizer, logger *zap.Logger) (*Client, error) {
	name := cfg.Provider
	if name == "" {
		name = DetectProvider()
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	var provider Provider
	switch name {
	case ProviderOpenAI:
		var provOpts []OpenAIOption
		if cfg.BaseURL != "" {
			provOpts = append(provOpts, WithBaseURL(cfg.BaseURL))
		}
		p, err := NewOpenAIProvider(cfg.APIKey, provOpts...)
		if err != nil {
			return nil, err
		}
		provider = p
	case ProviderStatic:
		provider = NewStaticProvider(cfg.Dimension)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
	}

	opts := []Option{
		WithBatchSize(cfg.BatchSize),
		WithMaxTokens(cfg.MaxTokens),
		WithCacheSize(cfg.CacheSize),
	}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}

	return NewClient(provider, model, tok, opts...)
}

// NewFromEnv creates a Client configured entirely from the environment.
func NewFromEnv(tok tokenizer.Tokenizer, logger *zap.Logger) (*Client, error) {
	return New(Config{}, tok, logger)
}

// DetectProvider picks a provider from the environment: an explicit
// SEMDEX_EMBEDDING_PROVIDER wins, otherwise a set OPENAI_API_KEY selects
// openai, otherwise the offline static provider.
func DetectProvider() string {
	if p := os.Getenv(EnvProvider); p != "" {
		return p
	}

	if os.Getenv(EnvOpenAIKey) != "" {
		return ProviderOpenAI
	}

	return ProviderStatic
}
