package config

import "fmt"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = "file"
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = ".semdex/code_embeddings.json"
	}
	if cfg.Index.Extensions == nil {
		cfg.Index.Extensions = []string{".c", ".h", ".cpp", ".hpp", ".py", ".js", ".sh"}
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 100
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 8000
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.Tokenizer == "" {
		cfg.Embedding.Tokenizer = "tiktoken"
	}
	if cfg.Search.DefaultTopK == 0 {
		cfg.Search.DefaultTopK = 5
	}
	if cfg.Search.MaxTopK == 0 {
		cfg.Search.MaxTopK = 100
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 500
	}
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	switch c.Index.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("index.backend must be file or sqlite, got %q", c.Index.Backend)
	}
	switch c.Embedding.Provider {
	case "", "openai", "static":
	default:
		return fmt.Errorf("embedding.provider must be openai or static, got %q", c.Embedding.Provider)
	}
	switch c.Embedding.Tokenizer {
	case "tiktoken", "heuristic":
	default:
		return fmt.Errorf("embedding.tokenizer must be tiktoken or heuristic, got %q", c.Embedding.Tokenizer)
	}
	if c.Embedding.BatchSize < 1 {
		return fmt.Errorf("embedding.batch_size must be positive, got %d", c.Embedding.BatchSize)
	}
	if c.Embedding.MaxTokens < 1 {
		return fmt.Errorf("embedding.max_tokens must be positive, got %d", c.Embedding.MaxTokens)
	}
	if c.Search.DefaultTopK < 1 || c.Search.MaxTopK < c.Search.DefaultTopK {
		return fmt.Errorf("search limits invalid: default_top_k=%d max_top_k=%d",
			c.Search.DefaultTopK, c.Search.MaxTopK)
	}
	if c.Watch.Enabled && len(c.Watch.Directories) == 0 {
		return fmt.Errorf("watch.enabled requires at least one watch directory")
	}
	return nil
}
