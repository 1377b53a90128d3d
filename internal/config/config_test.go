package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
index:
  backend: "sqlite"
  path: "./data/index.db"
embedding:
  provider: "static"
  model: "text-embedding-3-large"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Index.Backend != "sqlite" {
		t.Errorf("backend = %s, want sqlite", cfg.Index.Backend)
	}
	if cfg.Embedding.Model != "text-embedding-3-large" {
		t.Errorf("model = %s", cfg.Embedding.Model)
	}
	if cfg.Embedding.BatchSize != 100 {
		t.Errorf("batch_size should default to 100, got %d", cfg.Embedding.BatchSize)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
index:
  path: "./data/index.json"
watch:
  directories: ["./src"]
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantIndex := filepath.Join(dir, "data", "index.json")
	if cfg.Index.Path != wantIndex {
		t.Errorf("index path = %s, want %s", cfg.Index.Path, wantIndex)
	}
	if len(cfg.Watch.Directories) != 1 {
		t.Fatalf("watch directories: got %d", len(cfg.Watch.Directories))
	}
	wantWatch := filepath.Join(dir, "src")
	if cfg.Watch.Directories[0] != wantWatch {
		t.Errorf("watch directory = %s, want %s", cfg.Watch.Directories[0], wantWatch)
	}
}

func TestLoad_homeRelativePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
index:
  path: ".semdex/index.json"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if !strings.HasPrefix(cfg.Index.Path, home) {
		t.Errorf("bare relative path should expand under home: %s", cfg.Index.Path)
	}
}

func TestLoad_missingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_invalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("index: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestLoad_invalidBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
index:
  backend: "postgres"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Index.Backend != "file" {
		t.Errorf("default backend: got %s", cfg.Index.Backend)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("default model: got %s", cfg.Embedding.Model)
	}
	if cfg.Embedding.BatchSize != 100 {
		t.Errorf("default batch_size: got %d", cfg.Embedding.BatchSize)
	}
	if cfg.Embedding.MaxTokens != 8000 {
		t.Errorf("default max_tokens: got %d", cfg.Embedding.MaxTokens)
	}
	if cfg.Embedding.Tokenizer != "tiktoken" {
		t.Errorf("default tokenizer: got %s", cfg.Embedding.Tokenizer)
	}
	if cfg.Search.DefaultTopK != 5 {
		t.Errorf("default top_k: got %d", cfg.Search.DefaultTopK)
	}
	if cfg.Search.MaxTopK != 100 {
		t.Errorf("default max_top_k: got %d", cfg.Search.MaxTopK)
	}
	if len(cfg.Index.Extensions) != 7 || cfg.Index.Extensions[0] != ".c" {
		t.Errorf("default extensions: got %v", cfg.Index.Extensions)
	}
	if cfg.Watch.DebounceMS != 500 {
		t.Errorf("default debounce: got %d", cfg.Watch.DebounceMS)
	}
}

func TestDefault_expandsIndexPath(t *testing.T) {
	cfg := Default()
	if cfg.Index.Path == "" || !filepath.IsAbs(cfg.Index.Path) {
		t.Errorf("default index path should be absolute, got %q", cfg.Index.Path)
	}
}

func TestValidate_watchNeedsDirectories(t *testing.T) {
	cfg := Default()
	cfg.Watch.Enabled = true
	cfg.Watch.Directories = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when watch enabled without directories")
	}
}

func TestValidate_searchLimits(t *testing.T) {
	cfg := Default()
	cfg.Search.DefaultTopK = 50
	cfg.Search.MaxTopK = 10
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when default_top_k exceeds max_top_k")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("unset_uses_defaults", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Index.Backend != "file" {
			t.Errorf("backend = %s, want file", cfg.Index.Backend)
		}
	})

	t.Run("set_loads_file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		if err := os.WriteFile(path, []byte("debug: true\n"), 0600); err != nil {
			t.Fatal(err)
		}
		t.Setenv(EnvConfigPath, path)
		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatal(err)
		}
		if !cfg.Debug {
			t.Error("debug should be true from the configured file")
		}
	})
}

func TestWatchExtensions_fallsBackToIndex(t *testing.T) {
	cfg := Default()
	if got := cfg.WatchExtensions(); len(got) != len(cfg.Index.Extensions) {
		t.Errorf("WatchExtensions() = %v, want index extensions", got)
	}
	cfg.Watch.Extensions = []string{".go"}
	if got := cfg.WatchExtensions(); len(got) != 1 || got[0] != ".go" {
		t.Errorf("WatchExtensions() = %v, want [.go]", got)
	}
}
