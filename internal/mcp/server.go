package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/semdex/semdex/internal/builder"
	"github.com/semdex/semdex/internal/config"
	"github.com/semdex/semdex/internal/embedder"
	"github.com/semdex/semdex/internal/extractor"
	"github.com/semdex/semdex/internal/searcher"
	"github.com/semdex/semdex/internal/store"
	"github.com/semdex/semdex/internal/tokenizer"
	"github.com/semdex/semdex/pkg/types"
)

const (
	// ServerName is the MCP server name
	ServerName = "semdex"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	cfg      *config.Config
	logger   *zap.Logger
	store    store.Store
	client   *embedder.Client
	builder  *builder.Builder
	searcher *searcher.Searcher

	mu    sync.RWMutex
	index *types.Index
}

// NewServer creates a new MCP server instance wired from cfg. The embedding
// client is shared by the builder and the searcher so both see one cache and
// one model.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tok := newTokenizer(cfg, logger)

	st, err := store.New(cfg.Index.Backend, cfg.Index.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	client, err := embedder.New(embedder.Config{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		BaseURL:   cfg.Embedding.BaseURL,
		BatchSize: cfg.Embedding.BatchSize,
		MaxTokens: cfg.Embedding.MaxTokens,
		CacheSize: cfg.Embedding.CacheSize,
	}, tok, logger)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	ex := extractor.New(tok,
		extractor.WithMaxTokens(cfg.Embedding.MaxTokens),
		extractor.WithLogger(logger))

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		cfg:      cfg,
		logger:   logger,
		store:    st,
		client:   client,
		builder:  builder.New(ex, client, st, logger),
		searcher: searcher.New(client, logger),
	}

	s.registerTools()

	return s, nil
}

// newTokenizer builds the configured tokenizer, falling back to heuristic
// counts when the tiktoken encoding cannot be loaded.
func newTokenizer(cfg *config.Config, logger *zap.Logger) tokenizer.Tokenizer {
	if cfg.Embedding.Tokenizer == "heuristic" {
		return tokenizer.NewHeuristic()
	}
	tok, err := tokenizer.NewTikToken()
	if err != nil {
		logger.Warn("tiktoken unavailable, using heuristic token counts", zap.Error(err))
		return tokenizer.NewHeuristic()
	}
	return tok
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.Close() }()
	return server.ServeStdio(s.mcp)
}

// Close releases the embedding client and the store.
func (s *Server) Close() error {
	_ = s.client.Close()
	return s.store.Close()
}

// BuildIndex discovers sources under root, builds the index, and caches the
// result for queries. An empty extensions list uses the configured one.
func (s *Server) BuildIndex(ctx context.Context, root string, force bool, extensions []string) (*types.Index, int, error) {
	if len(extensions) == 0 {
		extensions = s.cfg.Index.Extensions
	}

	files, err := builder.DiscoverSources(root, extensions, s.logger)
	if err != nil {
		return nil, 0, err
	}

	idx, err := s.builder.Build(ctx, files, builder.Options{
		ForceRebuild: force,
		OnProgress:   s.logProgress,
	})
	if err != nil {
		return nil, len(files), err
	}

	s.setIndex(idx)
	return idx, len(files), nil
}

// Rebuild rebuilds the index from the configured watch directories. The file
// watcher calls this after source changes settle. Directories are discovered
// concurrently; file order stays stable per directory.
func (s *Server) Rebuild(ctx context.Context) error {
	dirs := s.cfg.Watch.Directories
	perDir := make([][]builder.SourceFile, len(dirs))

	var g errgroup.Group
	for i, dir := range dirs {
		g.Go(func() error {
			found, err := builder.DiscoverSources(dir, s.cfg.WatchExtensions(), s.logger)
			if err != nil {
				return err
			}
			perDir[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var files []builder.SourceFile
	for _, found := range perDir {
		files = append(files, found...)
	}

	idx, err := s.builder.Build(ctx, files, builder.Options{
		ForceRebuild: true,
		OnProgress:   s.logProgress,
	})
	if err != nil {
		return err
	}

	s.setIndex(idx)
	return nil
}

func (s *Server) logProgress(pct int) {
	s.logger.Debug("build progress", zap.Int("percent", pct))
}

func (s *Server) setIndex(idx *types.Index) {
	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()
}

// getIndex returns the cached index, loading it from the store on first use.
func (s *Server) getIndex(ctx context.Context) (*types.Index, error) {
	s.mu.RLock()
	idx := s.index
	s.mu.RUnlock()
	if idx != nil {
		return idx, nil
	}

	idx, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.setIndex(idx)
	return idx, nil
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(buildIndexTool(), s.handleBuildIndex)
	s.mcp.AddTool(searchCodeTool(s.cfg.Search.DefaultTopK, s.cfg.Search.MaxTopK), s.handleSearchCode)
	s.mcp.AddTool(indexStatusTool(), s.handleIndexStatus)
}
