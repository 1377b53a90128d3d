package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/semdex/semdex/internal/config"
	"github.com/semdex/semdex/internal/mcp"
	"github.com/semdex/semdex/internal/store"
	"github.com/semdex/semdex/internal/watch"
	"github.com/semdex/semdex/pkg/utils"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("Semdex MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", store.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", store.DriverName)
		os.Exit(0)
	}

	// Pick up OPENAI_API_KEY and friends from a local .env; the real
	// environment wins over file values
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr (stdout is reserved for MCP protocol)
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("semdex starting",
		zap.String("version", version),
		zap.String("build_mode", store.BuildMode),
		zap.String("index_backend", cfg.Index.Backend),
		zap.String("index_path", cfg.Index.Path))

	srv, err := mcp.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create MCP server", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Watch.Enabled {
		debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
		watcher := watch.New(cfg.Watch.Directories, cfg.WatchExtensions(), func() {
			if err := srv.Rebuild(ctx); err != nil {
				logger.Warn("watch rebuild failed", zap.Error(err))
			}
		}, watch.WithDebounce(debounce), watch.WithLogger(logger))

		if err := watcher.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watcher.Stop()

		logger.Info("watching for source changes",
			zap.Strings("directories", cfg.Watch.Directories))
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		logger.Info("MCP server ready, listening on stdio")
		errChan <- srv.Serve(ctx)
	}()

	// Wait for shutdown signal or server exit
	select {
	case sig := <-sigChan:
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errChan:
		if err != nil {
			logger.Fatal("Server error", zap.Error(err))
		}
	}

	logger.Info("Server stopped")
}
