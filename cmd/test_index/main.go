package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/semdex/semdex/internal/builder"
	"github.com/semdex/semdex/internal/embedder"
	"github.com/semdex/semdex/internal/extractor"
	"github.com/semdex/semdex/internal/searcher"
	"github.com/semdex/semdex/internal/store"
	"github.com/semdex/semdex/internal/tokenizer"
)

// Offline smoke test for the full pipeline: discover, extract, embed with
// the static provider, persist, reload, and search. No network required.
func main() {
	fmt.Println("Testing index pipeline...")

	tmpDir, err := os.MkdirTemp("", "semdex-test-*")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testC := `#include <stdio.h>

int add(int a, int b) {
    return a + b;
}

int multiply(int a, int b) {
    return a * b;
}
`
	testPy := `def greet(name):
    print(f"hello {name}")
`
	srcDir := filepath.Join(tmpDir, "src")
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		log.Fatalf("Failed to create source dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "math.c"), []byte(testC), 0644); err != nil {
		log.Fatalf("Failed to write test file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "greet.py"), []byte(testPy), 0644); err != nil {
		log.Fatalf("Failed to write test file: %v", err)
	}

	logger := zap.NewNop()
	tok := tokenizer.NewHeuristic()

	client, err := embedder.NewClient(embedder.NewStaticProvider(0), "static-test", tok)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}
	defer client.Close()

	indexPath := filepath.Join(tmpDir, "index.json")
	st := store.NewFileStore(indexPath, logger)

	b := builder.New(extractor.New(tok), client, st, logger)

	files, err := builder.DiscoverSources(srcDir, []string{".c", ".py"}, logger)
	if err != nil {
		log.Fatalf("Failed to discover sources: %v", err)
	}

	ctx := context.Background()
	idx, err := b.Build(ctx, files, builder.Options{
		OnProgress: func(pct int) { fmt.Printf("\r  progress: %d%%", pct) },
	})
	fmt.Println()
	if err != nil {
		log.Fatalf("Failed to build index: %v", err)
	}

	fmt.Printf("\nBuild Statistics:\n")
	fmt.Printf("  Files Discovered: %d\n", len(files))
	fmt.Printf("  Snippets Indexed: %d\n", idx.Len())
	fmt.Printf("  Vector Dimension: %d\n", idx.Dimension())
	fmt.Printf("  Model: %s\n", idx.Model)

	srch := searcher.New(client, logger)
	results, err := srch.Search(ctx, "add two numbers", 3, idx)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	fmt.Printf("\nSearch Results for %q:\n", "add two numbers")
	for i, r := range results {
		fmt.Printf("  %d. %s (%s) similarity=%.4f\n", i+1, r.Snippet.Name, r.Snippet.File, r.Similarity)
	}

	// Verify the persisted index round-trips
	reloaded, err := st.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to reload index: %v", err)
	}

	fmt.Printf("\nVerification:\n")
	fmt.Printf("  Snippets on Disk: %d\n", reloaded.Len())

	if reloaded.Len() == idx.Len() && idx.Len() > 0 && len(results) > 0 {
		fmt.Println("\n✓ SUCCESS: Index built, persisted, and searchable!")
	} else {
		fmt.Println("\n✗ FAILURE: Persisted index does not match!")
		os.Exit(1)
	}
}
