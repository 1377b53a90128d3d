package builder

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/semdex/semdex/internal/embedder"
	"github.com/semdex/semdex/internal/extractor"
	"github.com/semdex/semdex/internal/store"
	"github.com/semdex/semdex/pkg/types"
)

// Builder coordinates the indexing pipeline: extract -> embed -> persist.
// One build runs at a time; a second caller gets types.ErrBuildInProgress
// instead of blocking.
type Builder struct {
	extractor *extractor.Extractor
	client    *embedder.Client
	store     store.Store
	logger    *zap.Logger

	building atomic.Bool
}

// SourceFile is one file handed to Build. Content is the full file text;
// discovery and reading happen in the caller.
type SourceFile struct {
	Path    string
	Content string
}

// Options controls a single build.
type Options struct {
	// ForceRebuild skips the persisted-index shortcut and always rebuilds.
	ForceRebuild bool

	// OnProgress, when set, receives build progress percentages. Values
	// are monotone non-decreasing, 0..100, with 100 delivered exactly once
	// at the end of a successful build.
	OnProgress func(pct int)
}

// New creates a Builder.
func New(ex *extractor.Extractor, client *embedder.Client, st store.Store, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		extractor: ex,
		client:    client,
		store:     st,
		logger:    logger,
	}
}

// Build produces the index for files and persists it. Without ForceRebuild a
// loadable persisted index is returned as-is, with no extraction and no
// provider calls. Cancellation aborts before the save, leaving whatever was
// persisted before untouched, and surfaces as types.ErrBuildCancelled.
func (b *Builder) Build(ctx context.Context, files []SourceFile, opts Options) (*types.Index, error) {
	if !b.building.CompareAndSwap(false, true) {
		return nil, types.ErrBuildInProgress
	}
	defer b.building.Store(false)

	report := newProgressReporter(opts.OnProgress)

	if !opts.ForceRebuild {
		idx, err := b.store.Load(ctx)
		switch {
		case err == nil:
			b.logger.Info("reusing persisted index",
				zap.Int("snippets", idx.Len()),
				zap.String("model", idx.Model))
			report.Report(types.ProgressDone)
			return idx, nil
		case errors.Is(err, types.ErrIndexNotFound):
			b.logger.Debug("no persisted index, building")
		case isCancellation(err):
			return nil, fmt.Errorf("%w: %v", types.ErrBuildCancelled, err)
		default:
			b.logger.Warn("persisted index unusable, rebuilding", zap.Error(err))
		}
	}

	report.Report(types.ProgressDiscovered)

	snippets := make([]types.Snippet, 0, len(files))
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrBuildCancelled, err)
		}
		snippets = append(snippets, b.extractor.Extract(file.Path, file.Content)...)
		report.Report(types.ProgressDiscovered + (i+1)*45/len(files))
	}
	report.Report(types.ProgressExtracted)

	texts := make([]string, len(snippets))
	for i, snippet := range snippets {
		texts[i] = snippet.Code
	}

	result, err := b.client.Embed(ctx, embedder.EmbedRequest{
		Texts:      texts,
		OnProgress: report.Report,
	})
	if err != nil {
		if isCancellation(err) {
			return nil, fmt.Errorf("%w: %v", types.ErrBuildCancelled, err)
		}
		return nil, fmt.Errorf("failed to embed snippets: %w", err)
	}
	report.Report(types.ProgressEmbedded)

	if result.Report.BatchFallbacks > 0 || result.Report.Placeholders > 0 || result.Report.Truncated > 0 {
		b.logger.Warn("embedding degraded",
			zap.Int("batch_fallbacks", result.Report.BatchFallbacks),
			zap.Int("placeholders", result.Report.Placeholders),
			zap.Int("truncated", result.Report.Truncated))
	}

	idx := &types.Index{
		Snippets: snippets,
		Vectors:  result.Vectors,
		Model:    b.client.Model(),
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrBuildCancelled, err)
	}
	if err := b.store.Save(ctx, idx); err != nil {
		if isCancellation(err) {
			return nil, fmt.Errorf("%w: %v", types.ErrBuildCancelled, err)
		}
		return nil, fmt.Errorf("failed to persist index: %w", err)
	}
	report.Report(types.ProgressDone)

	b.logger.Info("index built",
		zap.Int("files", len(files)),
		zap.Int("snippets", idx.Len()),
		zap.Int("dimension", idx.Dimension()),
		zap.String("model", idx.Model))

	return idx, nil
}

// isCancellation reports whether err stems from context cancellation.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
