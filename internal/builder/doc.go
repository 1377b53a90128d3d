// Package builder coordinates the end-to-end index build pipeline.
//
// A build extracts snippets from the given source files, embeds them through
// the embedding client, and persists the aligned result as one unit.
//
// # Basic Usage
//
//	b := builder.New(extractor, client, store, logger)
//
//	idx, err := b.Build(ctx, files, builder.Options{
//	    ForceRebuild: false,
//	    OnProgress:   func(pct int) { fmt.Printf("%d%%\n", pct) },
//	})
//
// # Build Pipeline
//
//  1. Reuse: without ForceRebuild, a loadable persisted index is returned
//     immediately, with no extraction and no provider calls.
//  2. Extract: each file becomes zero or more snippets (progress 5..50).
//  3. Embed: snippet code goes to the embedding client in batches
//     (progress 50..95). Provider failures degrade, they do not abort.
//  4. Persist: the aligned index replaces whatever was stored (progress 100).
//
// # Cancellation
//
// The context is polled at file and batch boundaries. A cancelled build
// returns types.ErrBuildCancelled and never reaches the save, so the
// previously persisted index stays exactly as it was.
//
// # Async Jobs
//
// StartJob runs the same pipeline on its own goroutine:
//
//	job := b.StartJob(ctx, files, builder.Options{})
//	for pct := range job.Progress() {
//	    updateUI(pct)
//	}
//	idx, err := job.Wait()
//
// Progress delivery is latest-wins: a consumer that falls behind misses
// intermediate percentages but never slows the build down. Only one build
// runs at a time; concurrent attempts fail fast with
// types.ErrBuildInProgress.
package builder
