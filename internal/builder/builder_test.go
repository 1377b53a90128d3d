package builder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semdex/semdex/internal/embedder"
	"github.com/semdex/semdex/internal/extractor"
	"github.com/semdex/semdex/internal/store"
	"github.com/semdex/semdex/internal/tokenizer"
	"github.com/semdex/semdex/pkg/types"
)

// countingProvider is a deterministic in-memory provider that tracks calls.
type countingProvider struct {
	mu    sync.Mutex
	dim   int
	calls int

	failAll   bool
	block     chan struct{} // when set, EmbedBatch parks until closed
	entered   chan struct{} // closed on the first EmbedBatch call
	enterOnce sync.Once

	cancelAfterCalls int
	cancel           context.CancelFunc
}

func (p *countingProvider) EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error) {
	p.mu.Lock()
	p.calls++
	calls := p.calls
	p.mu.Unlock()

	if p.entered != nil {
		p.enterOnce.Do(func() { close(p.entered) })
	}
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.cancelAfterCalls > 0 && calls == p.cancelAfterCalls {
		p.cancel()
	}
	if p.failAll {
		return nil, errors.New("provider down")
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, p.dim)
		for j := range vec {
			vec[j] = float32(len(text) + i + j + 1)
		}
		out[i] = vec
	}
	return out, nil
}

func (p *countingProvider) Name() string { return "counting" }
func (p *countingProvider) Close() error { return nil }

func (p *countingProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

var buildFiles = []SourceFile{
	{Path: "src/math.c", Content: "int add(int a, int b) { return a + b; }\nvoid log(const char* s) { puts(s); }\n"},
	{Path: "script.py", Content: "def greet():\n    return 'hi'\n"},
}

func newTestBuilder(t *testing.T, provider embedder.Provider, indexPath string) *Builder {
	t.Helper()
	tok := tokenizer.NewHeuristic()
	client, err := embedder.NewClient(provider, "test-model", tok, embedder.WithBatchSize(2))
	require.NoError(t, err)
	st := store.NewFileStore(indexPath, nil)
	return New(extractor.New(tok), client, st, nil)
}

func TestBuild_AlignedIndex(t *testing.T) {
	provider := &countingProvider{dim: 4}
	path := filepath.Join(t.TempDir(), "index.json")
	b := newTestBuilder(t, provider, path)

	idx, err := b.Build(context.Background(), buildFiles, Options{})
	require.NoError(t, err)
	require.NoError(t, idx.Validate())

	// Two C functions plus one python chunk.
	require.Equal(t, 3, idx.Len())
	assert.Equal(t, "add", idx.Snippets[0].Name)
	assert.Equal(t, "log", idx.Snippets[1].Name)
	assert.Equal(t, "snippet_0", idx.Snippets[2].Name)
	assert.Equal(t, "test-model", idx.Model)
	for _, vec := range idx.Vectors {
		assert.Len(t, vec, 4)
	}

	// The same index must be persisted.
	persisted, err := store.NewFileStore(path, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, idx.Snippets, persisted.Snippets)
	assert.Equal(t, idx.Vectors, persisted.Vectors)
	assert.Equal(t, idx.Model, persisted.Model)
}

func TestBuild_ReusesPersistedIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")

	first := &countingProvider{dim: 4}
	b1 := newTestBuilder(t, first, path)
	want, err := b1.Build(context.Background(), buildFiles, Options{})
	require.NoError(t, err)
	require.Positive(t, first.callCount())

	// A fresh builder over the same store must reuse the persisted index
	// without a single provider call.
	second := &countingProvider{dim: 4}
	b2 := newTestBuilder(t, second, path)

	var progress []int
	got, err := b2.Build(context.Background(), buildFiles, Options{
		OnProgress: func(pct int) { progress = append(progress, pct) },
	})
	require.NoError(t, err)
	assert.Equal(t, 0, second.callCount())
	assert.Equal(t, want.Snippets, got.Snippets)
	assert.Equal(t, want.Vectors, got.Vectors)
	assert.Equal(t, []int{100}, progress)
}

func TestBuild_ForceRebuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	provider := &countingProvider{dim: 4}
	b := newTestBuilder(t, provider, path)

	_, err := b.Build(context.Background(), buildFiles, Options{})
	require.NoError(t, err)
	after := provider.callCount()

	_, err = b.Build(context.Background(), buildFiles, Options{ForceRebuild: true})
	require.NoError(t, err)
	assert.Greater(t, provider.callCount(), after)
}

func TestBuild_CorruptIndexRebuilds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	provider := &countingProvider{dim: 4}
	b := newTestBuilder(t, provider, path)

	idx, err := b.Build(context.Background(), buildFiles, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	assert.Positive(t, provider.callCount())
}

func TestBuild_CancelledBeforeStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	provider := &countingProvider{dim: 4}
	b := newTestBuilder(t, provider, path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Build(ctx, buildFiles, Options{ForceRebuild: true})
	assert.ErrorIs(t, err, types.ErrBuildCancelled)
	assert.Equal(t, 0, provider.callCount())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "cancelled build must not persist anything")
}

func TestBuild_CancelledMidEmbeddingLeavesPersistedIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")

	// Persist a good index first.
	setup := &countingProvider{dim: 4}
	_, err := newTestBuilder(t, setup, path).Build(context.Background(), buildFiles, Options{})
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// Rebuild with a provider that cancels the context after its first
	// batch; the second batch boundary must abort the build.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	provider := &countingProvider{dim: 4, cancelAfterCalls: 1, cancel: cancel}
	b := newTestBuilder(t, provider, path)

	_, err = b.Build(ctx, buildFiles, Options{ForceRebuild: true})
	assert.ErrorIs(t, err, types.ErrBuildCancelled)
	assert.Equal(t, 1, provider.callCount())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "persisted index must be byte-identical after a cancelled rebuild")
}

func TestBuild_SecondBuildRejectedWhileRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	provider := &countingProvider{
		dim:     4,
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	b := newTestBuilder(t, provider, path)

	job := b.StartJob(context.Background(), buildFiles, Options{ForceRebuild: true})
	<-provider.entered

	_, err := b.Build(context.Background(), buildFiles, Options{ForceRebuild: true})
	assert.ErrorIs(t, err, types.ErrBuildInProgress)

	close(provider.block)
	idx, err := job.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
}

func TestBuild_ProgressMonotoneEndsAtDone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	provider := &countingProvider{dim: 4}
	b := newTestBuilder(t, provider, path)

	var progress []int
	_, err := b.Build(context.Background(), buildFiles, Options{
		OnProgress: func(pct int) { progress = append(progress, pct) },
	})
	require.NoError(t, err)
	require.NotEmpty(t, progress)

	for i := 1; i < len(progress); i++ {
		assert.Greater(t, progress[i], progress[i-1], "progress must strictly increase")
	}
	assert.GreaterOrEqual(t, progress[0], types.ProgressStart)
	assert.Contains(t, progress, types.ProgressExtracted)
	assert.Contains(t, progress, types.ProgressEmbedded)
	assert.Equal(t, types.ProgressDone, progress[len(progress)-1])
}

func TestBuild_EmptyFileSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	provider := &countingProvider{dim: 4}
	b := newTestBuilder(t, provider, path)

	idx, err := b.Build(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 0, provider.callCount())

	// Even an empty index is persisted, so the next build reuses it.
	persisted, err := store.NewFileStore(path, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, persisted.Len())
	assert.Equal(t, "test-model", persisted.Model)
}

func TestBuild_ProviderDownStillAligned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	provider := &countingProvider{dim: 4, failAll: true}
	b := newTestBuilder(t, provider, path)

	idx, err := b.Build(context.Background(), buildFiles, Options{})
	require.NoError(t, err, "provider failures degrade, they do not abort")
	require.NoError(t, idx.Validate())
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 3, idx.DegradedCount())

	// Placeholders fall back to the default dimension for unknown models.
	for _, vec := range idx.Vectors {
		assert.Len(t, vec, embedder.DefaultDimension)
	}
}
