package builder

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semdex/semdex/pkg/types"
)

func TestStartJob_DeliversOutcome(t *testing.T) {
	provider := &countingProvider{dim: 4}
	b := newTestBuilder(t, provider, filepath.Join(t.TempDir(), "index.json"))

	job := b.StartJob(context.Background(), buildFiles, Options{})
	require.NotEmpty(t, job.ID())

	var progress []int
	for pct := range job.Progress() {
		progress = append(progress, pct)
	}

	idx, err := job.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	require.NotEmpty(t, progress)
	for i := 1; i < len(progress); i++ {
		assert.Greater(t, progress[i], progress[i-1])
	}
	assert.Equal(t, types.ProgressDone, progress[len(progress)-1])

	select {
	case <-job.Done():
	default:
		t.Fatal("Done must be closed after Wait returns")
	}
}

func TestStartJob_SlowConsumerSeesLatestValue(t *testing.T) {
	provider := &countingProvider{dim: 4}
	b := newTestBuilder(t, provider, filepath.Join(t.TempDir(), "index.json"))

	job := b.StartJob(context.Background(), buildFiles, Options{})
	_, err := job.Wait()
	require.NoError(t, err)

	// Nothing was read during the build. The channel holds at most the
	// final value; earlier ones were displaced, never blocking the build.
	var got []int
	for pct := range job.Progress() {
		got = append(got, pct)
	}
	assert.Equal(t, []int{types.ProgressDone}, got)
}

func TestStartJob_ErrorsSurfaceThroughWait(t *testing.T) {
	provider := &countingProvider{dim: 4}
	b := newTestBuilder(t, provider, filepath.Join(t.TempDir(), "index.json"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := b.StartJob(ctx, buildFiles, Options{ForceRebuild: true})
	idx, err := job.Wait()
	assert.Nil(t, idx)
	assert.ErrorIs(t, err, types.ErrBuildCancelled)
}

func TestStartJob_UniqueIDs(t *testing.T) {
	provider := &countingProvider{dim: 4}
	b := newTestBuilder(t, provider, filepath.Join(t.TempDir(), "index.json"))

	first := b.StartJob(context.Background(), buildFiles, Options{})
	_, err := first.Wait()
	require.NoError(t, err)

	second := b.StartJob(context.Background(), buildFiles, Options{})
	_, err = second.Wait()
	require.NoError(t, err)

	assert.NotEqual(t, first.ID(), second.ID())
}

func TestProgressReporter_ClampsAndDedupes(t *testing.T) {
	var got []int
	r := newProgressReporter(func(pct int) { got = append(got, pct) })

	r.Report(-10)
	r.Report(0) // duplicate of the clamped -10
	r.Report(5)
	r.Report(5)
	r.Report(3)
	r.Report(50)
	r.Report(170)
	r.Report(100)

	assert.Equal(t, []int{0, 5, 50, 100}, got)
}

func TestProgressReporter_NilCallback(t *testing.T) {
	r := newProgressReporter(nil)
	r.Report(50) // must not panic
	r.Report(100)
}
