package builder

import (
	"context"

	"github.com/google/uuid"

	"github.com/semdex/semdex/pkg/types"
)

// Job is one asynchronous build. Progress streams on a small latest-wins
// channel, so a slow consumer never stalls the build; it only misses
// intermediate values.
type Job struct {
	id       string
	progress chan int
	done     chan struct{}

	idx *types.Index
	err error
}

// StartJob runs Build on its own goroutine and returns immediately.
func (b *Builder) StartJob(ctx context.Context, files []SourceFile, opts Options) *Job {
	job := &Job{
		id:       uuid.NewString(),
		progress: make(chan int, 1),
		done:     make(chan struct{}),
	}

	caller := opts.OnProgress
	opts.OnProgress = func(pct int) {
		job.offer(pct)
		if caller != nil {
			caller(pct)
		}
	}

	go func() {
		job.idx, job.err = b.Build(ctx, files, opts)
		close(job.progress)
		close(job.done)
	}()

	return job
}

// ID returns the job identifier.
func (j *Job) ID() string {
	return j.id
}

// Progress returns the progress channel. It carries the most recent
// percentage and closes when the build finishes.
func (j *Job) Progress() <-chan int {
	return j.progress
}

// Done returns a channel that closes when the build finishes.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the build finishes and returns its outcome.
func (j *Job) Wait() (*types.Index, error) {
	<-j.done
	return j.idx, j.err
}

// offer delivers pct without blocking, displacing an unread older value.
// Only the build goroutine sends, so the retry terminates.
func (j *Job) offer(pct int) {
	for {
		select {
		case j.progress <- pct:
			return
		default:
		}
		select {
		case <-j.progress:
		default:
		}
	}
}
