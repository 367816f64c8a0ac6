package progress

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/schollz/progressbar/v3"
)

// Options configures the progress reporter.
type Options struct {
	// Output is where the bar is rendered.
	// Default: os.Stderr
	Output io.Writer

	// Description is shown next to the bar.
	// Default: "downloading"
	Description string
}

// Reporter tracks chunk completion for one download job at a time and
// renders a progress bar while the job runs.
type Reporter struct {
	opts Options

	mu  sync.Mutex
	bar *progressbar.ProgressBar

	inProgress atomic.Int32
	completed  atomic.Int32
	failed     atomic.Int32
}

// NewReporter creates a reporter. It renders nothing until Begin.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.Description == "" {
		opts.Description = "downloading"
	}
	return &Reporter{opts: opts}
}

// Begin resets the counters and starts a fresh bar for a job of
// totalBytes across totalChunks range tasks.
func (r *Reporter) Begin(totalBytes int64, totalChunks int) {
	r.inProgress.Store(0)
	r.completed.Store(0)
	r.failed.Store(0)

	bar := progressbar.NewOptions64(totalBytes,
		progressbar.OptionSetDescription(r.opts.Description),
		progressbar.OptionSetWriter(r.opts.Output),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)

	r.mu.Lock()
	r.bar = bar
	r.mu.Unlock()
}

// ChunkStarted marks one chunk as in flight.
func (r *Reporter) ChunkStarted() {
	r.inProgress.Add(1)
}

// ChunkCompleted records size downloaded bytes for a finished chunk.
func (r *Reporter) ChunkCompleted(size int64) {
	r.inProgress.Add(-1)
	r.completed.Add(1)

	r.mu.Lock()
	if r.bar != nil {
		r.bar.Add64(size)
	}
	r.mu.Unlock()
}

// ChunkFailed removes a failed chunk from the in-flight count.
func (r *Reporter) ChunkFailed() {
	r.inProgress.Add(-1)
	r.failed.Add(1)
}

// Finish closes out the current bar.
func (r *Reporter) Finish() {
	r.mu.Lock()
	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
	r.mu.Unlock()
}

// Completed returns the number of chunks reported complete since Begin.
func (r *Reporter) Completed() int {
	return int(r.completed.Load())
}

// Failed returns the number of chunks reported failed since Begin.
func (r *Reporter) Failed() int {
	return int(r.failed.Load())
}

// InProgress returns the number of chunks currently in flight.
func (r *Reporter) InProgress() int {
	return int(r.inProgress.Load())
}
