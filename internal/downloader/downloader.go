package downloader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	getterhttp "github.com/rekanorman/getter/internal/http"
	"github.com/rekanorman/getter/internal/logging"
	"github.com/rekanorman/getter/internal/partition"
	"github.com/rekanorman/getter/internal/progress"
	"github.com/rekanorman/getter/internal/queue"
)

// ErrBadChunk indicates a chunk response whose payload matches neither
// the requested byte range nor the full resource.
var ErrBadChunk = errors.New("downloader: chunk payload does not match requested range")

// ErrClosed is returned by Fetch after the downloader has been closed.
var ErrClosed = errors.New("downloader: closed")

// Options configures a Downloader.
type Options struct {
	// Workers is the number of parallel download workers.
	// Default: 8
	Workers int

	// QueueCapacity bounds how many tasks may be waiting or in flight
	// at once. It may be smaller than Workers or than a job's task
	// count: enqueueing then simply blocks until a worker makes room.
	// Default: 2 * Workers
	QueueCapacity int

	// HTTP configures the transfer primitive.
	HTTP getterhttp.Options

	// Logger receives per-task diagnostics.
	// Default: discard everything
	Logger *log.Logger

	// Progress is an optional progress reporter.
	Progress *progress.Reporter
}

// Downloader owns a bounded task queue and a fixed pool of persistent
// workers. It is safe for concurrent use, though tasks from concurrent
// Fetch calls share the same queue and workers.
type Downloader struct {
	opts  Options
	queue *queue.Queue[item]
	wg    sync.WaitGroup

	// done is closed by Close once the workers are gone. Tasks still
	// buffered at that point have no consumer left, so Fetch waits on
	// done as well as on its own job.
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

// item is what travels through the queue: either a range task bound to
// a job, or a shutdown sentinel telling one worker to exit. A tagged
// struct keeps shutdown explicit instead of relying on a magic value.
type item struct {
	shutdown bool
	task     partition.Task
	job      *job
}

// job is the shared state of one Fetch: the pre-sized output buffer,
// the remaining-task counter, the first error seen, and the completion
// signal. Workers touch only their own disjoint slice of buf; the
// counter and error are guarded by mu.
type job struct {
	ctx context.Context
	buf []byte

	mu        sync.Mutex
	remaining int
	err       error

	done chan struct{}
}

// complete records one finished task, keeping the first error, and
// signals the orchestrator once every task has reported.
func (j *job) complete(err error) {
	j.mu.Lock()
	if err != nil && j.err == nil {
		j.err = err
	}
	j.remaining--
	finished := j.remaining == 0
	j.mu.Unlock()

	if finished {
		close(j.done)
	}
}

// Open allocates the bounded task queue and starts opts.Workers
// persistent workers looping on it.
func Open(opts Options) (*Downloader, error) {
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.QueueCapacity <= 0 {
		opts.QueueCapacity = 2 * opts.Workers
	}
	opts.HTTP = opts.HTTP.WithDefaults()
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	q, err := queue.New[item](opts.QueueCapacity)
	if err != nil {
		return nil, err
	}

	d := &Downloader{opts: opts, queue: q, done: make(chan struct{})}
	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	return d, nil
}

// Fetch downloads host/page in parallel chunks and returns the
// reassembled resource. A zero-length resource yields an empty buffer
// without enqueueing any tasks. If any chunk fails, Fetch returns the
// failure instead of a partially filled buffer.
func (d *Downloader) Fetch(ctx context.Context, host, page string, port int) ([]byte, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	length, err := partition.ContentLength(ctx, d.opts.HTTP, host, page, port)
	if err != nil {
		return nil, fmt.Errorf("resolve content length: %w", err)
	}

	tasks := partition.Ranges(host, page, port, length, d.opts.Workers)
	if len(tasks) == 0 {
		return []byte{}, nil
	}

	d.opts.Logger.WithFields(log.Fields{
		"host":   host,
		"page":   page,
		"length": length,
		"tasks":  len(tasks),
	}).Info("starting download")

	if d.opts.Progress != nil {
		d.opts.Progress.Begin(length, len(tasks))
		defer d.opts.Progress.Finish()
	}

	j := &job{
		ctx:       ctx,
		buf:       make([]byte, length),
		remaining: len(tasks),
		done:      make(chan struct{}),
	}

	for i, t := range tasks {
		// Put blocks when the queue is at capacity. That is the
		// intended backpressure, not an error.
		if err := d.queue.Put(ctx, item{task: t, job: j}); err != nil {
			// The rest were never enqueued; account for them so the
			// job still drains to zero.
			for range tasks[i:] {
				j.complete(fmt.Errorf("enqueue task: %w", err))
			}
			break
		}
	}

	select {
	case <-j.done:
	case <-d.done:
		// Close ran while our tasks were in flight. Any task still
		// buffered will never be dequeued, so waiting on the job
		// would hang. Prefer the job's result if it did finish.
		select {
		case <-j.done:
		default:
			return nil, ErrClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	j.mu.Lock()
	err = j.err
	j.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("fetch %s/%s: %w", host, page, err)
	}
	return j.buf, nil
}

// Close shuts the worker pool down: one shutdown sentinel is enqueued
// per worker, every worker is joined, and the queue is released. No
// worker is left blocked on the queue after Close returns, and any
// Fetch still in flight fails with ErrClosed instead of waiting on
// tasks that no worker will ever dequeue.
func (d *Downloader) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	for i := 0; i < d.opts.Workers; i++ {
		if err := d.queue.Put(context.Background(), item{shutdown: true}); err != nil {
			break
		}
	}
	d.wg.Wait()
	d.queue.Close()
	close(d.done)
	return nil
}

// worker loops on the queue until it dequeues a shutdown sentinel or
// the queue is closed out from under it.
func (d *Downloader) worker(id int) {
	defer d.wg.Done()

	logger := d.opts.Logger.WithField("worker", id)

	for {
		it, err := d.queue.Get(context.Background())
		if err != nil {
			return
		}
		if it.shutdown {
			logger.Debug("worker shutting down")
			return
		}

		if d.opts.Progress != nil {
			d.opts.Progress.ChunkStarted()
		}

		err = d.runTask(it.task, it.job)
		if err != nil {
			logger.WithField("range", it.task.Range()).Warnf("chunk failed: %v", err)
			if d.opts.Progress != nil {
				d.opts.Progress.ChunkFailed()
			}
		} else {
			logger.WithField("range", it.task.Range()).Debug("chunk done")
			if d.opts.Progress != nil {
				d.opts.Progress.ChunkCompleted(it.task.Length())
			}
		}

		it.job.complete(err)
	}
}

// runTask performs the ranged GET for one task and copies the payload
// into the job buffer at the task's destination offset.
func (d *Downloader) runTask(t partition.Task, j *job) error {
	resp, err := getterhttp.Query(j.ctx, d.opts.HTTP, t.Host, t.Page, t.Range(), t.Port)
	if err != nil {
		return fmt.Errorf("chunk %s: %w", t.Range(), err)
	}

	if code, err := getterhttp.StatusCode(resp); err == nil && code >= 400 {
		return fmt.Errorf("chunk %s: server returned status %d", t.Range(), code)
	}

	body := resp.Bytes()[getterhttp.BodyOffset(resp):]

	switch {
	case int64(len(body)) == t.Length():
		copy(j.buf[t.Offset:], body)
	case int64(len(body)) == int64(len(j.buf)):
		// The server ignored the Range header and sent the whole
		// resource, which HTTP/1.0 allows. Take the slice this task
		// is responsible for.
		copy(j.buf[t.Offset:], body[t.Start:t.End+1])
	default:
		return fmt.Errorf("chunk %s: got %d body bytes, want %d: %w",
			t.Range(), len(body), t.Length(), ErrBadChunk)
	}
	return nil
}
