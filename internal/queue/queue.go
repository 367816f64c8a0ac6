package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned by Put and Get once the queue has been closed.
var ErrClosed = errors.New("queue: closed")

// Queue is a fixed-capacity blocking FIFO queue. Put blocks while the
// queue is full and Get blocks while it is empty. Both are safe for
// concurrent use by any number of goroutines.
//
// Items are stored in a ring buffer guarded by a mutex, with a pair of
// counting semaphores tracking free slots and available items. A permit
// is always acquired before the mutex, and the mutex is released before
// the paired semaphore is signalled, so the critical section is O(1)
// and never blocks.
//
// With a single producer, items are dequeued in exactly the order they
// were enqueued. With multiple producers, each producer's own order is
// preserved in the interleaving; no item is ever lost or duplicated.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	count int
	read  int
	write int

	slots chan struct{} // free slots, starts full
	avail chan struct{} // readable items, starts empty

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a queue holding at most capacity items.
func New[T any](capacity int) (*Queue[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("queue: capacity must be positive, got %d", capacity)
	}

	q := &Queue[T]{
		items: make([]T, capacity),
		slots: make(chan struct{}, capacity),
		avail: make(chan struct{}, capacity),
		done:  make(chan struct{}),
	}
	for i := 0; i < capacity; i++ {
		q.slots <- struct{}{}
	}
	return q, nil
}

// Put inserts item at the tail of the queue. It blocks while the queue
// is full, returning early only if ctx is cancelled or the queue is
// closed.
func (q *Queue[T]) Put(ctx context.Context, item T) error {
	select {
	case <-q.slots:
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	q.mu.Lock()
	q.items[q.write] = item
	q.write = (q.write + 1) % len(q.items)
	q.count++
	q.mu.Unlock()

	q.avail <- struct{}{}
	return nil
}

// Get removes and returns the oldest item in the queue. It blocks while
// the queue is empty, returning early only if ctx is cancelled or the
// queue is closed.
func (q *Queue[T]) Get(ctx context.Context) (T, error) {
	var zero T

	select {
	case <-q.avail:
	case <-q.done:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	q.mu.Lock()
	item := q.items[q.read]
	q.items[q.read] = zero
	q.read = (q.read + 1) % len(q.items)
	q.count--
	q.mu.Unlock()

	q.slots <- struct{}{}
	return item, nil
}

// Len returns the number of items currently buffered.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the queue's capacity, fixed at construction.
func (q *Queue[T]) Cap() int {
	return len(q.items)
}

// Close unblocks every pending and future Put and Get with ErrClosed.
// Items still buffered when Close is called are discarded. Close is
// safe to call more than once and from any goroutine.
func (q *Queue[T]) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}
