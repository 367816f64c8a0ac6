// Package downloader fetches a resource over HTTP/1.0 in parallel
// byte-range chunks and reassembles them into a single buffer.
//
// A Downloader owns one bounded task queue and a fixed pool of worker
// goroutines, created by Open and torn down by Close. Each Fetch
// discovers the resource size with a HEAD request, partitions it into
// disjoint ranges, and enqueues one task per range; workers perform the
// ranged GETs and write each payload into a shared pre-sized buffer at
// the task's destination offset. Because the ranges are disjoint by
// construction, the buffer needs no locking; only the remaining-task
// counter does.
//
// # Usage
//
//	d, err := downloader.Open(downloader.Options{Workers: 8})
//	defer d.Close()
//
//	data, err := d.Fetch(ctx, "example.com", "big.bin", 80)
//
// Enqueueing blocks when the queue is at capacity. That is the intended
// backpressure, not an error: the queue bounds how many tasks are
// outstanding at once, not how many a job may have in total.
//
// Fetch never returns partial data: if any chunk fails, the whole fetch
// reports a failure instead of a buffer with holes in it.
package downloader
