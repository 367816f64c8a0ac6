// Package queue provides a fixed-capacity blocking FIFO queue used to
// distribute work between a producer and a pool of workers.
//
// The queue is a backpressure mechanism: once capacity items are
// outstanding, producers block in Put until a consumer makes room with
// Get. This bounds memory use regardless of how many items a producer
// eventually wants to push.
//
// # Usage
//
//	q, err := queue.New[*Task](16)
//	// producer
//	err = q.Put(ctx, task)
//	// consumer
//	task, err := q.Get(ctx)
//	// shutdown
//	q.Close() // unblocks everyone with ErrClosed
package queue
