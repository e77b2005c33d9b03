package signalcore

//
// Bounded single-producer/single-consumer queues
//
// Each stage of the pipeline hands items to the next stage over one of
// these. Sends never block: a full queue is a counted error and the item
// is dropped, matching the ISR/task contract in spec.md Â§3 and Â§5 ("Queue
// full is a counted error, never a blocking condition on the producer").
//

import "sync/atomic"

// boundedQueue is a thin wrapper around a buffered channel that turns a
// full channel into a counted drop instead of a blocking send.
type boundedQueue[T any] struct {
	items   chan T
	dropped atomic.Uint32
}

// newBoundedQueue creates a queue with the given capacity.
func newBoundedQueue[T any](capacity int) *boundedQueue[T] {
	return &boundedQueue[T]{items: make(chan T, capacity)}
}

// trySend attempts to enqueue an item without blocking. It reports false
// (and increments the drop counter) if the queue is full.
func (q *boundedQueue[T]) trySend(item T) bool {
	select {
	case q.items <- item:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// receive returns the channel a single consumer should range over or
// select on. Only one goroutine may consume from it.
func (q *boundedQueue[T]) receive() <-chan T {
	return q.items
}

// droppedCount returns the number of items dropped due to a full queue.
func (q *boundedQueue[T]) droppedCount() uint32 {
	return q.dropped.Load()
}

// close shuts the queue down; the consumer's range/select loop exits once
// it has drained whatever was already buffered.
func (q *boundedQueue[T]) close() {
	close(q.items)
}
