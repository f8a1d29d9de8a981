package minispark

import "sync"

// BlockingQueue is an unbounded FIFO guarded by a single mutex and condition
// variable. Enqueue never blocks; Dequeue blocks until an item is available
// or the queue is shut down. Because the same mutex guards both the item
// slice and the shutdown flag, a waiter's re-check of either condition on
// wakeup can never race with a concurrent shutdown the way a second lock
// acquisition would.
type BlockingQueue[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []T
	shutdown bool
}

// NewBlockingQueue returns an empty, running queue.
func NewBlockingQueue[T any]() *BlockingQueue[T] {
	q := &BlockingQueue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends item and wakes one waiting consumer. A no-op after Shutdown.
func (q *BlockingQueue[T]) Enqueue(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.shutdown {
		return
	}
	q.items = append(q.items, item)
	q.cond.Signal()
}

// Dequeue removes and returns the oldest item. ok is false only once the
// queue has been shut down and drained.
func (q *BlockingQueue[T]) Dequeue() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.shutdown {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return item, false
	}
	item, q.items = q.items[0], q.items[1:]
	return item, true
}

// Len reports the number of items currently queued.
func (q *BlockingQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Shutdown marks the queue closed and wakes every blocked Dequeue. Queued
// items already present are still returned by Dequeue before it reports !ok.
func (q *BlockingQueue[T]) Shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.shutdown = true
	q.cond.Broadcast()
}

// WorkQueue and MetricQueue are the two specializations spec'd for the
// engine: one carrying units of execution, one carrying completed-task
// timing records for the monitor to drain.
type (
	WorkQueue   = BlockingQueue[*Task]
	MetricQueue = BlockingQueue[*TaskMetric]
)
