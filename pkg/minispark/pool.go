package minispark

import (
	"fmt"
	"sync"
	"time"

	"github.com/minispark/minispark/pkg/logging"
)

// Pool is a fixed-size worker pool dispatching Tasks pulled from a
// WorkQueue. Unlike a plain channel-fed pool, callers need to know when
// every outstanding task — queued or in flight — has drained, so the pool
// tracks an outstanding count under its own lock and exposes WaitIdle as a
// countdown-latch wait rather than draining a results channel.
type Pool struct {
	numWorkers int
	queue      *WorkQueue
	metrics    *MetricQueue
	log        *logging.Logger
	prom       *promMetrics

	mu       sync.Mutex
	idleCond *sync.Cond
	running  int
	started  bool
	shutdown bool
	wg       sync.WaitGroup
}

// NewPool constructs a pool with numWorkers workers draining queue. Tasks
// completed by a worker have their metric handed to metrics for the
// monitor to pick up.
func NewPool(numWorkers int, queue *WorkQueue, metrics *MetricQueue, log *logging.Logger, prom *promMetrics) *Pool {
	p := &Pool{
		numWorkers: numWorkers,
		queue:      queue,
		metrics:    metrics,
		log:        log.WithComponent("pool"),
		prom:       prom,
	}
	p.idleCond = sync.NewCond(&p.mu)
	return p
}

// Start spawns the worker goroutines. Calling Start twice is an error.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return fmt.Errorf("pool already started")
	}
	if p.shutdown {
		return fmt.Errorf("pool already shut down")
	}
	p.started = true
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return nil
}

// Submit enqueues task and counts it against the outstanding total that
// WaitIdle watches. Submission itself cannot fail (the queue is
// unbounded); Submit returns an error only once the pool has begun
// shutting down.
func (p *Pool) Submit(task *Task) error {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return ErrQueueFull
	}
	p.running++
	p.mu.Unlock()

	p.queue.Enqueue(task)
	return nil
}

// WaitIdle blocks until no task is queued or in flight. It's what actions
// call after execute() to be sure a dataset is fully materialized before
// reading its partitions.
func (p *Pool) WaitIdle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.running > 0 {
		p.idleCond.Wait()
	}
}

// Shutdown stops accepting new tasks, closes the work queue so blocked
// workers unblock, and waits for every worker goroutine to exit. Calling
// Shutdown more than once is a safe no-op.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return
	}
	p.shutdown = true
	p.mu.Unlock()

	p.queue.Shutdown()
	p.wg.Wait()
}

// Stats is a snapshot of pool activity, surfaced on the debug endpoint.
type Stats struct {
	Workers int
	Running int
	Queued  int
}

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()
	return Stats{Workers: p.numWorkers, Running: running, Queued: p.queue.Len()}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	workerLog := p.log.WithField("worker", id)

	for {
		task, ok := p.queue.Dequeue()
		if !ok {
			return
		}
		if task == nil || task.metric == nil {
			// Invariant violation: the queue should never hand back a
			// submitted task with no metric record. The task is logged
			// and dropped without updating any node's completion state —
			// this only accounts for the pool's own outstanding count.
			workerLog.Errorf("%v: dequeued task with no metric record", ErrMissingTaskResult)
			p.mu.Lock()
			p.running--
			stillRunning := p.running
			p.mu.Unlock()
			if stillRunning == 0 {
				p.idleCond.Broadcast()
			}
			continue
		}

		task.metric.Scheduled = time.Now()
		start := time.Now()
		runKernel(task.node, task.pnum, p.log)
		task.metric.Duration = time.Since(start)

		node := task.node
		node.mu.Lock()
		node.completedPartitions++
		done := node.completedPartitions == node.completionGoal
		if done {
			node.state = nodeComplete
			node.cond.Broadcast()
		}
		node.mu.Unlock()

		p.metrics.Enqueue(task.metric)

		p.mu.Lock()
		p.running--
		stillRunning := p.running
		p.mu.Unlock()
		if stillRunning == 0 {
			p.idleCond.Broadcast()
		}

		if done {
			workerLog.Debugf("node %d complete (%d partitions)", node.id, node.completedPartitions)
		}
	}
}
