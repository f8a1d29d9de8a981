package minispark

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// execute materializes n: it recursively materializes n's dependencies
// first, derives n's partition count, allocates its partitions, computes
// the fan-out, and submits one task per unit of fan-out. It is idempotent
// — a node already complete, or already being materialized by a
// concurrent caller sharing it as a dependency, returns (after waiting)
// without resubmitting any task.
func (e *Engine) execute(n *Node) error {
	n.mu.Lock()
	switch n.state {
	case nodeComplete:
		n.mu.Unlock()
		return nil
	case nodePlanned, nodeRunning:
		n.mu.Unlock()
		return e.waitComplete(n)
	}
	n.state = nodePlanned
	n.mu.Unlock()

	// Dependencies are independent of one another (JOIN is the only
	// transform with more than one), so wait on them concurrently rather
	// than imposing an arbitrary left-to-right order.
	g, _ := errgroup.WithContext(context.Background())
	for _, dep := range n.Deps {
		dep := dep
		g.Go(func() error { return e.execute(dep) })
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("materializing dependency of node %d: %w", n.id, err)
	}

	n.mu.Lock()
	if n.Trans == TransformPartitionBy {
		if n.numPartitions <= 0 {
			n.state = nodeInit
			n.mu.Unlock()
			return ErrInvalidPartitionCount
		}
	} else {
		n.numPartitions = n.Deps[0].numPartitions
	}
	// The fan-out for every transform is ultimately driven by a
	// dependency's partition count (directly for MAP/FILTER/JOIN, via
	// input-partition count for PARTITION_BY); a dependency with zero
	// partitions would otherwise plan a zero-task node whose completion
	// goal is never reached, wedging waitComplete forever. Reset to
	// nodeInit (rather than leaving it stuck in nodePlanned) so a later
	// execute() on this node re-plans and fails the same way instead of
	// waiting on a broadcast that will never come.
	if n.Deps[0].numPartitions <= 0 {
		n.state = nodeInit
		n.mu.Unlock()
		return ErrInvalidPartitionCount
	}
	n.Partitions = make([][]interface{}, n.numPartitions)
	if n.Trans == TransformPartitionBy {
		n.partitionLocks = make([]sync.Mutex, n.numPartitions)
	}

	var fanout int
	if n.Trans == TransformPartitionBy {
		fanout = n.Deps[0].numPartitions
	} else {
		fanout = n.numPartitions
	}
	n.completionGoal = fanout
	n.completedPartitions = 0
	n.state = nodeRunning
	n.mu.Unlock()

	for i := 0; i < fanout; i++ {
		task := &Task{
			node: n,
			pnum: i,
			metric: &TaskMetric{
				Created: time.Now(),
				NodeID:  n.id,
				Trans:   n.Trans,
				Pnum:    i,
			},
		}
		if err := e.pool.Submit(task); err != nil {
			// Fewer tasks will ever complete than the goal expects;
			// lower the goal to match so waiters aren't stuck forever,
			// and flip to complete immediately if that was the last one.
			n.mu.Lock()
			n.completionGoal -= fanout - i
			if n.completionGoal == n.completedPartitions {
				n.state = nodeComplete
				n.cond.Broadcast()
			}
			n.mu.Unlock()
			return fmt.Errorf("submitting task for node %d partition %d: %w", n.id, i, err)
		}
	}

	return e.waitComplete(n)
}

func (e *Engine) waitComplete(n *Node) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for n.state != nodeComplete {
		n.cond.Wait()
	}
	return nil
}
