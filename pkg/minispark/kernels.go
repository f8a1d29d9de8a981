package minispark

import "github.com/minispark/minispark/pkg/logging"

// runKernel materializes one partition (or, for PARTITIONBY, scatters one
// input partition) according to node.Trans. It never touches the
// completion barrier; the caller updates node state once the kernel
// returns.
func runKernel(n *Node, pnum int, log *logging.Logger) {
	switch n.Trans {
	case TransformMap:
		dep := n.Deps[0]
		src := dep.Partitions[pnum]
		out := make([]interface{}, 0, len(src))
		for _, el := range src {
			if mapped := n.mapper(el); mapped != nil {
				out = append(out, mapped)
			}
		}
		n.Partitions[pnum] = out

	case TransformFilter:
		dep := n.Deps[0]
		src := dep.Partitions[pnum]
		out := make([]interface{}, 0, len(src))
		for _, el := range src {
			if n.filter(el, n.ctx) {
				out = append(out, el)
			}
		}
		n.Partitions[pnum] = out

	case TransformJoin:
		left := n.Deps[0].Partitions[pnum]
		right := n.Deps[1].Partitions[pnum]
		out := make([]interface{}, 0, len(left))
		for _, a := range left {
			for _, b := range right {
				if joined := n.joiner(a, b, n.ctx); joined != nil {
					out = append(out, joined)
				}
			}
		}
		n.Partitions[pnum] = out

	case TransformPartitionBy:
		partitionByKernel(n, pnum, log)

	default:
		log.Errorf("runKernel: unhandled transform %v on node %d", n.Trans, n.id)
	}
}

// partitionByKernel scatters dependency input partition pnum's elements
// across n's preallocated output partitions. The output slice headers are
// fixed once during planning (execute, before any task is submitted), so
// each element touches exactly one per-partition lock — unlike the
// original C solution, which also took a whole-node lock to look up the
// output partition pointer on every element.
func partitionByKernel(n *Node, pnum int, log *logging.Logger) {
	dep := n.Deps[0]
	for _, el := range dep.Partitions[pnum] {
		target := n.partitioner(el, n.numPartitions, n.ctx)
		if target < 0 || target >= n.numPartitions {
			log.Warnf("node %d: partitioner returned out-of-range partition %d (of %d), dropping element", n.id, target, n.numPartitions)
			continue
		}
		n.partitionLocks[target].Lock()
		n.Partitions[target] = append(n.Partitions[target], el)
		n.partitionLocks[target].Unlock()
	}
}
