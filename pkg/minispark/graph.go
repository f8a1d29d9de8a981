package minispark

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Source creates a SOURCE node whose partitions are exactly the slices
// passed in: len(partitions) becomes the node's partition count, and each
// element is used as-is, with no kernel ever run against it.
func (e *Engine) Source(partitions [][]interface{}) *Node {
	n := e.newNode(TransformSource, nil)
	n.numPartitions = len(partitions)
	n.Partitions = partitions
	return n
}

// SourceFromFiles opens each path as its own partition, one line per
// element, mirroring the original implementation's file-backed RDD
// convenience. The returned closer must be called once the caller is done
// reading the dataset's results (e.g. after an action) to release the
// open file handles.
func (e *Engine) SourceFromFiles(paths []string) (*Node, func() error, error) {
	partitions := make([][]interface{}, len(paths))
	files := make([]*os.File, 0, len(paths))
	closeAll := func() error {
		var firstErr error
		for _, f := range files {
			if err := f.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	for i, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("opening %s: %w", path, err)
		}
		files = append(files, f)

		var lines []interface{}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("reading %s: %w", path, err)
		}
		partitions[i] = lines
	}

	return e.Source(partitions), closeAll, nil
}

// sourceFromReaders is a lower-level entry point for tests that want a
// SOURCE node without touching the filesystem.
func (e *Engine) sourceFromReaders(readers []io.Reader) (*Node, error) {
	partitions := make([][]interface{}, len(readers))
	for i, r := range readers {
		var lines []interface{}
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading partition %d: %w", i, err)
		}
		partitions[i] = lines
	}
	return e.Source(partitions), nil
}

// Map creates a node applying fn to every element of dep, one output
// partition per input partition.
func (e *Engine) Map(dep *Node, fn Mapper) (*Node, error) {
	if dep == nil {
		return nil, ErrNoDependencies
	}
	if fn == nil {
		return nil, ErrNilFunction
	}
	n := e.newNode(TransformMap, []*Node{dep})
	n.mapper = fn
	return n, nil
}

// Filter creates a node keeping only the elements of dep for which fn
// returns true. ctx is passed to fn unchanged on every call.
func (e *Engine) Filter(dep *Node, fn Filter, ctx interface{}) (*Node, error) {
	if dep == nil {
		return nil, ErrNoDependencies
	}
	if fn == nil {
		return nil, ErrNilFunction
	}
	n := e.newNode(TransformFilter, []*Node{dep})
	n.filter = fn
	n.ctx = ctx
	return n, nil
}

// Join creates a node pairing elements from left and right that share the
// same partition index, calling fn on every such pair; a nil result from
// fn means that pair does not join.
func (e *Engine) Join(left, right *Node, fn Joiner, ctx interface{}) (*Node, error) {
	if left == nil || right == nil {
		return nil, ErrNoDependencies
	}
	if fn == nil {
		return nil, ErrNilFunction
	}
	n := e.newNode(TransformJoin, []*Node{left, right})
	n.joiner = fn
	n.ctx = ctx
	return n, nil
}

// PartitionBy creates a node that reshuffles dep's elements into
// numPartitions new partitions, placing each element according to fn.
func (e *Engine) PartitionBy(dep *Node, fn Partitioner, numPartitions int, ctx interface{}) (*Node, error) {
	if dep == nil {
		return nil, ErrNoDependencies
	}
	if fn == nil {
		return nil, ErrNilFunction
	}
	if numPartitions <= 0 {
		return nil, ErrInvalidPartitionCount
	}
	n := e.newNode(TransformPartitionBy, []*Node{dep})
	n.partitioner = fn
	n.ctx = ctx
	n.numPartitions = numPartitions
	return n, nil
}

func (e *Engine) newNode(trans Transform, deps []*Node) *Node {
	id := e.nextNodeID()
	return newNode(trans, deps, id)
}
