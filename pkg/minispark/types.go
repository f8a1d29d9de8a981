// Package minispark implements a small in-process, partitioned dataset
// engine: datasets are built up as a DAG of lazy transforms over
// partitioned data and materialized on demand by a fixed worker pool,
// modeled after the RDD execution model.
package minispark

// Transform identifies how a Node derives its partitions from its
// dependencies.
type Transform int

const (
	TransformSource Transform = iota
	TransformMap
	TransformFilter
	TransformJoin
	TransformPartitionBy
)

func (t Transform) String() string {
	switch t {
	case TransformSource:
		return "SOURCE"
	case TransformMap:
		return "MAP"
	case TransformFilter:
		return "FILTER"
	case TransformJoin:
		return "JOIN"
	case TransformPartitionBy:
		return "PARTITIONBY"
	default:
		return "UNKNOWN"
	}
}

// Mapper transforms a single element into a new element.
type Mapper func(element interface{}) interface{}

// Filter reports whether element should be kept, given the context
// supplied at construction time.
type Filter func(element interface{}, ctx interface{}) bool

// Joiner combines one element from each side of a join. A nil return means
// the pair does not join and is dropped.
type Joiner func(left, right interface{}, ctx interface{}) interface{}

// Partitioner returns the destination partition index, in [0, numPartitions),
// for element. Any other value causes the element to be dropped.
type Partitioner func(element interface{}, numPartitions int, ctx interface{}) int

// Printer consumes a single element, e.g. for Engine.Print.
type Printer func(element interface{})
