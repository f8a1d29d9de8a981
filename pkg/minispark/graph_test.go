package minispark

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSourceFromReadersSplitsLines(t *testing.T) {
	e := NewEngine(Options{WorkerCount: 1, MetricsPath: filepath.Join(t.TempDir(), "m.log")})
	require.NoError(t, e.Start())
	defer e.Stop()

	node, err := e.sourceFromReaders([]io.Reader{
		strings.NewReader("a\nb\n"),
		strings.NewReader("c\n"),
	})
	require.NoError(t, err)

	count, err := e.Count(node)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestConstructorsRejectNilFunctions(t *testing.T) {
	e := NewEngine(Options{WorkerCount: 1, MetricsPath: filepath.Join(t.TempDir(), "m.log")})
	require.NoError(t, e.Start())
	defer e.Stop()

	source := e.Source([][]interface{}{{1}})

	_, err := e.Map(source, nil)
	require.ErrorIs(t, err, ErrNilFunction)

	_, err = e.Filter(source, nil, nil)
	require.ErrorIs(t, err, ErrNilFunction)

	_, err = e.Join(source, source, nil, nil)
	require.ErrorIs(t, err, ErrNilFunction)

	_, err = e.PartitionBy(source, nil, 2, nil)
	require.ErrorIs(t, err, ErrNilFunction)
}

func TestConstructorsRejectNilDependencies(t *testing.T) {
	e := NewEngine(Options{WorkerCount: 1, MetricsPath: filepath.Join(t.TempDir(), "m.log")})
	require.NoError(t, e.Start())
	defer e.Stop()

	source := e.Source([][]interface{}{{1}})
	noop := func(v interface{}) interface{} { return v }

	_, err := e.Map(nil, noop)
	require.ErrorIs(t, err, ErrNoDependencies)

	_, err = e.Filter(nil, func(v, _ interface{}) bool { return true }, nil)
	require.ErrorIs(t, err, ErrNoDependencies)

	_, err = e.Join(nil, source, func(a, b, _ interface{}) interface{} { return a }, nil)
	require.ErrorIs(t, err, ErrNoDependencies)
	_, err = e.Join(source, nil, func(a, b, _ interface{}) interface{} { return a }, nil)
	require.ErrorIs(t, err, ErrNoDependencies)

	_, err = e.PartitionBy(nil, func(v interface{}, n int, _ interface{}) int { return 0 }, 2, nil)
	require.ErrorIs(t, err, ErrNoDependencies)
}

func TestPartitionByRejectsNonPositiveCount(t *testing.T) {
	e := NewEngine(Options{WorkerCount: 1, MetricsPath: filepath.Join(t.TempDir(), "m.log")})
	require.NoError(t, e.Start())
	defer e.Stop()

	source := e.Source([][]interface{}{{1}})
	_, err := e.PartitionBy(source, func(v interface{}, n int, _ interface{}) int { return 0 }, 0, nil)
	require.ErrorIs(t, err, ErrInvalidPartitionCount)
}

func TestNodeIDsAreUniqueAndMonotonic(t *testing.T) {
	e := NewEngine(Options{WorkerCount: 1, MetricsPath: filepath.Join(t.TempDir(), "m.log")})
	require.NoError(t, e.Start())
	defer e.Stop()

	a := e.Source([][]interface{}{{1}})
	b, err := e.Map(a, func(v interface{}) interface{} { return v })
	require.NoError(t, err)
	c, err := e.Map(b, func(v interface{}) interface{} { return v })
	require.NoError(t, err)

	require.Less(t, a.ID(), b.ID())
	require.Less(t, b.ID(), c.ID())
}
