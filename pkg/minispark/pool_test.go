package minispark

import (
	"sync"
	"testing"
	"time"

	"github.com/minispark/minispark/pkg/logging"
)

func newTestPool(t *testing.T, workers int) *Pool {
	t.Helper()
	wq := NewBlockingQueue[*Task]()
	mq := NewBlockingQueue[*TaskMetric]()
	log := logging.NewLogger(&logging.Config{Level: logging.ErrorLevel, Output: &discard{}})
	p := NewPool(workers, wq, mq, log, nil)
	if err := p.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		p.Shutdown()
		mq.Shutdown()
	})
	return p
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }

func TestPoolWaitIdleBlocksUntilDrained(t *testing.T) {
	p := newTestPool(t, 2)

	n := newNode(TransformMap, nil, 1)
	n.numPartitions = 1
	n.Partitions = make([][]interface{}, 1)
	n.completionGoal = 1
	n.mapper = func(v interface{}) interface{} {
		time.Sleep(30 * time.Millisecond)
		return v
	}
	n.Deps = []*Node{{Partitions: [][]interface{}{{1}}}}

	task := &Task{node: n, pnum: 0, metric: &TaskMetric{NodeID: n.id, Trans: n.Trans, Pnum: 0}}
	if err := p.Submit(task); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	p.WaitIdle()

	stats := p.Stats()
	if stats.Running != 0 {
		t.Errorf("Stats().Running = %d after WaitIdle, want 0", stats.Running)
	}
	if n.state != nodeComplete {
		t.Errorf("node state = %v after WaitIdle, want nodeComplete", n.state)
	}
}

func TestPoolSubmitAfterShutdownFails(t *testing.T) {
	wq := NewBlockingQueue[*Task]()
	mq := NewBlockingQueue[*TaskMetric]()
	log := logging.NewLogger(&logging.Config{Level: logging.ErrorLevel, Output: &discard{}})
	p := NewPool(1, wq, mq, log, nil)
	if err := p.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	p.Shutdown()

	n := newNode(TransformMap, nil, 1)
	task := &Task{node: n, pnum: 0, metric: &TaskMetric{}}
	if err := p.Submit(task); err == nil {
		t.Error("Submit() after Shutdown() = nil error, want error")
	}
}

func TestPoolManyConcurrentTasksAllComplete(t *testing.T) {
	p := newTestPool(t, 8)

	n := newNode(TransformMap, nil, 1)
	const partitions = 50
	n.numPartitions = partitions
	n.Partitions = make([][]interface{}, partitions)
	n.completionGoal = partitions
	n.mapper = func(v interface{}) interface{} { return v }
	n.Deps = []*Node{{Partitions: make([][]interface{}, partitions)}}
	for i := range n.Deps[0].Partitions {
		n.Deps[0].Partitions[i] = []interface{}{i}
	}

	var wg sync.WaitGroup
	for i := 0; i < partitions; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			task := &Task{node: n, pnum: i, metric: &TaskMetric{NodeID: n.id, Trans: n.Trans, Pnum: i}}
			if err := p.Submit(task); err != nil {
				t.Errorf("Submit() error = %v", err)
			}
		}()
	}
	wg.Wait()

	p.WaitIdle()
	if n.completedPartitions != partitions {
		t.Errorf("completedPartitions = %d, want %d", n.completedPartitions, partitions)
	}
}
