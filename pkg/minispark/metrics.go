package minispark

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/minispark/minispark/pkg/logging"
)

// formatMetricLine renders a TaskMetric in the layout the original
// implementation's print_formatted_metric used, substituting a stable
// node ID for the C pointer value (Go gives no portable pointer format).
func formatMetricLine(m *TaskMetric) string {
	created := m.Created
	scheduled := m.Scheduled
	return fmt.Sprintf(
		"RDD %d Part %d Trans %d -- creation %10d.%06d, scheduled %10d.%06d, execution (usec) %d",
		m.NodeID, m.Pnum, int(m.Trans),
		created.Unix(), created.Nanosecond()/1000,
		scheduled.Unix(), scheduled.Nanosecond()/1000,
		m.Duration.Microseconds(),
	)
}

// promMetrics is the additive Prometheus surface alongside the mandatory
// log-file sink: counters and a duration histogram by transform kind, plus
// a queue-depth gauge the monitor updates as it drains.
type promMetrics struct {
	tasksCompleted *prometheus.CounterVec
	taskDuration   *prometheus.HistogramVec
	queueDepth     prometheus.Gauge
}

func newPromMetrics(reg prometheus.Registerer) *promMetrics {
	pm := &promMetrics{
		tasksCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "minispark_tasks_completed_total",
			Help: "Number of tasks completed, by transform kind.",
		}, []string{"transform"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "minispark_task_duration_seconds",
			Help:    "Task execution duration, by transform kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"transform"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "minispark_queue_depth",
			Help: "Number of metrics queued but not yet drained by the monitor.",
		}),
	}
	if reg != nil {
		reg.MustRegister(pm.tasksCompleted, pm.taskDuration, pm.queueDepth)
	}
	return pm
}

func (pm *promMetrics) observe(m *TaskMetric) {
	label := m.Trans.String()
	pm.tasksCompleted.WithLabelValues(label).Inc()
	pm.taskDuration.WithLabelValues(label).Observe(m.Duration.Seconds())
}

// monitor drains metricQueue into both the log sink and Prometheus until
// the queue is shut down and empty. It runs on its own goroutine for the
// lifetime of the engine.
func monitor(metricQueue *MetricQueue, sink io.Writer, prom *promMetrics, log *logging.Logger, done chan<- struct{}) {
	defer close(done)
	for {
		m, ok := metricQueue.Dequeue()
		if !ok {
			return
		}
		if prom != nil {
			prom.observe(m)
			prom.queueDepth.Set(float64(metricQueue.Len()))
		}
		if _, err := fmt.Fprintln(sink, formatMetricLine(m)); err != nil {
			log.Warnf("writing metric line: %v", err)
		}
	}
}
