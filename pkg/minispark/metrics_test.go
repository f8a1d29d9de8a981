package minispark

import (
	"strings"
	"testing"
	"time"
)

func TestFormatMetricLineShape(t *testing.T) {
	m := &TaskMetric{
		Created:   time.Unix(1000, 500000),
		Scheduled: time.Unix(1001, 250000),
		Duration:  1500 * time.Microsecond,
		NodeID:    7,
		Trans:     TransformMap,
		Pnum:      3,
	}

	line := formatMetricLine(m)

	for _, want := range []string{"RDD 7", "Part 3", "Trans 1", "creation", "scheduled", "execution (usec) 1500"} {
		if !strings.Contains(line, want) {
			t.Errorf("formatMetricLine() = %q, missing %q", line, want)
		}
	}
}
