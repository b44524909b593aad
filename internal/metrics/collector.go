// Package metrics records tool, rendering, HTTP and cache metrics, both
// in memory for the health tool and as Prometheus series.
package metrics

import (
	"sync"
	"time"
)

const keptDurations = 100

// Collector keeps an in-memory summary of tool calls.
type Collector struct {
	mu sync.RWMutex

	toolCalls     map[string]int64
	toolErrors    map[string]int64
	toolDurations map[string][]time.Duration

	matchesRendered int64
	matchesFailed   int64
}

func NewCollector() *Collector {
	return &Collector{
		toolCalls:     make(map[string]int64),
		toolErrors:    make(map[string]int64),
		toolDurations: make(map[string][]time.Duration),
	}
}

// RecordToolCall records a tool call with its status and duration.
func (c *Collector) RecordToolCall(tool, status string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.toolCalls[tool]++
	if status == "error" {
		c.toolErrors[tool]++
	}

	durations := append(c.toolDurations[tool], duration)
	if len(durations) > keptDurations {
		durations = durations[len(durations)-keptDurations:]
	}
	c.toolDurations[tool] = durations
}

// RecordMatches adds the outcome of a batch of renders.
func (c *Collector) RecordMatches(rendered, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matchesRendered += int64(rendered)
	c.matchesFailed += int64(failed)
}

// GetStats returns the current summary.
func (c *Collector) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	toolStats := make(map[string]interface{})
	for tool, calls := range c.toolCalls {
		errs := c.toolErrors[tool]
		errorRate := 0.0
		if calls > 0 {
			errorRate = float64(errs) / float64(calls)
		}

		var total time.Duration
		durations := c.toolDurations[tool]
		for _, d := range durations {
			total += d
		}
		avg := time.Duration(0)
		if len(durations) > 0 {
			avg = total / time.Duration(len(durations))
		}

		toolStats[tool] = map[string]interface{}{
			"calls":           calls,
			"errors":          errs,
			"error_rate":      errorRate,
			"avg_duration_ms": avg.Milliseconds(),
		}
	}

	return map[string]interface{}{
		"tools": toolStats,
		"matches": map[string]interface{}{
			"rendered": c.matchesRendered,
			"failed":   c.matchesFailed,
		},
	}
}

// Reset clears all metrics.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.toolCalls = make(map[string]int64)
	c.toolErrors = make(map[string]int64)
	c.toolDurations = make(map[string][]time.Duration)
	c.matchesRendered = 0
	c.matchesFailed = 0
}
