// Package observability tracks checkout step counters and latencies and
// serves them as a JSON snapshot.
package observability

import (
	"sync"
	"time"
)

// StepSnapshot is the exported view of one checkout step's stats.
type StepSnapshot struct {
	Count         int64   `json:"count"`
	Errors        int64   `json:"errors"`
	InFlight      int64   `json:"in_flight"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms"`
	LastLatencyMs float64 `json:"last_latency_ms"`
}

// Snapshot is the exported view of all collected metrics.
type Snapshot struct {
	UptimeSec          int64                   `json:"uptime_sec"`
	CheckoutsStarted   int64                   `json:"checkouts_started"`
	CheckoutsCompleted int64                   `json:"checkouts_completed"`
	CheckoutsFailed    int64                   `json:"checkouts_failed"`
	Steps              map[string]StepSnapshot `json:"steps"`
}

type stepStats struct {
	count        int64
	errors       int64
	inFlight     int64
	totalLatency time.Duration
	maxLatency   time.Duration
	lastLatency  time.Duration
}

// Metrics collects checkout counters. Safe for concurrent use.
type Metrics struct {
	mu        sync.Mutex
	start     time.Time
	steps     map[string]*stepStats
	started   int64
	completed int64
	failed    int64
	now       func() time.Time
}

// NewMetrics constructs an empty collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		steps: make(map[string]*stepStats),
		now:   time.Now,
	}
	m.start = m.now()
	return m
}

// CheckoutStarted records entry into the sequencer.
func (m *Metrics) CheckoutStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started++
}

// CheckoutCompleted records a checkout that resolved successfully.
func (m *Metrics) CheckoutCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed++
}

// CheckoutFailed records a checkout that surfaced a step failure.
func (m *Metrics) CheckoutFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed++
}

// StepSpan measures one in-flight step execution.
type StepSpan struct {
	metrics *Metrics
	step    string
	start   time.Time
}

// StartStep opens a span for the named step.
func (m *Metrics) StartStep(step string) *StepSpan {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := m.stepLocked(step)
	stats.inFlight++
	return &StepSpan{metrics: m, step: step, start: m.now()}
}

// End closes the span, recording latency and whether the step failed.
func (s *StepSpan) End(err error) {
	if s == nil || s.metrics == nil {
		return
	}
	m := s.metrics
	elapsed := m.now().Sub(s.start)

	m.mu.Lock()
	defer m.mu.Unlock()
	stats := m.stepLocked(s.step)
	stats.inFlight--
	stats.count++
	if err != nil {
		stats.errors++
	}
	stats.totalLatency += elapsed
	stats.lastLatency = elapsed
	if elapsed > stats.maxLatency {
		stats.maxLatency = elapsed
	}
}

// SnapshotNow returns a copy of all collected metrics.
func (m *Metrics) SnapshotNow() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		UptimeSec:          int64(m.now().Sub(m.start).Seconds()),
		CheckoutsStarted:   m.started,
		CheckoutsCompleted: m.completed,
		CheckoutsFailed:    m.failed,
		Steps:              make(map[string]StepSnapshot, len(m.steps)),
	}
	for step, stats := range m.steps {
		entry := StepSnapshot{
			Count:    stats.count,
			Errors:   stats.errors,
			InFlight: stats.inFlight,
		}
		if stats.count > 0 {
			entry.AvgLatencyMs = float64(stats.totalLatency.Milliseconds()) / float64(stats.count)
		}
		entry.MaxLatencyMs = float64(stats.maxLatency.Milliseconds())
		entry.LastLatencyMs = float64(stats.lastLatency.Milliseconds())
		snap.Steps[step] = entry
	}
	return snap
}

func (m *Metrics) stepLocked(step string) *stepStats {
	stats, ok := m.steps[step]
	if !ok {
		stats = &stepStats{}
		m.steps[step] = stats
	}
	return stats
}
