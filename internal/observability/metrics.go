package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// Metrics collects per-operation request counters for the HTTP API.
type Metrics struct {
	// InstanceID distinguishes processes behind a load balancer.
	InstanceID string

	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	operations map[string]*OperationMetrics

	// durations keeps the most recent request durations, oldest first.
	durations    []time.Duration
	maxDurations int
}

// OperationMetrics represents metrics for one API operation.
type OperationMetrics struct {
	count         atomic.Int64
	totalDuration atomic.Int64 // milliseconds
	errorCount    atomic.Int64
	errorCodes    sync.Map // error code -> *atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		InstanceID:   shortuuid.New(),
		operations:   make(map[string]*OperationMetrics),
		durations:    make([]time.Duration, 0, maxDurations),
		maxDurations: maxDurations,
	}
}

// RecordRequest records a request and its duration.
func (m *Metrics) RecordRequest(operation string, duration time.Duration) {
	m.requestTotal.Add(1)
	om := m.operation(operation)
	om.count.Add(1)
	om.totalDuration.Add(duration.Milliseconds())

	m.mu.Lock()
	if len(m.durations) >= m.maxDurations {
		m.durations = m.durations[1:]
	}
	m.durations = append(m.durations, duration)
	m.mu.Unlock()
}

// RecordFailure records a failed request with its error code.
func (m *Metrics) RecordFailure(operation, code string) {
	m.requestFailed.Add(1)
	om := m.operation(operation)
	om.errorCount.Add(1)
	counter, _ := om.errorCodes.LoadOrStore(code, new(atomic.Int64))
	counter.(*atomic.Int64).Add(1)
}

func (m *Metrics) operation(name string) *OperationMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	om, ok := m.operations[name]
	if !ok {
		om = &OperationMetrics{}
		m.operations[name] = om
	}
	return om
}

// Reset resets all metrics.
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)

	m.mu.Lock()
	m.operations = make(map[string]*OperationMetrics)
	m.durations = make([]time.Duration, 0, m.maxDurations)
	m.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	ops := make(map[string]*OperationSnapshot, len(m.operations))
	for name, om := range m.operations {
		s := &OperationSnapshot{
			Count:         om.count.Load(),
			TotalDuration: om.totalDuration.Load(),
			ErrorCount:    om.errorCount.Load(),
			ErrorCodes:    map[string]int64{},
		}
		if s.Count > 0 {
			s.AverageDuration = s.TotalDuration / s.Count
		}
		om.errorCodes.Range(func(k, v any) bool {
			s.ErrorCodes[k.(string)] = v.(*atomic.Int64).Load()
			return true
		})
		ops[name] = s
	}

	return &MetricsSnapshot{
		InstanceID:    m.InstanceID,
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		Operations:    ops,
		P50LatencyMs:  percentile(m.durations, 50),
		P95LatencyMs:  percentile(m.durations, 95),
	}
}

func percentile(durations []time.Duration, p int) int64 {
	if len(durations) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := (len(sorted) - 1) * p / 100
	return sorted[idx].Milliseconds()
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	InstanceID    string                        `json:"instance_id"`
	RequestTotal  int64                         `json:"request_total"`
	RequestFailed int64                         `json:"request_failed"`
	Operations    map[string]*OperationSnapshot `json:"operations"`
	P50LatencyMs  int64                         `json:"p50_latency_ms"`
	P95LatencyMs  int64                         `json:"p95_latency_ms"`
}

// OperationSnapshot represents metrics for one operation.
type OperationSnapshot struct {
	Count           int64            `json:"count"`
	TotalDuration   int64            `json:"total_duration_ms"`
	AverageDuration int64            `json:"avg_duration_ms"`
	ErrorCount      int64            `json:"error_count"`
	ErrorCodes      map[string]int64 `json:"error_codes"`
}
