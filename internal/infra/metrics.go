package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	snapshotsFetched atomic.Uint64
	snapshotErrors   atomic.Uint64
	streamMessages   atomic.Uint64
	streamReconnects atomic.Uint64
	droppedEvents    atomic.Uint64
	framesRendered   atomic.Uint64

	// Render latency tracking
	renderSumNs atomic.Int64
	renderCount atomic.Uint64

	// Gauges
	degraded atomic.Int32 // 1 = degraded, 0 = healthy
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordSnapshot records a successful snapshot poll.
func (m *Metrics) RecordSnapshot() {
	m.snapshotsFetched.Add(1)
}

// RecordSnapshotError records a failed snapshot poll.
func (m *Metrics) RecordSnapshotError() {
	m.snapshotErrors.Add(1)
}

// RecordStreamMessage records one inbound stream message.
func (m *Metrics) RecordStreamMessage() {
	m.streamMessages.Add(1)
}

// RecordStreamReconnect records one stream redial.
func (m *Metrics) RecordStreamReconnect() {
	m.streamReconnects.Add(1)
}

// RecordDroppedEvent records an event discarded before the loop
// (full inbox, stale key, malformed payload).
func (m *Metrics) RecordDroppedEvent() {
	m.droppedEvents.Add(1)
}

// RecordFrame records a completed redraw with its latency.
func (m *Metrics) RecordFrame(latencyNs int64) {
	m.framesRendered.Add(1)
	m.renderSumNs.Add(latencyNs)
	m.renderCount.Add(1)
}

// SetDegraded sets the degraded gauge (true = last poll failed).
func (m *Metrics) SetDegraded(on bool) {
	if on {
		m.degraded.Store(1)
	} else {
		m.degraded.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	SnapshotsFetched uint64
	SnapshotErrors   uint64
	StreamMessages   uint64
	StreamReconnects uint64
	DroppedEvents    uint64
	FramesRendered   uint64
	AvgRenderNs      int64
	Degraded         bool
	Timestamp        time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgRender int64
	count := m.renderCount.Load()
	if count > 0 {
		avgRender = m.renderSumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		SnapshotsFetched: m.snapshotsFetched.Load(),
		SnapshotErrors:   m.snapshotErrors.Load(),
		StreamMessages:   m.streamMessages.Load(),
		StreamReconnects: m.streamReconnects.Load(),
		DroppedEvents:    m.droppedEvents.Load(),
		FramesRendered:   m.framesRendered.Load(),
		AvgRenderNs:      avgRender,
		Degraded:         m.degraded.Load() == 1,
		Timestamp:        time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.snapshotsFetched.Store(0)
	m.snapshotErrors.Store(0)
	m.streamMessages.Store(0)
	m.streamReconnects.Store(0)
	m.droppedEvents.Store(0)
	m.framesRendered.Store(0)
	m.renderSumNs.Store(0)
	m.renderCount.Store(0)
	m.degraded.Store(0)
}
