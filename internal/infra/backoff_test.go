package infra

import (
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		retry int
		want  time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{5, 32 * time.Second},
		{6, 60 * time.Second},
		{100, 60 * time.Second},
		{-1, 1 * time.Second},
	}

	for _, tt := range tests {
		if got := CalculateBackoff(tt.retry); got != tt.want {
			t.Errorf("CalculateBackoff(%d) = %v, want %v", tt.retry, got, tt.want)
		}
	}
}

func TestMetrics_Snapshot(t *testing.T) {
	m := &Metrics{}
	m.RecordSnapshot()
	m.RecordSnapshot()
	m.RecordSnapshotError()
	m.RecordFrame(1000)
	m.RecordFrame(3000)
	m.SetDegraded(true)

	snap := m.Snapshot()
	if snap.SnapshotsFetched != 2 || snap.SnapshotErrors != 1 {
		t.Errorf("counters = %d/%d, want 2/1", snap.SnapshotsFetched, snap.SnapshotErrors)
	}
	if snap.FramesRendered != 2 || snap.AvgRenderNs != 2000 {
		t.Errorf("frames = %d avg %d, want 2 avg 2000", snap.FramesRendered, snap.AvgRenderNs)
	}
	if !snap.Degraded {
		t.Error("degraded gauge not set")
	}

	m.Reset()
	if m.Snapshot().SnapshotsFetched != 0 {
		t.Error("reset did not clear counters")
	}
}
