package event

import (
	"sync"

	"goldview/internal/domain"
)

// Pool for BarUpdateEvent, the only high-frequency allocation: the
// stream produces one per message. Acquire in the worker, Release in
// the loop after the merge.
//
// Usage:
//
//	ev := AcquireBarUpdateEvent()
//	ev.Symbol = "ETHUSDT"
//	// ... send through the inbox ...
//	ReleaseBarUpdateEvent(ev)
var barUpdatePool = sync.Pool{
	New: func() interface{} {
		return &BarUpdateEvent{}
	},
}

// AcquireBarUpdateEvent gets a BarUpdateEvent from the pool.
// The returned event has zero values and must be initialized.
func AcquireBarUpdateEvent() *BarUpdateEvent {
	return barUpdatePool.Get().(*BarUpdateEvent)
}

// ReleaseBarUpdateEvent returns a BarUpdateEvent to the pool.
// The event is reset to zero values before being pooled.
func ReleaseBarUpdateEvent(ev *BarUpdateEvent) {
	if ev == nil {
		return
	}
	ev.Symbol = ""
	ev.Interval = ""
	ev.Bar = domain.PriceBar{}

	barUpdatePool.Put(ev)
}

// Warmup pre-allocates a batch of events to reduce GC pressure at startup.
func Warmup() {
	const batchSize = 256

	evs := make([]*BarUpdateEvent, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		evs = append(evs, AcquireBarUpdateEvent())
	}
	for _, ev := range evs {
		ReleaseBarUpdateEvent(ev)
	}
}
