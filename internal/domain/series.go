package domain

// DefaultSeriesCapacity bounds the chart history, matching the kline
// snapshot request limit.
const DefaultSeriesCapacity = 120

// MergeResult describes what Merge did with an incoming bar.
type MergeResult int

const (
	MergeReplaced MergeResult = iota // same timestamp, last bar overwritten
	MergeAppended                    // newer timestamp, bar appended
	MergeRejected                    // older timestamp, bar dropped
)

// Series is a bounded, time-ordered sequence of PriceBars for one
// (instrument, granularity) key. It is owned by the view loop and is
// never shared across goroutines; no locking here.
type Series struct {
	bars []PriceBar
	cap  int
}

// NewSeries creates an empty series. capacity <= 0 falls back to the default.
func NewSeries(capacity int) *Series {
	if capacity <= 0 {
		capacity = DefaultSeriesCapacity
	}
	return &Series{
		bars: make([]PriceBar, 0, capacity),
		cap:  capacity,
	}
}

// ReplaceAll swaps the full history in (snapshot semantics). Input is
// assumed ascending by time; anything beyond capacity is trimmed from
// the front so the newest bars survive.
func (s *Series) ReplaceAll(bars []PriceBar) {
	if len(bars) > s.cap {
		bars = bars[len(bars)-s.cap:]
	}
	s.bars = s.bars[:0]
	s.bars = append(s.bars, bars...)
}

// Merge applies one incremental update:
//   - equal timestamp: replace the last bar in place (idempotent)
//   - newer timestamp: append, evict oldest when over capacity
//   - older timestamp: reject (out-of-order delivery is not trusted)
func (s *Series) Merge(bar PriceBar) MergeResult {
	if len(s.bars) == 0 {
		s.bars = append(s.bars, bar)
		return MergeAppended
	}

	last := s.bars[len(s.bars)-1].Time
	switch {
	case bar.Time == last:
		s.bars[len(s.bars)-1] = bar
		return MergeReplaced
	case bar.Time > last:
		s.bars = append(s.bars, bar)
		if len(s.bars) > s.cap {
			// Oldest-first eviction. Shift in place to keep the backing
			// array; the series is small (<= capacity+1).
			copy(s.bars, s.bars[1:])
			s.bars = s.bars[:s.cap]
		}
		return MergeAppended
	default:
		return MergeRejected
	}
}

// Bars returns the current ordered sequence. The slice is the internal
// backing store; callers must not retain it across loop iterations.
func (s *Series) Bars() []PriceBar {
	return s.bars
}

// Last returns the most recent bar, if any.
func (s *Series) Last() (PriceBar, bool) {
	if len(s.bars) == 0 {
		return PriceBar{}, false
	}
	return s.bars[len(s.bars)-1], true
}

// Len returns the number of bars held.
func (s *Series) Len() int { return len(s.bars) }

// Capacity returns the fixed bound.
func (s *Series) Capacity() int { return s.cap }
