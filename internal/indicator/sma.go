// Package indicator computes chart overlays from a bar series.
package indicator

import (
	"math"

	"goldview/internal/domain"
)

// SMA is a simple moving average over closing prices.
// Ring buffer with a running sum: zero-alloc per push.
type SMA struct {
	period int
	prices []float64
	head   int
	count  int
	sum    float64
}

// NewSMA creates an SMA with the given period (window length).
func NewSMA(period int) *SMA {
	if period < 1 {
		period = 1
	}
	return &SMA{
		period: period,
		prices: make([]float64, period),
	}
}

// Push adds a close and returns the current average. ok is false until
// the window is warm.
func (s *SMA) Push(close float64) (avg float64, ok bool) {
	if s.count == s.period {
		// Full: head points at the oldest value, drop it from the sum.
		s.sum -= s.prices[s.head]
	}

	s.prices[s.head] = close
	s.sum += close
	s.head = (s.head + 1) % s.period

	if s.count < s.period {
		s.count++
	}
	if s.count < s.period {
		return 0, false
	}
	return s.sum / float64(s.period), true
}

// Reset clears the window.
func (s *SMA) Reset() {
	for i := range s.prices {
		s.prices[i] = 0
	}
	s.head = 0
	s.count = 0
	s.sum = 0
}

// Period returns the window length.
func (s *SMA) Period() int { return s.period }

// Over computes the overlay for a whole series: one value per bar,
// NaN while the window is still warming up.
func Over(bars []domain.PriceBar, period int) []float64 {
	out := make([]float64, len(bars))
	sma := NewSMA(period)
	for i, b := range bars {
		if avg, ok := sma.Push(b.Close); ok {
			out[i] = avg
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
