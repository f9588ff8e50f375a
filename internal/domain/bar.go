package domain

import (
	"errors"
	"time"
)

// PriceBar is one interval of market activity (OHLC candle).
// Time is milliseconds since epoch, matching the exchange wire format.
type PriceBar struct {
	Time   int64   `json:"t"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Closed bool    `json:"x"` // interval finished accumulating trades
}

// Validate checks the OHLC invariant: low <= min(o,c) <= max(o,c) <= high.
func (b PriceBar) Validate() error {
	if b.Time <= 0 {
		return errors.New("bar time must be positive")
	}
	if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 {
		return errors.New("bar prices must be non-negative")
	}
	if b.High < b.Low {
		return errors.New("bar high below low")
	}
	if b.Open < b.Low || b.Open > b.High {
		return errors.New("bar open outside high/low range")
	}
	if b.Close < b.Low || b.Close > b.High {
		return errors.New("bar close outside high/low range")
	}
	return nil
}

// Interval is the time-bucket size for bars.
type Interval string

const (
	Interval15m Interval = "15m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
)

// Intervals lists the supported granularities in ascending duration order.
func Intervals() []Interval {
	return []Interval{Interval15m, Interval1h, Interval4h, Interval1d}
}

// ParseInterval validates and returns the interval for a stream/REST parameter.
func ParseInterval(s string) (Interval, error) {
	switch Interval(s) {
	case Interval15m, Interval1h, Interval4h, Interval1d:
		return Interval(s), nil
	}
	return "", errors.New("unsupported interval: " + s)
}

// Duration returns the wall-clock length of one bar.
func (i Interval) Duration() time.Duration {
	switch i {
	case Interval15m:
		return 15 * time.Minute
	case Interval1h:
		return time.Hour
	case Interval4h:
		return 4 * time.Hour
	case Interval1d:
		return 24 * time.Hour
	}
	return 0
}

func (i Interval) String() string { return string(i) }
