package types

import "time"

// Candle is one canonical OHLC bar. It carries exactly the canonical field set;
// anything else a source returns is dropped when the pipeline projects a Bar.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
}

// IsBullish reports whether the candle closed above its open.
func (c Candle) IsBullish() bool {
	return c.Close > c.Open
}

// IsBearish reports whether the candle closed below its open.
func (c Candle) IsBearish() bool {
	return c.Close < c.Open
}

// IsConsistent reports whether low <= min(open, close) <= max(open, close) <= high.
// Sources do not guarantee it and the pipeline does not repair it.
func (c Candle) IsConsistent() bool {
	return c.Low <= min(c.Open, c.Close) && max(c.Open, c.Close) <= c.High
}

// CandleSequence is an ordered, timestamp-ascending run of candles.
// An empty sequence means "no usable data" and is not an error.
type CandleSequence []Candle

// Closes returns the close prices in sequence order.
func (s CandleSequence) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, c := range s {
		closes[i] = c.Close
	}

	return closes
}

// IsSorted reports whether timestamps never decrease.
func (s CandleSequence) IsSorted() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Timestamp.Before(s[i-1].Timestamp) {
			return false
		}
	}

	return true
}

// Clone returns an independent copy of the sequence.
func (s CandleSequence) Clone() CandleSequence {
	if s == nil {
		return nil
	}

	out := make(CandleSequence, len(s))
	copy(out, s)

	return out
}

// Bar is a raw row as returned by a source adapter, before projection.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Candle projects the bar onto the canonical field set.
func (b Bar) Candle() Candle {
	return Candle{
		Timestamp: b.Time.UTC(),
		Open:      b.Open,
		High:      b.High,
		Low:       b.Low,
		Close:     b.Close,
	}
}
