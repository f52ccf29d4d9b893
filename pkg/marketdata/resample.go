package marketdata

import (
	"sort"
	"time"

	"github.com/MLEngineer1/smc-cash-cow/internal/types"
)

// Resample aggregates candles into buckets of timeframe, aligned with
// Timestamp.Truncate in UTC. Each bucket takes the open of its first candle,
// the close of its last, the highest high and the lowest low. The input is not
// modified.
func Resample(candles types.CandleSequence, timeframe types.Timeframe) types.CandleSequence {
	width := timeframe.Duration()
	if len(candles) == 0 || width <= 0 {
		return types.CandleSequence{}
	}

	sorted := candles.Clone()
	if !sorted.IsSorted() {
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})
	}

	out := make(types.CandleSequence, 0, len(sorted))

	var (
		current types.Candle
		bucket  time.Time
		started bool
	)

	for _, candle := range sorted {
		start := candle.Timestamp.UTC().Truncate(width)

		if !started || !start.Equal(bucket) {
			if started {
				out = append(out, current)
			}

			bucket = start
			started = true
			current = types.Candle{
				Timestamp: start,
				Open:      candle.Open,
				High:      candle.High,
				Low:       candle.Low,
				Close:     candle.Close,
			}

			continue
		}

		current.High = max(current.High, candle.High)
		current.Low = min(current.Low, candle.Low)
		current.Close = candle.Close
	}

	if started {
		out = append(out, current)
	}

	return out
}
