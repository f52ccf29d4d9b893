package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/MLEngineer1/smc-cash-cow/internal/types"
)

// CandleGenerator produces reproducible random-walk bars for tests.
type CandleGenerator struct {
	rng *rand.Rand
}

// NewCandleGenerator creates a generator. Equal seeds give equal output.
func NewCandleGenerator(seed int64) *CandleGenerator {
	return &CandleGenerator{rng: rand.New(rand.NewSource(seed))}
}

// GeneratorConfig describes the series to generate.
type GeneratorConfig struct {
	Start     time.Time
	Timeframe types.Timeframe
	Count     int
	Price     float64
	// Volatility is the standard deviation of the per-bar return.
	Volatility float64
	// ReversalEvery forces a bullish bar followed by a bearish bar at every
	// multiple of this index, so the series is guaranteed to contain order
	// blocks. Zero leaves the walk untouched.
	ReversalEvery int
}

// DefaultConfig returns 1000 hourly bars starting at 100.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Start:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Timeframe:     types.TimeframeOneHour,
		Count:         1000,
		Price:         100,
		Volatility:    0.01,
		ReversalEvery: 0,
	}
}

// Bars generates raw bars with volume. OHLC bounds always hold.
func (g *CandleGenerator) Bars(config GeneratorConfig) []types.Bar {
	step := config.Timeframe.Duration()
	if step == 0 {
		step = time.Hour
	}

	bars := make([]types.Bar, config.Count)
	price := config.Price

	for i := range bars {
		open := price
		move := config.Volatility * g.rng.NormFloat64()

		if config.ReversalEvery > 0 && i > 0 {
			switch i % config.ReversalEvery {
			case 0:
				move = math.Abs(move) + config.Volatility/2
			case 1:
				move = -math.Abs(move) - config.Volatility/2
			}
		}

		closePrice := math.Max(open*(1+move), 0.01)
		wick := open * config.Volatility * g.rng.Float64() / 2

		bars[i] = types.Bar{
			Time:   config.Start.Add(time.Duration(i) * step),
			Open:   round(open),
			High:   round(math.Max(open, closePrice) + wick),
			Low:    round(math.Max(math.Min(open, closePrice)-wick, 0.005)),
			Close:  round(closePrice),
			Volume: math.Round(1000 + 500*g.rng.Float64()),
		}

		price = bars[i].Close
	}

	return bars
}

// Candles generates bars and keeps the canonical fields only.
func (g *CandleGenerator) Candles(config GeneratorConfig) types.CandleSequence {
	bars := g.Bars(config)

	candles := make(types.CandleSequence, len(bars))
	for i, bar := range bars {
		candles[i] = bar.Candle()
	}

	return candles
}

// Shuffle returns a copy of bars in random order.
func (g *CandleGenerator) Shuffle(bars []types.Bar) []types.Bar {
	out := make([]types.Bar, len(bars))
	copy(out, bars)

	g.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})

	return out
}

// Generate1K returns 1000 hourly candles from a fixed seed.
func Generate1K() types.CandleSequence {
	return NewCandleGenerator(42).Candles(DefaultConfig())
}

func round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
