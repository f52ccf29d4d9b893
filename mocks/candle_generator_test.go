package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MLEngineer1/smc-cash-cow/internal/types"
)

func TestCandleGenerator_Bars(t *testing.T) {
	config := DefaultConfig()
	config.Count = 200
	config.Timeframe = types.TimeframeFourHours

	bars := NewCandleGenerator(7).Bars(config)
	require.Len(t, bars, 200)

	for i, bar := range bars {
		assert.True(t, bar.Candle().IsConsistent(), "index %d", i)
		assert.Positive(t, bar.Low, "index %d", i)

		if i > 0 {
			assert.Equal(t, 4*time.Hour, bar.Time.Sub(bars[i-1].Time))
			assert.Equal(t, bars[i-1].Close, bar.Open)
		}
	}
}

func TestCandleGenerator_Reproducible(t *testing.T) {
	assert.Equal(t, NewCandleGenerator(3).Candles(DefaultConfig()), NewCandleGenerator(3).Candles(DefaultConfig()))
	assert.NotEqual(t, NewCandleGenerator(3).Candles(DefaultConfig()), NewCandleGenerator(4).Candles(DefaultConfig()))
}

func TestCandleGenerator_Reversals(t *testing.T) {
	config := DefaultConfig()
	config.Count = 50
	config.ReversalEvery = 10

	candles := NewCandleGenerator(1).Candles(config)

	for i := 10; i+1 < len(candles); i += 10 {
		assert.True(t, candles[i].IsBullish(), "index %d", i)
		assert.True(t, candles[i+1].IsBearish(), "index %d", i+1)
	}
}

func TestCandleGenerator_Shuffle(t *testing.T) {
	gen := NewCandleGenerator(9)
	config := DefaultConfig()
	config.Count = 30

	bars := gen.Bars(config)
	shuffled := gen.Shuffle(bars)

	assert.ElementsMatch(t, bars, shuffled)
	assert.NotEqual(t, bars, shuffled)
}

func TestGenerate1K(t *testing.T) {
	candles := Generate1K()

	assert.Len(t, candles, 1000)
	assert.True(t, candles.IsSorted())
}
