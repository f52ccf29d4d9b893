package detector

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MLEngineer1/smc-cash-cow/internal/logger"
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/mocks"
)

var start = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// seq builds candles from (open, close) pairs. High and low hug the body by one point.
func seq(pairs ...[2]float64) types.CandleSequence {
	candles := make(types.CandleSequence, len(pairs))
	for i, p := range pairs {
		candles[i] = types.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      p[0],
			High:      max(p[0], p[1]) + 1,
			Low:       min(p[0], p[1]) - 1,
			Close:     p[1],
		}
	}

	return candles
}

type DetectorTestSuite struct {
	suite.Suite
	detector *OrderBlockDetector
}

func TestDetectorSuite(t *testing.T) {
	suite.Run(t, new(DetectorTestSuite))
}

func (suite *DetectorTestSuite) SetupTest() {
	suite.detector = NewOrderBlockDetector(logger.NewNopLogger())
}

func (suite *DetectorTestSuite) TestReferenceExample() {
	candles := types.CandleSequence{
		{Timestamp: start, Open: 10, High: 12, Low: 9, Close: 12},
		{Timestamp: start.Add(time.Hour), Open: 12, High: 12.5, Low: 9, Close: 9},
		{Timestamp: start.Add(2 * time.Hour), Open: 9, High: 10, Low: 8, Close: 9.5},
	}

	signals := suite.detector.Detect(candles)
	suite.Require().Len(signals, 3)

	suite.Equal(types.Signal{StopLoss: optional.None[float64]()}, signals[0])
	suite.Equal(types.Signal{StopLoss: optional.None[float64]()}, signals[1])
	suite.True(signals[2].OrderBlock)
	suite.True(signals[2].Entry)
	suite.False(signals[2].Exit)
	suite.Equal(9.0, signals[2].StopLoss.Unwrap())
}

func (suite *DetectorTestSuite) TestLengthMatchesInput() {
	for n := 0; n < 8; n++ {
		candles := mocks.NewCandleGenerator(int64(n)).Candles(mocks.GeneratorConfig{
			Start:         start,
			Timeframe:     types.TimeframeOneHour,
			Count:         n,
			Price:         100,
			Volatility:    0.02,
			ReversalEvery: 3,
		})

		suite.Len(suite.detector.Detect(candles), n)
	}
}

func (suite *DetectorTestSuite) TestFirstTwoIndicesNeverEnter() {
	candles := seq([2]float64{1, 2}, [2]float64{2, 1}, [2]float64{1, 2}, [2]float64{2, 1})

	signals := suite.detector.Detect(candles)
	suite.False(signals[0].Entry)
	suite.False(signals[1].Entry)
	suite.Equal([]int{2}, signals.EntryIndices())
}

func (suite *DetectorTestSuite) TestEntriesMatchPattern() {
	config := mocks.DefaultConfig()
	config.ReversalEvery = 25

	candles := mocks.NewCandleGenerator(42).Candles(config)
	signals := suite.detector.Detect(candles)
	suite.NotEmpty(signals.EntryIndices())

	for i, sig := range signals {
		want := i >= 2 && candles[i-2].IsBullish() && candles[i-1].IsBearish()
		suite.Equal(want, sig.Entry, "index %d", i)
		suite.Equal(sig.Entry, sig.OrderBlock)
		suite.False(sig.Exit)
		suite.Equal(sig.Entry, sig.StopLoss.IsSome())

		if sig.Entry {
			suite.Equal(candles[i-1].Low, sig.StopLoss.Unwrap())
		}
	}
}

func (suite *DetectorTestSuite) TestNoReversalPairNoEntries() {
	rising := seq([2]float64{1, 2}, [2]float64{2, 3}, [2]float64{3, 4}, [2]float64{4, 5})
	suite.Empty(suite.detector.Detect(rising).EntryIndices())

	falling := seq([2]float64{5, 4}, [2]float64{4, 3}, [2]float64{3, 2})
	suite.Empty(suite.detector.Detect(falling).EntryIndices())

	// bearish then bullish is the wrong order
	inverted := seq([2]float64{5, 4}, [2]float64{4, 5}, [2]float64{5, 6})
	suite.Empty(suite.detector.Detect(inverted).EntryIndices())
}

func (suite *DetectorTestSuite) TestDojiNeverTriggers() {
	dojiFirst := seq([2]float64{3, 3}, [2]float64{3, 2}, [2]float64{2, 2})
	suite.Empty(suite.detector.Detect(dojiFirst).EntryIndices())

	dojiSecond := seq([2]float64{2, 3}, [2]float64{3, 3}, [2]float64{3, 3})
	suite.Empty(suite.detector.Detect(dojiSecond).EntryIndices())
}

func (suite *DetectorTestSuite) TestIdempotent() {
	candles := mocks.Generate1K()

	first := suite.detector.Detect(candles)
	second := suite.detector.Detect(candles)
	suite.Equal(first, second)
}

func (suite *DetectorTestSuite) TestInputIsNotModified() {
	candles := seq([2]float64{1, 2}, [2]float64{2, 1}, [2]float64{1, 1.5})
	before := candles.Clone()

	suite.detector.Detect(candles)
	suite.Equal(before, candles)
}

func (suite *DetectorTestSuite) TestEmptyInput() {
	scan := suite.detector.Scan(nil)
	suite.Equal(StatusEmpty, scan.Status)
	suite.Empty(scan.Signals)
}

func (suite *DetectorTestSuite) TestShortInputIsOK() {
	scan := suite.detector.Scan(seq([2]float64{1, 2}, [2]float64{2, 1}))
	suite.Equal(StatusOK, scan.Status)
	suite.Len(scan.Signals, 2)
	suite.Empty(scan.Signals.EntryIndices())
}

func (suite *DetectorTestSuite) TestMalformedInputLogsAndReturnsDefaults() {
	core, logs := observer.New(zap.WarnLevel)
	detector := NewOrderBlockDetector(&logger.Logger{Logger: zap.New(core)})

	candles := seq([2]float64{1, 2}, [2]float64{2, 1}, [2]float64{1, 2})
	candles[1].Timestamp = time.Time{}

	scan := detector.Scan(candles)
	suite.Equal(StatusMalformed, scan.Status)
	suite.Equal(types.NewSignalSequence(3), scan.Signals)

	suite.Equal(1, logs.FilterMessage("Skipping order block detection on malformed candles").Len())
}

func (suite *DetectorTestSuite) TestNilLogger() {
	detector := NewOrderBlockDetector(nil)
	candles := seq([2]float64{1, 2}, [2]float64{2, 1}, [2]float64{1, 2})
	candles[0].Timestamp = time.Time{}

	suite.NotPanics(func() {
		suite.Equal(StatusMalformed, detector.Scan(candles).Status)
	})
}
