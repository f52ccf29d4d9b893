// Package detector finds smart-money order blocks in a candle sequence.
//
// An order block completes when a bullish candle is immediately followed by a
// bearish one. The candle after the pair carries an entry signal whose stop
// loss is the low of the bearish candle.
package detector

import (
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/MLEngineer1/smc-cash-cow/internal/logger"
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
)

// Status explains the shape of a scan result.
type Status string

const (
	// StatusOK means the input was well formed. The signals may still be all default.
	StatusOK Status = "ok"
	// StatusEmpty means there were no candles to scan.
	StatusEmpty Status = "empty"
	// StatusMalformed means at least one candle had no timestamp and detection was skipped.
	StatusMalformed Status = "malformed"
)

// Scan is the detector output together with its status.
type Scan struct {
	Signals types.SignalSequence `json:"signals"`
	Status  Status               `json:"status"`
}

// OrderBlockDetector is stateless and safe for concurrent use.
type OrderBlockDetector struct {
	logger *logger.Logger
}

// NewOrderBlockDetector creates a detector. A nil logger discards output.
func NewOrderBlockDetector(log *logger.Logger) *OrderBlockDetector {
	return &OrderBlockDetector{logger: log.Named("detector")}
}

// Detect returns one signal per candle. It never fails.
func (d *OrderBlockDetector) Detect(candles types.CandleSequence) types.SignalSequence {
	return d.Scan(candles).Signals
}

// Scan returns one signal per candle and the status of the input.
func (d *OrderBlockDetector) Scan(candles types.CandleSequence) Scan {
	signals := types.NewSignalSequence(len(candles))

	if len(candles) == 0 {
		return Scan{Signals: signals, Status: StatusEmpty}
	}

	for i, candle := range candles {
		if candle.Timestamp.IsZero() {
			d.logger.Warn("Skipping order block detection on malformed candles",
				zap.Int("index", i),
				zap.Int("candles", len(candles)))

			return Scan{Signals: signals, Status: StatusMalformed}
		}
	}

	for i := 2; i < len(candles); i++ {
		bullish := candles[i-2]
		bearish := candles[i-1]

		if !bullish.IsBullish() || !bearish.IsBearish() {
			continue
		}

		signals[i] = types.Signal{
			OrderBlock: true,
			Entry:      true,
			Exit:       false,
			StopLoss:   optional.Some(bearish.Low),
		}
	}

	return Scan{Signals: signals, Status: StatusOK}
}
