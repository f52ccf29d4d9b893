package indicator

import (
	"math"

	"github.com/moznion/go-optional"

	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
)

const (
	DefaultBollingerPeriod = 20
	DefaultBollingerStdDev = 2.0
)

// BollingerBands reports band width: (upper - lower) / middle * 100, where
// middle is the simple moving average and the bands sit k population
// standard deviations away from it.
type BollingerBands struct {
	period int
	k      float64
}

func NewBollingerBands() Indicator {
	return &BollingerBands{period: DefaultBollingerPeriod, k: DefaultBollingerStdDev}
}

func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config takes period (int) and the standard deviation multiplier (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: period (int), stdDev (float64)")
	}

	period, err := positiveInt(params, 0, "period")
	if err != nil {
		return err
	}

	k, ok := params[1].(float64)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for stdDev parameter, expected float64")
	}

	if k <= 0 {
		return errors.Newf(errors.ErrCodeInvalidStdDev, "stdDev must be a positive number, got %f", k)
	}

	bb.period, bb.k = period, k

	return nil
}

// Calculate fills index i once closes[i-period+1..i] is a full window.
// A window whose mean is 0 has no defined width and stays None.
func (bb *BollingerBands) Calculate(closes []float64) (types.Series, error) {
	if len(closes) == 0 {
		return nil, errors.InsufficientData(bb.period, 0, "Bollinger Bands")
	}

	out := emptySeries(len(closes))
	n := float64(bb.period)

	var sum float64

	for i, c := range closes {
		sum += c
		if i >= bb.period {
			sum -= closes[i-bb.period]
		}

		if i < bb.period-1 {
			continue
		}

		mean := sum / n
		if mean == 0 {
			continue
		}

		var sq float64
		for _, w := range closes[i-bb.period+1 : i+1] {
			sq += (w - mean) * (w - mean)
		}

		width := 2 * bb.k * math.Sqrt(sq/n)
		out[i] = optional.Some(width / mean * 100)
	}

	return out, nil
}
