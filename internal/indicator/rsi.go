package indicator

import (
	"github.com/moznion/go-optional"

	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
)

// DefaultRSIPeriod is the lookback used when none is configured.
const DefaultRSIPeriod = 14

// RSI represents the Relative Strength Index indicator.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		period: DefaultRSIPeriod,
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator. Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
	if len(params) < 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects at least 1 parameter: period (int)")
	}

	period, err := positiveInt(params, 0, "period")
	if err != nil {
		return err
	}

	r.period = period

	return nil
}

// Calculate returns RSI values using Wilder's smoothing, seeded with the simple
// average of the first period changes. Indices before period are None.
func (r *RSI) Calculate(closes []float64) (types.Series, error) {
	if len(closes) == 0 {
		return nil, errors.InsufficientData(r.period+1, 0, "RSI")
	}

	out := emptySeries(len(closes))
	if len(closes) <= r.period {
		return out, nil
	}

	// First average
	avgGain := 0.0
	avgLoss := 0.0

	for i := 1; i <= r.period; i++ {
		gain, loss := change(closes[i-1], closes[i])
		avgGain += gain
		avgLoss += loss
	}

	avgGain /= float64(r.period)
	avgLoss /= float64(r.period)

	out[r.period] = optional.Some(rsiValue(avgGain, avgLoss))

	// Subsequent averages using Wilder's smoothing method
	for i := r.period + 1; i < len(closes); i++ {
		gain, loss := change(closes[i-1], closes[i])
		avgGain = (avgGain*float64(r.period-1) + gain) / float64(r.period)
		avgLoss = (avgLoss*float64(r.period-1) + loss) / float64(r.period)

		out[i] = optional.Some(rsiValue(avgGain, avgLoss))
	}

	return out, nil
}

func change(prev, curr float64) (gain, loss float64) {
	diff := curr - prev
	if diff > 0 {
		return diff, 0
	}

	return 0, -diff
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100 // Perfect uptrend
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
