package indicator

import (
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
)

// Adapter computes the display indicator set from a registry.
type Adapter struct {
	registry IndicatorRegistry
}

// NewAdapter creates an adapter that reads RSI and Bollinger Bands from registry.
func NewAdapter(registry IndicatorRegistry) *Adapter {
	return &Adapter{registry: registry}
}

// NewDefaultAdapter configures RSI and Bollinger Bands with the given parameters.
func NewDefaultAdapter(rsiPeriod, bbPeriod int, bbStdDev float64) (*Adapter, error) {
	registry := NewDefaultRegistry()

	if err := registry.Configure(types.IndicatorTypeRSI, rsiPeriod); err != nil {
		return nil, err
	}

	if err := registry.Configure(types.IndicatorTypeBollingerBands, bbPeriod, bbStdDev); err != nil {
		return nil, err
	}

	return NewAdapter(registry), nil
}

// Compute returns RSI and Bollinger width series, each len(closes) long.
func (a *Adapter) Compute(closes []float64) (types.IndicatorSet, error) {
	rsi, err := a.calculate(types.IndicatorTypeRSI, closes)
	if err != nil {
		return types.IndicatorSet{}, err
	}

	width, err := a.calculate(types.IndicatorTypeBollingerBands, closes)
	if err != nil {
		return types.IndicatorSet{}, err
	}

	return types.IndicatorSet{RSI: rsi, BollingerWidth: width}, nil
}

func (a *Adapter) calculate(name types.IndicatorType, closes []float64) (types.Series, error) {
	ind, err := a.registry.Get(name)
	if err != nil {
		return nil, err
	}

	series, err := ind.Calculate(closes)
	if err != nil {
		if errors.IsInsufficientDataError(err) {
			return nil, err
		}

		return nil, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to calculate %s", name)
	}

	if len(series) != len(closes) {
		return nil, errors.Newf(errors.ErrCodeIndicatorCalculation,
			"%s returned %d values for %d closes", name, len(series), len(closes))
	}

	return series, nil
}
