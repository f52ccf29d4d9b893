// Package indicator computes display indicators over a close-price series.
package indicator

import (
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
)

// Indicator interface defines methods that any technical indicator must implement
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config sets the indicator parameters
	Config(params ...any) error
	// Calculate returns a series aligned by index with closes
	Calculate(closes []float64) (types.Series, error)
}

func emptySeries(n int) types.Series {
	return make(types.Series, n)
}

// positiveInt reads params[i] as a period.
func positiveInt(params []any, i int, what string) (int, error) {
	v, ok := params[i].(int)
	if !ok {
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected int", what)
	}

	if v <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", what, v)
	}

	return v, nil
}
