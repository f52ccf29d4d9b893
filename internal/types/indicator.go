package types

import "github.com/moznion/go-optional"

type IndicatorType string

const (
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
)

// Series is an indicator output aligned by index with the close prices it was
// computed from. None marks values inside the warm-up window.
type Series []optional.Option[float64]

// Defined returns the number of values that are present.
func (s Series) Defined() int {
	n := 0

	for _, v := range s {
		if v.IsSome() {
			n++
		}
	}

	return n
}

// Last returns the final value of the series, if any.
func (s Series) Last() optional.Option[float64] {
	if len(s) == 0 {
		return optional.None[float64]()
	}

	return s[len(s)-1]
}

// IndicatorSet holds the display indicators for one close series.
type IndicatorSet struct {
	RSI            Series `json:"rsi"`
	BollingerWidth Series `json:"bbWidth"`
}
