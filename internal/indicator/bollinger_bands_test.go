package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
)

type BollingerBandsTestSuite struct {
	suite.Suite
}

func TestBollingerBandsSuite(t *testing.T) {
	suite.Run(t, new(BollingerBandsTestSuite))
}

func (suite *BollingerBandsTestSuite) TestDefaults() {
	bb := NewBollingerBands().(*BollingerBands)
	suite.Equal(20, bb.period)
	suite.Equal(2.0, bb.k)
	suite.Equal(types.IndicatorTypeBollingerBands, bb.Name())
}

func (suite *BollingerBandsTestSuite) TestConfig() {
	tests := []struct {
		name   string
		params []any
		code   errors.ErrorCode
	}{
		{name: "missing", params: []any{20}, code: errors.ErrCodeMissingParameter},
		{name: "period type", params: []any{"20", 2.0}, code: errors.ErrCodeInvalidType},
		{name: "period value", params: []any{0, 2.0}, code: errors.ErrCodeInvalidPeriod},
		{name: "stddev type", params: []any{20, 2}, code: errors.ErrCodeInvalidType},
		{name: "stddev value", params: []any{20, -1.0}, code: errors.ErrCodeInvalidStdDev},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			err := NewBollingerBands().Config(tt.params...)
			suite.Error(err)
			suite.True(errors.HasCode(err, tt.code), err.Error())
		})
	}

	bb := NewBollingerBands()
	suite.NoError(bb.Config(10, 1.5))
	suite.Equal(10, bb.(*BollingerBands).period)
	suite.Equal(1.5, bb.(*BollingerBands).k)
}

func (suite *BollingerBandsTestSuite) TestCalculateEmpty() {
	_, err := NewBollingerBands().Calculate([]float64{})
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *BollingerBandsTestSuite) TestCalculateWidth() {
	bb := NewBollingerBands()
	suite.Require().NoError(bb.Config(3, 2.0))

	series, err := bb.Calculate([]float64{1, 2, 3, 3})
	suite.Require().NoError(err)
	suite.Len(series, 4)

	suite.True(series[0].IsNone())
	suite.True(series[1].IsNone())

	// window 1,2,3: middle 2, population std sqrt(2/3), width 4*std/2*100
	suite.InDelta(200*math.Sqrt(2.0/3.0), series[2].Unwrap(), 1e-9)
	suite.True(series[3].IsSome())
}

func (suite *BollingerBandsTestSuite) TestFlatSeriesHasZeroWidth() {
	bb := NewBollingerBands()
	suite.Require().NoError(bb.Config(2, 2.0))

	series, err := bb.Calculate([]float64{5, 5, 5})
	suite.Require().NoError(err)
	suite.Equal(0.0, series[1].Unwrap())
	suite.Equal(0.0, series[2].Unwrap())
}

func (suite *BollingerBandsTestSuite) TestZeroMiddleBandIsNone() {
	bb := NewBollingerBands()
	suite.Require().NoError(bb.Config(2, 2.0))

	series, err := bb.Calculate([]float64{-1, 1, 0, 0})
	suite.Require().NoError(err)
	suite.True(series[1].IsNone())
	suite.True(series[3].IsNone())
	suite.True(series[2].IsSome())
}

func (suite *BollingerBandsTestSuite) TestShortSeriesIsAllNone() {
	series, err := NewBollingerBands().Calculate([]float64{1, 2, 3})
	suite.NoError(err)
	suite.Len(series, 3)
	suite.Equal(0, series.Defined())
}
