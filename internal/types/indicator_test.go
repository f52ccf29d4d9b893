package types

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
)

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func (suite *IndicatorTestSuite) TestIndicatorTypeConstants() {
	suite.Equal(IndicatorType("rsi"), IndicatorTypeRSI)
	suite.Equal(IndicatorType("bollinger_bands"), IndicatorTypeBollingerBands)
}

func (suite *IndicatorTestSuite) TestSeries() {
	s := Series{optional.None[float64](), optional.Some(1.5), optional.Some(2.5)}
	suite.Equal(2, s.Defined())

	last, err := s.Last().Take()
	suite.NoError(err)
	suite.Equal(2.5, last)

	suite.True(Series{}.Last().IsNone())
	suite.Equal(0, Series(nil).Defined())
}
