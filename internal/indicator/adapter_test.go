package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
)

type shortIndicator struct {
	name types.IndicatorType
}

func (s *shortIndicator) Name() types.IndicatorType { return s.name }

func (s *shortIndicator) Config(params ...any) error { return nil }

func (s *shortIndicator) Calculate(closes []float64) (types.Series, error) {
	return make(types.Series, len(closes)/2), nil
}

type AdapterTestSuite struct {
	suite.Suite
	closes []float64
}

func TestAdapterSuite(t *testing.T) {
	suite.Run(t, new(AdapterTestSuite))
}

func (suite *AdapterTestSuite) SetupTest() {
	suite.closes = make([]float64, 40)
	for i := range suite.closes {
		suite.closes[i] = 100 + float64(i%7) - float64(i%3)
	}
}

func (suite *AdapterTestSuite) TestComputeAlignsByIndex() {
	adapter, err := NewDefaultAdapter(14, 20, 2.0)
	suite.Require().NoError(err)

	set, err := adapter.Compute(suite.closes)
	suite.Require().NoError(err)

	suite.Len(set.RSI, len(suite.closes))
	suite.Len(set.BollingerWidth, len(suite.closes))
	suite.True(set.RSI[13].IsNone())
	suite.True(set.RSI[14].IsSome())
	suite.True(set.BollingerWidth[18].IsNone())
	suite.True(set.BollingerWidth[19].IsSome())
}

func (suite *AdapterTestSuite) TestComputeEmpty() {
	adapter, err := NewDefaultAdapter(14, 20, 2.0)
	suite.Require().NoError(err)

	_, err = adapter.Compute(nil)
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *AdapterTestSuite) TestNewDefaultAdapterRejectsBadParams() {
	_, err := NewDefaultAdapter(0, 20, 2.0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	_, err = NewDefaultAdapter(14, 20, 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidStdDev))
}

func (suite *AdapterTestSuite) TestMissingIndicator() {
	registry := NewIndicatorRegistry()
	suite.Require().NoError(registry.Register(NewRSI()))

	_, err := NewAdapter(registry).Compute(suite.closes)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *AdapterTestSuite) TestMisalignedSeries() {
	registry := NewIndicatorRegistry()
	suite.Require().NoError(registry.Register(&shortIndicator{name: types.IndicatorTypeRSI}))
	suite.Require().NoError(registry.Register(NewBollingerBands()))

	_, err := NewAdapter(registry).Compute(suite.closes)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorCalculation))
}
