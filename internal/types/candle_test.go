package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type CandleTestSuite struct {
	suite.Suite
}

func TestCandleSuite(t *testing.T) {
	suite.Run(t, new(CandleTestSuite))
}

func (suite *CandleTestSuite) TestDirection() {
	suite.True(Candle{Open: 10, Close: 12}.IsBullish())
	suite.False(Candle{Open: 10, Close: 12}.IsBearish())
	suite.True(Candle{Open: 12, Close: 9}.IsBearish())

	doji := Candle{Open: 10, Close: 10}
	suite.False(doji.IsBullish())
	suite.False(doji.IsBearish())
}

func (suite *CandleTestSuite) TestIsConsistent() {
	suite.True(Candle{Open: 10, High: 13, Low: 9, Close: 12}.IsConsistent())
	suite.False(Candle{Open: 10, High: 11, Low: 9, Close: 12}.IsConsistent())
	suite.False(Candle{Open: 10, High: 13, Low: 10.5, Close: 12}.IsConsistent())
}

func (suite *CandleTestSuite) TestJSONFieldsAreCanonical() {
	raw, err := json.Marshal(Candle{Timestamp: time.Unix(0, 0).UTC(), Open: 1, High: 2, Low: 0.5, Close: 1.5})
	suite.Require().NoError(err)

	var fields map[string]any
	suite.Require().NoError(json.Unmarshal(raw, &fields))
	suite.Len(fields, 5)

	for _, key := range []string{"timestamp", "open", "high", "low", "close"} {
		suite.Contains(fields, key)
	}
}

func (suite *CandleTestSuite) TestBarProjectionDropsVolume() {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("EST", -5*3600))
	bar := Bar{Time: ts, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 1234}

	candle := bar.Candle()
	suite.Equal(Candle{Timestamp: ts.UTC(), Open: 1, High: 2, Low: 0.5, Close: 1.5}, candle)
	suite.Equal(time.UTC, candle.Timestamp.Location())
}

func (suite *CandleTestSuite) TestSequenceHelpers() {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seq := CandleSequence{
		{Timestamp: base, Close: 1},
		{Timestamp: base.Add(time.Hour), Close: 2},
		{Timestamp: base.Add(time.Hour), Close: 3},
	}

	suite.Equal([]float64{1, 2, 3}, seq.Closes())
	suite.True(seq.IsSorted())

	clone := seq.Clone()
	clone[0].Close = 99
	suite.Equal(1.0, seq[0].Close)

	seq[2].Timestamp = base.Add(-time.Hour)
	suite.False(seq.IsSorted())

	suite.Nil(CandleSequence(nil).Clone())
	suite.Empty(CandleSequence{}.Closes())
}
