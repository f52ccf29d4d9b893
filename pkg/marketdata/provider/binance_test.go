package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/suite"

	"github.com/MLEngineer1/smc-cash-cow/internal/testhelper"
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	smcerrors "github.com/MLEngineer1/smc-cash-cow/pkg/errors"
)

// mockBinanceAPIClient implements BinanceAPIClient for testing.
type mockBinanceAPIClient struct {
	klines    []*binance.Kline
	klinesErr error
	callCount int
	lastQuery *mockBinanceKlinesService
}

func (m *mockBinanceAPIClient) NewKlinesService() BinanceKlinesService {
	svc := &mockBinanceKlinesService{client: m}
	m.lastQuery = svc

	return svc
}

type mockBinanceKlinesService struct {
	client   *mockBinanceAPIClient
	symbol   string
	interval string
	limit    int
	deadline bool
}

func (m *mockBinanceKlinesService) Symbol(symbol string) BinanceKlinesService {
	m.symbol = symbol
	return m
}

func (m *mockBinanceKlinesService) Interval(interval string) BinanceKlinesService {
	m.interval = interval
	return m
}

func (m *mockBinanceKlinesService) Limit(limit int) BinanceKlinesService {
	m.limit = limit
	return m
}

func (m *mockBinanceKlinesService) Do(ctx context.Context) ([]*binance.Kline, error) {
	m.client.callCount++
	_, m.deadline = ctx.Deadline()

	return m.client.klines, m.client.klinesErr
}

func kline(openTime int64, open, high, low, close string) *binance.Kline {
	return &binance.Kline{
		OpenTime:  openTime,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    "12.5",
		CloseTime: openTime + 3_599_999,
	}
}

type BinanceAdapterTestSuite struct {
	suite.Suite
}

func TestBinanceAdapterSuite(t *testing.T) {
	suite.Run(t, new(BinanceAdapterTestSuite))
}

func (suite *BinanceAdapterTestSuite) TestNewBinanceAdapterDefaults() {
	adapter := NewBinanceAdapter(BinanceConfig{})
	suite.NotNil(adapter.apiClient)
	suite.Equal(DefaultBinanceLimit, adapter.limit)
	suite.Equal(DefaultBinanceTimeout, adapter.timeout)
	suite.Equal("binance", adapter.Name())
}

func (suite *BinanceAdapterTestSuite) TestFetchConvertsKlines() {
	api := &mockBinanceAPIClient{
		klines: []*binance.Kline{
			kline(1_704_070_800_000, "42100.5", "42300", "42000", "42250.25"),
			kline(1_704_067_200_000, "42000", "42200", "41900", "42100.5"),
		},
	}
	adapter := NewBinanceAdapterWithAPI(api, BinanceConfig{})

	frame, err := adapter.Fetch(context.Background(), types.MarketBitcoin, types.TimeframeOneHour)
	suite.Require().NoError(err)

	suite.Equal("BTCUSDT", api.lastQuery.symbol)
	suite.Equal("1h", api.lastQuery.interval)
	suite.Equal(1000, api.lastQuery.limit)
	suite.True(api.lastQuery.deadline)

	suite.Equal(types.TimeframeOneHour, frame.Interval)
	suite.Require().Len(frame.Bars, 2)

	// sorted ascending, milliseconds converted to UTC time
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), frame.Bars[0].Time)
	suite.Equal(time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), frame.Bars[1].Time)
	suite.Equal(42000.0, frame.Bars[0].Open)
	suite.Equal(42250.25, frame.Bars[1].Close)
	suite.Equal(12.5, frame.Bars[1].Volume)
}

func (suite *BinanceAdapterTestSuite) TestFetchUnsupportedMarket() {
	api := &mockBinanceAPIClient{}
	adapter := NewBinanceAdapterWithAPI(api, BinanceConfig{})

	_, err := adapter.Fetch(context.Background(), types.MarketSPY, types.TimeframeOneHour)
	suite.Error(err)
	suite.True(smcerrors.IsConfigurationError(err))
	suite.Equal(0, api.callCount)
}

func (suite *BinanceAdapterTestSuite) TestFetchUnsupportedTimeframe() {
	api := &mockBinanceAPIClient{}
	adapter := NewBinanceAdapterWithAPI(api, BinanceConfig{})

	_, err := adapter.Fetch(context.Background(), types.MarketBitcoin, types.Timeframe("2h"))
	suite.Error(err)
	suite.True(smcerrors.IsConfigurationError(err))
	suite.Equal(0, api.callCount)
}

func (suite *BinanceAdapterTestSuite) TestFetchRemoteError() {
	api := &mockBinanceAPIClient{klinesErr: errors.New("connection reset")}
	adapter := NewBinanceAdapterWithAPI(api, BinanceConfig{})

	_, err := adapter.Fetch(context.Background(), types.MarketBitcoin, types.TimeframeOneDay)
	suite.Error(err)
	suite.True(smcerrors.IsFetchError(err))
	suite.Contains(err.Error(), "connection reset")
}

func (suite *BinanceAdapterTestSuite) TestFetchEmpty() {
	api := &mockBinanceAPIClient{klines: []*binance.Kline{}}
	adapter := NewBinanceAdapterWithAPI(api, BinanceConfig{})

	_, err := adapter.Fetch(context.Background(), types.MarketBitcoin, types.TimeframeOneDay)
	suite.Error(err)
	suite.True(smcerrors.IsEmptyDataError(err))
}

func (suite *BinanceAdapterTestSuite) TestFetchSchemaErrors() {
	tests := []struct {
		name  string
		kline *binance.Kline
	}{
		{"missing open time", kline(0, "1", "2", "0.5", "1.5")},
		{"unparsable close", kline(1_704_067_200_000, "1", "2", "0.5", "")},
		{"renamed field leaves high empty", kline(1_704_067_200_000, "1", "", "0.5", "1.5")},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			api := &mockBinanceAPIClient{klines: []*binance.Kline{tc.kline}}
			adapter := NewBinanceAdapterWithAPI(api, BinanceConfig{})

			_, err := adapter.Fetch(context.Background(), types.MarketBitcoin, types.TimeframeOneHour)
			suite.Error(err)
			suite.True(smcerrors.IsSchemaError(err))
			suite.False(smcerrors.IsFetchError(err))
		})
	}
}

func (suite *BinanceAdapterTestSuite) TestBadVolumeIsIgnored() {
	k := kline(1_704_067_200_000, "1", "2", "0.5", "1.5")
	k.Volume = "n/a"
	api := &mockBinanceAPIClient{klines: []*binance.Kline{k}}
	adapter := NewBinanceAdapterWithAPI(api, BinanceConfig{})

	frame, err := adapter.Fetch(context.Background(), types.MarketBitcoin, types.TimeframeOneHour)
	suite.NoError(err)
	suite.Equal(0.0, frame.Bars[0].Volume)
}

func (suite *BinanceAdapterTestSuite) TestBinanceInterval() {
	for _, tf := range types.SupportedTimeframes() {
		interval, err := binanceInterval(tf)
		suite.NoError(err)
		suite.Equal(string(tf), interval)
	}

	_, err := binanceInterval("1M")
	suite.Error(err)
}

func (suite *BinanceAdapterTestSuite) TestFetchOverHTTP() {
	server := testhelper.NewMockMarketServer()
	defer server.Close()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, 0, 5)

	for i := 0; i < 5; i++ {
		bars = append(bars, types.Bar{
			Time:   base.Add(time.Duration(i) * 4 * time.Hour),
			Open:   100 + float64(i),
			High:   102 + float64(i),
			Low:    99 + float64(i),
			Close:  101 + float64(i),
			Volume: 10,
		})
	}

	server.SetKlines("BTCUSDT", bars)

	adapter := NewBinanceAdapter(BinanceConfig{BaseURL: server.URL(), Limit: 3, Timeout: 5 * time.Second})

	frame, err := adapter.Fetch(context.Background(), types.MarketBitcoin, types.TimeframeFourHours)
	suite.Require().NoError(err)
	suite.Require().Len(frame.Bars, 3)
	suite.Equal(bars[2].Time, frame.Bars[0].Time)
	suite.Equal(105.0, frame.Bars[2].Close)

	requests := server.Requests()
	suite.Require().Len(requests, 1)
	suite.Equal("4h", requests[0].Query().Get("interval"))
	suite.Equal("3", requests[0].Query().Get("limit"))
}

func (suite *BinanceAdapterTestSuite) TestFetchOverHTTPServerError() {
	server := testhelper.NewMockMarketServer()
	defer server.Close()

	server.SetStatus("BTCUSDT", 500)

	adapter := NewBinanceAdapter(BinanceConfig{BaseURL: server.URL()})

	_, err := adapter.Fetch(context.Background(), types.MarketBitcoin, types.TimeframeOneHour)
	suite.Error(err)
	suite.True(smcerrors.IsFetchError(err))
}
