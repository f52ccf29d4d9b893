package provider

import (
	"context"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
)

const (
	// DefaultBinanceLimit is the number of most recent klines requested per fetch.
	DefaultBinanceLimit   = 1000
	DefaultBinanceTimeout = 15 * time.Second
)

// BinanceKlinesService is the subset of the go-binance klines service the adapter uses.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	Limit(limit int) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient creates klines services.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceAPIWrapper struct {
	client *binance.Client
}

func (w *binanceAPIWrapper) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesServiceWrapper{service: w.client.NewKlinesService()}
}

type binanceKlinesServiceWrapper struct {
	service *binance.KlinesService
}

func (w *binanceKlinesServiceWrapper) Symbol(symbol string) BinanceKlinesService {
	w.service = w.service.Symbol(symbol)
	return w
}

func (w *binanceKlinesServiceWrapper) Interval(interval string) BinanceKlinesService {
	w.service = w.service.Interval(interval)
	return w
}

func (w *binanceKlinesServiceWrapper) Limit(limit int) BinanceKlinesService {
	w.service = w.service.Limit(limit)
	return w
}

func (w *binanceKlinesServiceWrapper) Do(ctx context.Context) ([]*binance.Kline, error) {
	return w.service.Do(ctx)
}

// BinanceConfig configures the exchange adapter.
type BinanceConfig struct {
	// BaseURL overrides the Binance REST endpoint. Empty means the public API.
	BaseURL string
	Limit   int
	Timeout time.Duration
}

// BinanceAdapter fetches klines for the crypto market from Binance.
type BinanceAdapter struct {
	apiClient BinanceAPIClient
	symbols   map[types.Market]string
	limit     int
	timeout   time.Duration
}

// NewBinanceAdapter creates a Binance adapter using the public market data API.
// Public klines do not require an API key.
func NewBinanceAdapter(config BinanceConfig) *BinanceAdapter {
	client := binance.NewClient("", "")
	if config.BaseURL != "" {
		client.BaseURL = config.BaseURL
	}

	return NewBinanceAdapterWithAPI(&binanceAPIWrapper{client: client}, config)
}

// NewBinanceAdapterWithAPI creates a Binance adapter on top of the given API client.
func NewBinanceAdapterWithAPI(apiClient BinanceAPIClient, config BinanceConfig) *BinanceAdapter {
	limit := config.Limit
	if limit <= 0 {
		limit = DefaultBinanceLimit
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultBinanceTimeout
	}

	return &BinanceAdapter{
		apiClient: apiClient,
		symbols: map[types.Market]string{
			types.MarketBitcoin: "BTCUSDT",
		},
		limit:   limit,
		timeout: timeout,
	}
}

func (a *BinanceAdapter) Name() string {
	return "binance"
}

// Fetch downloads the most recent klines for the market.
// Binance timestamps are milliseconds since epoch; the kline open time becomes the bar time.
func (a *BinanceAdapter) Fetch(ctx context.Context, market types.Market, timeframe types.Timeframe) (Frame, error) {
	symbol, err := lookupTicker(a.symbols, a.Name(), market)
	if err != nil {
		return Frame{}, err
	}

	interval, err := binanceInterval(timeframe)
	if err != nil {
		return Frame{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	klines, err := a.apiClient.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(a.limit).
		Do(ctx)
	if err != nil {
		return Frame{}, fetchError(a.Name(), symbol, err)
	}

	if len(klines) == 0 {
		return Frame{}, emptyDataError(a.Name(), symbol, timeframe)
	}

	bars := make([]types.Bar, 0, len(klines))

	for i, k := range klines {
		bar, err := klineToBar(k)
		if err != nil {
			return Frame{}, errors.Wrapf(errors.ErrCodeMarketDataSchema, err, "kline %d for %s is missing canonical fields", i, symbol)
		}

		bars = append(bars, bar)
	}

	sortBars(bars)

	return Frame{Bars: bars, Interval: timeframe}, nil
}

// klineToBar converts a Binance kline into a raw bar.
func klineToBar(k *binance.Kline) (types.Bar, error) {
	if k == nil || k.OpenTime <= 0 {
		return types.Bar{}, errors.New(errors.ErrCodeMarketDataSchema, "open time missing")
	}

	fields := []struct {
		name  string
		value string
	}{
		{"open", k.Open},
		{"high", k.High},
		{"low", k.Low},
		{"close", k.Close},
	}

	prices := make([]float64, len(fields))

	for i, f := range fields {
		d, err := decimal.NewFromString(f.value)
		if err != nil {
			return types.Bar{}, errors.Wrapf(errors.ErrCodeMarketDataSchema, err, "invalid %s price %q", f.name, f.value)
		}

		prices[i] = d.InexactFloat64()
	}

	// Volume is not part of the canonical schema, so a bad value is not fatal.
	volume := 0.0
	if d, err := decimal.NewFromString(k.Volume); err == nil {
		volume = d.InexactFloat64()
	}

	return types.Bar{
		Time:   time.UnixMilli(k.OpenTime).UTC(),
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: volume,
	}, nil
}

// binanceInterval converts a timeframe to a Binance interval string.
// Binance intervals: 1m, 3m, 5m, 15m, 30m, 1h, 2h, 4h, 6h, 8h, 12h, 1d, 3d, 1w, 1M
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func binanceInterval(timeframe types.Timeframe) (string, error) {
	switch timeframe {
	case types.TimeframeFifteenMinutes,
		types.TimeframeThirtyMinutes,
		types.TimeframeOneHour,
		types.TimeframeFourHours,
		types.TimeframeOneDay,
		types.TimeframeOneWeek:
		return string(timeframe), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported timeframe for Binance: %q", timeframe)
	}
}
