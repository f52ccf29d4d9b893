package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
)

const (
	DefaultYahooBaseURL = "https://query1.finance.yahoo.com"
	// DefaultYahooRange is the lookback window requested from the chart API.
	DefaultYahooRange   = "60d"
	DefaultYahooTimeout = 30 * time.Second
)

// YahooConfig configures the Yahoo Finance vendor adapter.
type YahooConfig struct {
	BaseURL string
	Range   string
	Timeout time.Duration
}

// YahooAdapter fetches bars from the Yahoo Finance chart API.
type YahooAdapter struct {
	client   *resty.Client
	symbols  map[types.Market]string
	lookback string
}

// NewYahooAdapter creates a Yahoo adapter. Zero config values fall back to defaults.
func NewYahooAdapter(config YahooConfig) *YahooAdapter {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}

	lookback := config.Range
	if lookback == "" {
		lookback = DefaultYahooRange
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultYahooTimeout
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", "Mozilla/5.0")

	return &YahooAdapter{
		client: client,
		symbols: map[types.Market]string{
			types.MarketGold: "GC=F",
			types.MarketEuro: "EURUSD=X",
			types.MarketSPY:  "SPY",
		},
		lookback: lookback,
	}
}

func (a *YahooAdapter) Name() string {
	return "yahoo"
}

// yahooChart is the response structure from the Yahoo Finance chart API.
// Slices are left nil when a field is absent so the adapter can tell a renamed
// column from an empty one; individual values are nil for holiday rows.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch downloads the lookback window of bars for the market.
func (a *YahooAdapter) Fetch(ctx context.Context, market types.Market, timeframe types.Timeframe) (Frame, error) {
	ticker, err := lookupTicker(a.symbols, a.Name(), market)
	if err != nil {
		return Frame{}, err
	}

	interval, err := VendorInterval(timeframe)
	if err != nil {
		return Frame{}, err
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetPathParam("ticker", ticker).
		SetQueryParams(map[string]string{
			"interval": string(interval),
			"range":    a.lookback,
		}).
		Get("/v8/finance/chart/{ticker}")
	if err != nil {
		return Frame{}, fetchError(a.Name(), ticker, err)
	}

	var chart yahooChart
	if jsonErr := json.Unmarshal(resp.Body(), &chart); jsonErr != nil {
		if resp.IsError() {
			return Frame{}, fetchError(a.Name(), ticker, fmt.Errorf("status %d", resp.StatusCode()))
		}

		return Frame{}, errors.Wrapf(errors.ErrCodeMarketDataSchema, jsonErr, "failed to decode %s chart response", ticker)
	}

	if chart.Chart.Error != nil {
		return Frame{}, fetchError(a.Name(), ticker,
			fmt.Errorf("api error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description))
	}

	if resp.IsError() {
		return Frame{}, fetchError(a.Name(), ticker, fmt.Errorf("status %d", resp.StatusCode()))
	}

	bars, err := chartToBars(ticker, chart)
	if err != nil {
		return Frame{}, err
	}

	if len(bars) == 0 {
		return Frame{}, emptyDataError(a.Name(), ticker, timeframe)
	}

	sortBars(bars)

	return Frame{Bars: bars, Interval: interval}, nil
}

func chartToBars(ticker string, chart yahooChart) ([]types.Bar, error) {
	if len(chart.Chart.Result) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		return nil, nil
	}

	if len(result.Indicators.Quote) == 0 {
		return nil, errors.Newf(errors.ErrCodeMarketDataSchema, "missing essential columns for %s: quote block absent", ticker)
	}

	quote := result.Indicators.Quote[0]
	columns := []struct {
		name   string
		values []*float64
	}{
		{"open", quote.Open},
		{"high", quote.High},
		{"low", quote.Low},
		{"close", quote.Close},
	}

	for _, col := range columns {
		if col.values == nil {
			return nil, errors.Newf(errors.ErrCodeMarketDataSchema, "missing essential columns for %s: %s", ticker, col.name)
		}

		if len(col.values) != len(result.Timestamp) {
			return nil, errors.Newf(errors.ErrCodeMarketDataSchema,
				"column %s for %s has %d values for %d timestamps", col.name, ticker, len(col.values), len(result.Timestamp))
		}
	}

	bars := make([]types.Bar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o, h, l, c := quote.Open[i], quote.High[i], quote.Low[i], quote.Close[i]
		if o == nil || h == nil || l == nil || c == nil {
			// null rows are sessions without trading
			continue
		}

		volume := 0.0
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}

		bars = append(bars, types.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   *o,
			High:   *h,
			Low:    *l,
			Close:  *c,
			Volume: volume,
		})
	}

	return bars, nil
}
