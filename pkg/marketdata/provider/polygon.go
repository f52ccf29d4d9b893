package provider

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
)

const (
	// DefaultPolygonLookback matches the vendor window of the Yahoo adapter.
	DefaultPolygonLookback = 60 * 24 * time.Hour
	DefaultPolygonTimeout  = 30 * time.Second
	polygonPageLimit       = 50000
)

// PolygonAggsIterator is the subset of the polygon aggregates iterator the adapter uses.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient lists aggregates.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonAPIWrapper struct {
	client *polygon.Client
}

func (w *polygonAPIWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

// PolygonConfig configures the Polygon.io vendor adapter.
type PolygonConfig struct {
	APIKey   string
	Lookback time.Duration
	Timeout  time.Duration
}

// PolygonAdapter fetches aggregates from Polygon.io.
type PolygonAdapter struct {
	apiClient PolygonAPIClient
	symbols   map[types.Market]string
	lookback  time.Duration
	timeout   time.Duration
	now       func() time.Time
}

// NewPolygonAdapter creates a Polygon adapter. An API key is required.
func NewPolygonAdapter(config PolygonConfig) (*PolygonAdapter, error) {
	if config.APIKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon api key is required")
	}

	return NewPolygonAdapterWithAPI(&polygonAPIWrapper{client: polygon.New(config.APIKey)}, config), nil
}

// NewPolygonAdapterWithAPI creates a Polygon adapter on top of the given API client.
func NewPolygonAdapterWithAPI(apiClient PolygonAPIClient, config PolygonConfig) *PolygonAdapter {
	lookback := config.Lookback
	if lookback <= 0 {
		lookback = DefaultPolygonLookback
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultPolygonTimeout
	}

	return &PolygonAdapter{
		apiClient: apiClient,
		symbols: map[types.Market]string{
			types.MarketGold: "C:XAUUSD",
			types.MarketEuro: "C:EURUSD",
			types.MarketSPY:  "SPY",
		},
		lookback: lookback,
		timeout:  timeout,
		now:      time.Now,
	}
}

func (a *PolygonAdapter) Name() string {
	return "polygon"
}

// Fetch downloads the lookback window of aggregates for the market.
func (a *PolygonAdapter) Fetch(ctx context.Context, market types.Market, timeframe types.Timeframe) (Frame, error) {
	ticker, err := lookupTicker(a.symbols, a.Name(), market)
	if err != nil {
		return Frame{}, err
	}

	interval, err := VendorInterval(timeframe)
	if err != nil {
		return Frame{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	endDate := a.now().UTC()
	startDate := endDate.Add(-a.lookback)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   polygonTimespan(interval),
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(polygonPageLimit)

	iter := a.apiClient.ListAggs(ctx, params)

	var bars []types.Bar

	for iter.Next() {
		agg := iter.Item()

		ts := time.Time(agg.Timestamp)
		if ts.IsZero() {
			return Frame{}, errors.Newf(errors.ErrCodeMarketDataSchema, "aggregate %d for %s has no timestamp", len(bars), ticker)
		}

		bars = append(bars, types.Bar{
			Time:   ts.UTC(),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if iter.Err() != nil {
		return Frame{}, fetchError(a.Name(), ticker, iter.Err())
	}

	if len(bars) == 0 {
		return Frame{}, emptyDataError(a.Name(), ticker, timeframe)
	}

	sortBars(bars)

	return Frame{Bars: bars, Interval: interval}, nil
}

func polygonTimespan(interval types.Timeframe) models.Timespan {
	if interval == types.TimeframeOneDay {
		return models.Day
	}

	return models.Hour
}
