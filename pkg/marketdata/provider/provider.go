package provider

import (
	"context"
	"fmt"
	"sort"

	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
)

// VendorType selects which general market-data vendor serves the non-exchange markets.
type VendorType string

const (
	VendorYahoo   VendorType = "yahoo"
	VendorPolygon VendorType = "polygon"
)

// Frame is the raw result of one adapter fetch.
type Frame struct {
	// Bars are sorted by time, ascending.
	Bars []types.Bar
	// Interval is the bucket width the bars were fetched at. It can be finer than
	// the requested timeframe when the source does not offer that width natively.
	Interval types.Timeframe
}

// Adapter turns a provider-specific response into raw bars, or fails with one of
// the coded errors in pkg/errors:
//   - ErrCodeInvalidConfiguration when the market or timeframe cannot be served (no I/O happens)
//   - ErrCodeMarketDataFetchFailed when the remote call errors or times out
//   - ErrCodeNoDataFound when the call succeeds with zero rows
//   - ErrCodeMarketDataSchema when the canonical fields cannot be located in the response
type Adapter interface {
	// Name returns a short identifier used in logs and metrics.
	Name() string
	// Fetch downloads the most recent window of bars for the market at the given timeframe.
	Fetch(ctx context.Context, market types.Market, timeframe types.Timeframe) (Frame, error)
}

// NewVendorAdapter creates the vendor adapter selected by vendor.
func NewVendorAdapter(vendor VendorType, yahoo YahooConfig, polygon PolygonConfig) (Adapter, error) {
	switch vendor {
	case VendorYahoo:
		return NewYahooAdapter(yahoo), nil
	case VendorPolygon:
		return NewPolygonAdapter(polygon)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data vendor: %s", vendor)
	}
}

// VendorInterval maps a requested timeframe onto the intervals a vendor offers.
// Vendors only serve hourly and daily buckets; 4h is fetched hourly and resampled
// by the pipeline. Anything else is rejected before any network call.
func VendorInterval(timeframe types.Timeframe) (types.Timeframe, error) {
	switch timeframe {
	case types.TimeframeOneHour, types.TimeframeFourHours:
		return types.TimeframeOneHour, nil
	case types.TimeframeOneDay:
		return types.TimeframeOneDay, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidConfiguration,
			"invalid timeframe %q for vendor data: use 1h, 4h or 1d", timeframe)
	}
}

func lookupTicker(tickers map[types.Market]string, source string, market types.Market) (string, error) {
	ticker, ok := tickers[market]
	if !ok {
		return "", errors.Newf(errors.ErrCodeInvalidConfiguration, "%s does not serve market %s", source, market)
	}

	return ticker, nil
}

func emptyDataError(source, ticker string, timeframe types.Timeframe) error {
	return errors.Newf(errors.ErrCodeNoDataFound,
		"%s returned empty data for %s at %s, try a different timeframe", source, ticker, timeframe)
}

func fetchError(source, ticker string, cause error) error {
	return errors.Wrap(errors.ErrCodeMarketDataFetchFailed, fmt.Sprintf("failed to fetch %s from %s", ticker, source), cause)
}

func sortBars(bars []types.Bar) {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
}
