package types

import (
	"strings"
	"time"

	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
)

// Market identifies one of the fixed set of supported instruments.
type Market string

const (
	MarketGold    Market = "XAUUSD"
	MarketBitcoin Market = "BTCUSD"
	MarketEuro    Market = "EURUSD"
	MarketSPY     Market = "SPY"
)

// Source names the upstream family a market is served from.
type Source string

const (
	SourceExchange Source = "exchange"
	SourceVendor   Source = "vendor"
)

var supportedMarkets = []Market{MarketGold, MarketBitcoin, MarketEuro, MarketSPY}

// SupportedMarkets returns every market in display order.
func SupportedMarkets() []Market {
	out := make([]Market, len(supportedMarkets))
	copy(out, supportedMarkets)

	return out
}

// DisplayName returns the human readable label used by selectors.
func (m Market) DisplayName() string {
	switch m {
	case MarketGold:
		return "XAU/USD (Gold)"
	case MarketBitcoin:
		return "BTC/USD"
	case MarketEuro:
		return "EUR/USD (Forex)"
	case MarketSPY:
		return "SPY (Stocks)"
	default:
		return string(m)
	}
}

// Source returns which adapter family serves the market.
func (m Market) Source() Source {
	if m == MarketBitcoin {
		return SourceExchange
	}

	return SourceVendor
}

// Valid reports whether m is one of the supported markets.
func (m Market) Valid() bool {
	for _, s := range supportedMarkets {
		if s == m {
			return true
		}
	}

	return false
}

// ParseMarket accepts either the market identifier ("BTCUSD") or its display
// name ("BTC/USD"), case-insensitively.
func ParseMarket(s string) (Market, error) {
	s = strings.TrimSpace(s)
	for _, m := range supportedMarkets {
		if strings.EqualFold(s, string(m)) || strings.EqualFold(s, m.DisplayName()) {
			return m, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidMarket, "unsupported market %q", s)
}

// Timeframe is a candle bucket width as a string such as "1h".
type Timeframe string

const (
	TimeframeFifteenMinutes Timeframe = "15m"
	TimeframeThirtyMinutes  Timeframe = "30m"
	TimeframeOneHour        Timeframe = "1h"
	TimeframeFourHours      Timeframe = "4h"
	TimeframeOneDay         Timeframe = "1d"
	TimeframeOneWeek        Timeframe = "1w"
)

var supportedTimeframes = []Timeframe{
	TimeframeFifteenMinutes,
	TimeframeThirtyMinutes,
	TimeframeOneHour,
	TimeframeFourHours,
	TimeframeOneDay,
	TimeframeOneWeek,
}

// SupportedTimeframes returns every timeframe from finest to coarsest.
func SupportedTimeframes() []Timeframe {
	out := make([]Timeframe, len(supportedTimeframes))
	copy(out, supportedTimeframes)

	return out
}

// Duration returns the bucket width, or 0 for an unknown timeframe.
func (t Timeframe) Duration() time.Duration {
	switch t {
	case TimeframeFifteenMinutes:
		return 15 * time.Minute
	case TimeframeThirtyMinutes:
		return 30 * time.Minute
	case TimeframeOneHour:
		return time.Hour
	case TimeframeFourHours:
		return 4 * time.Hour
	case TimeframeOneDay:
		return 24 * time.Hour
	case TimeframeOneWeek:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// Valid reports whether t is one of the supported timeframes.
func (t Timeframe) Valid() bool {
	return t.Duration() > 0
}

// ParseTimeframe validates s against the supported timeframes.
func ParseTimeframe(s string) (Timeframe, error) {
	t := Timeframe(strings.TrimSpace(s))
	if !t.Valid() {
		return "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe %q", s)
	}

	return t, nil
}
