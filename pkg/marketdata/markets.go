package marketdata

import (
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
)

// MarketInfo describes one selectable market.
type MarketInfo struct {
	Market      types.Market      `json:"market"`
	DisplayName string            `json:"displayName"`
	Source      types.Source      `json:"source"`
	Adapter     string            `json:"adapter"`
	Timeframes  []types.Timeframe `json:"timeframes"`
}

var vendorTimeframes = []types.Timeframe{
	types.TimeframeOneHour,
	types.TimeframeFourHours,
	types.TimeframeOneDay,
}

// GetSupportedMarkets lists every market in selector order. vendor names the
// configured vendor adapter.
func GetSupportedMarkets(vendor string) []MarketInfo {
	markets := types.SupportedMarkets()
	infos := make([]MarketInfo, 0, len(markets))

	for _, market := range markets {
		infos = append(infos, marketInfo(market, vendor))
	}

	return infos
}

// GetMarketInfo looks a market up by identifier or display name.
func GetMarketInfo(name string, vendor string) (MarketInfo, error) {
	market, err := types.ParseMarket(name)
	if err != nil {
		return MarketInfo{}, err
	}

	return marketInfo(market, vendor), nil
}

func marketInfo(market types.Market, vendor string) MarketInfo {
	info := MarketInfo{
		Market:      market,
		DisplayName: market.DisplayName(),
		Source:      market.Source(),
		Adapter:     vendor,
		Timeframes:  nil,
	}

	if info.Source == types.SourceExchange {
		info.Adapter = "binance"
		info.Timeframes = types.SupportedTimeframes()
	} else {
		info.Timeframes = append([]types.Timeframe(nil), vendorTimeframes...)
	}

	return info
}
