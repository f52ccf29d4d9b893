package dashboard

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/MLEngineer1/smc-cash-cow/internal/report"
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/marketdata"
)

// marketItem implements list.Item for the market selector.
type marketItem struct {
	info marketdata.MarketInfo
}

func (i marketItem) Title() string { return i.info.DisplayName }
func (i marketItem) Description() string {
	return fmt.Sprintf("%s · %s source via %s", i.info.Market, i.info.Source, i.info.Adapter)
}
func (i marketItem) FilterValue() string { return i.info.DisplayName }

// timeframeItem implements list.Item for the timeframe selector.
type timeframeItem struct {
	timeframe types.Timeframe
	supported bool
	adapter   string
}

func (i timeframeItem) Title() string { return string(i.timeframe) }
func (i timeframeItem) Description() string {
	if !i.supported {
		return fmt.Sprintf("not offered by %s", i.adapter)
	}

	return fmt.Sprintf("%s candles", i.timeframe.Duration())
}
func (i timeframeItem) FilterValue() string { return string(i.timeframe) }

func newList(title string, items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// NewMarketList creates the market selector in display order.
func NewMarketList(vendor string) list.Model {
	markets := marketdata.GetSupportedMarkets(vendor)
	items := make([]list.Item, 0, len(markets))

	for _, info := range markets {
		items = append(items, marketItem{info: info})
	}

	return newList("Select Market", items)
}

// NewTimeframeList lists every timeframe, marking the ones the market's
// source does not offer. Picking one of those yields an empty report.
func NewTimeframeList(info marketdata.MarketInfo) list.Model {
	offered := make(map[types.Timeframe]bool, len(info.Timeframes))
	for _, tf := range info.Timeframes {
		offered[tf] = true
	}

	timeframes := types.SupportedTimeframes()
	items := make([]list.Item, 0, len(timeframes))

	for _, tf := range timeframes {
		items = append(items, timeframeItem{timeframe: tf, supported: offered[tf], adapter: info.Adapter})
	}

	return newList("Select Timeframe", items)
}

// NewSignalTable creates the signals table.
func NewSignalTable() table.Model {
	columns := []table.Column{
		{Title: "Time", Width: 22},
		{Title: "Close", Width: 16},
		{Title: "Stop Loss", Width: 14},
		{Title: "RSI", Width: 8},
		{Title: "BB Width", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// UpdateSignalRows fills the table with the report's entries, newest first.
// The close column shows the move from the candle before the signal.
func UpdateSignalRows(t table.Model, r *report.Report) table.Model {
	rows := make([]table.Row, 0)

	if r != nil {
		for i := len(r.Rows) - 1; i >= 0; i-- {
			row := r.Rows[i]
			if !row.Entry {
				continue
			}

			previous := 0.0
			if i > 0 {
				previous = r.Rows[i-1].Close
			}

			rows = append(rows, table.Row{
				row.Timestamp.UTC().Format("2006-01-02 15:04"),
				report.FormatPriceMove(row.Close, previous),
				report.FormatOptional(row.StopLoss, "%.4f"),
				report.FormatOptional(row.RSI, "%.2f"),
				report.FormatOptional(row.BBWidth, "%.2f%%"),
			})
		}
	}

	t.SetRows(rows)

	return t
}
