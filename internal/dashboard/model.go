// Package dashboard is the interactive terminal front end: pick a market, pick
// a timeframe, read the order block signals.
package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MLEngineer1/smc-cash-cow/internal/report"
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/marketdata"
)

// Application states.
const (
	StateMarketSelect = iota
	StateTimeframeSelect
	StateAnalysis
)

// Analyzer runs one fetch-and-analyze cycle.
type Analyzer interface {
	Analyze(ctx context.Context, market types.Market, timeframe types.Timeframe) *report.Report
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	state         int
	marketList    list.Model
	timeframeList list.Model
	signalTable   table.Model
	market        marketdata.MarketInfo
	timeframe     types.Timeframe
	report        *report.Report
	loading       bool
	width         int
	height        int

	ctx      context.Context
	analyzer Analyzer
	vendor   string
}

// NewModel creates a model starting at the market selector.
func NewModel(ctx context.Context, analyzer Analyzer, vendor string) Model {
	return Model{
		state:         StateMarketSelect,
		marketList:    NewMarketList(vendor),
		timeframeList: newList("Select Timeframe", nil),
		signalTable:   NewSignalTable(),
		market:        marketdata.MarketInfo{},
		timeframe:     "",
		report:        nil,
		loading:       false,
		width:         0,
		height:        0,
		ctx:           ctx,
		analyzer:      analyzer,
		vendor:        vendor,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.marketList.SetSize(msg.Width, msg.Height-4)
		m.timeframeList.SetSize(msg.Width, msg.Height-4)
		m.signalTable.SetWidth(msg.Width)
		m.signalTable.SetHeight(max(msg.Height-16, 3))

		return m, nil

	case AnalysisMsg:
		if msg.Report == nil || msg.Report.Market != m.market.Market || msg.Report.Timeframe != m.timeframe {
			return m, nil
		}

		m.loading = false
		m.report = msg.Report
		m.signalTable = UpdateSignalRows(m.signalTable, m.report)

		return m, nil
	}

	switch m.state {
	case StateMarketSelect:
		return m.updateMarketSelect(msg)
	case StateTimeframeSelect:
		return m.updateTimeframeSelect(msg)
	case StateAnalysis:
		return m.updateAnalysis(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateTimeframeSelect:
		m.state = StateMarketSelect
	case StateAnalysis:
		m.report = nil
		m.loading = false
		m.timeframe = ""
		m.signalTable = UpdateSignalRows(m.signalTable, nil)
		m.state = StateTimeframeSelect
	}

	return m, nil
}

func (m Model) updateMarketSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if item, ok := m.marketList.SelectedItem().(marketItem); ok {
			m.market = item.info
			m.timeframeList = NewTimeframeList(item.info)
			m.timeframeList.SetSize(m.width, max(m.height-4, 0))
			m.state = StateTimeframeSelect

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.marketList, cmd = m.marketList.Update(msg)

	return m, cmd
}

func (m Model) updateTimeframeSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if item, ok := m.timeframeList.SelectedItem().(timeframeItem); ok {
			m.timeframe = item.timeframe
			m.state = StateAnalysis

			return m.startAnalysis()
		}
	}

	var cmd tea.Cmd
	m.timeframeList, cmd = m.timeframeList.Update(msg)

	return m, cmd
}

func (m Model) updateAnalysis(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "r" && !m.loading {
		return m.startAnalysis()
	}

	var cmd tea.Cmd
	m.signalTable, cmd = m.signalTable.Update(msg)

	return m, cmd
}

func (m Model) startAnalysis() (tea.Model, tea.Cmd) {
	m.loading = true

	return m, analyze(m.ctx, m.analyzer, m.market.Market, m.timeframe)
}

// analyze returns a command running the analysis off the UI goroutine.
func analyze(ctx context.Context, analyzer Analyzer, market types.Market, timeframe types.Timeframe) tea.Cmd {
	return func() tea.Msg {
		return AnalysisMsg{Report: analyzer.Analyze(ctx, market, timeframe)}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateMarketSelect:
		s.WriteString(report.Styles.Title.Render("SMC Order Blocks"))
		s.WriteString("\n\n")
		s.WriteString(m.marketList.View())
		s.WriteString("\n")
		s.WriteString(report.Styles.Help.Render("Press Enter to select, q to quit"))

	case StateTimeframeSelect:
		s.WriteString(report.Styles.Title.Render(m.market.DisplayName))
		s.WriteString("\n\n")
		s.WriteString(m.timeframeList.View())
		s.WriteString("\n")
		s.WriteString(report.Styles.Help.Render("Press Enter to analyze, Esc to go back"))

	case StateAnalysis:
		s.WriteString(m.analysisView())
	}

	return s.String()
}

func (m Model) analysisView() string {
	var s strings.Builder

	s.WriteString(report.Styles.Title.Render(fmt.Sprintf("%s · %s", m.market.DisplayName, m.timeframe)))
	s.WriteString("\n\n")

	switch {
	case m.loading && m.report == nil:
		s.WriteString("Fetching candles...\n")

	case m.report == nil:

	case !m.report.HasData():
		s.WriteString(report.Styles.Error.Render(report.NoDataMessage))
		s.WriteString("\n")
		s.WriteString(report.Styles.Help.Render(m.report.Reason))
		s.WriteString("\n")

	default:
		for _, warning := range m.report.Warnings {
			s.WriteString(report.Styles.Warning.Render("Warning: " + warning))
			s.WriteString("\n")
		}

		s.WriteString(m.report.Summary())
		s.WriteString("\n\n")

		if last, err := m.report.LastSignal().Take(); err == nil {
			s.WriteString(report.Styles.SignalBox.Render(fmt.Sprintf("Last signal %s  entry %.4f  stop %.4f",
				last.Timestamp.UTC().Format("2006-01-02 15:04"), last.EntryPrice, last.StopLoss)))
			s.WriteString("\n")
			s.WriteString(m.signalTable.View())
		} else {
			s.WriteString(report.NoSignalsMessage)
		}

		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(report.Styles.Help.Render("r: refresh | Esc: back | q: quit"))

	return s.String()
}
