// Package report joins candles, signals and indicators into one index-aligned
// table and renders it for terminals and JSON clients.
package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/moznion/go-optional"

	"github.com/MLEngineer1/smc-cash-cow/internal/detector"
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
)

const (
	// NoDataMessage is shown when the pipeline returned no candles.
	NoDataMessage = "No valid data available"
	// NoSignalsMessage is shown when candles exist but nothing triggered.
	NoSignalsMessage = "No trading signals generated"
)

// Row is one candle with its signal and indicator values.
type Row struct {
	Timestamp  time.Time                `json:"timestamp"`
	Open       float64                  `json:"open"`
	High       float64                  `json:"high"`
	Low        float64                  `json:"low"`
	Close      float64                  `json:"close"`
	OrderBlock bool                     `json:"orderBlock"`
	Entry      bool                     `json:"entry"`
	Exit       bool                     `json:"exit"`
	StopLoss   optional.Option[float64] `json:"stopLoss"`
	RSI        optional.Option[float64] `json:"rsi"`
	BBWidth    optional.Option[float64] `json:"bbWidth"`
}

// LastSignal summarizes the most recent entry.
type LastSignal struct {
	Timestamp  time.Time `json:"timestamp"`
	EntryPrice float64   `json:"entryPrice"`
	StopLoss   float64   `json:"stopLoss"`
}

// Report is the result of one analysis run.
type Report struct {
	RunID          string          `json:"runId"`
	Market         types.Market    `json:"market"`
	DisplayName    string          `json:"displayName"`
	Timeframe      types.Timeframe `json:"timeframe"`
	GeneratedAt    time.Time       `json:"generatedAt"`
	Reason         string          `json:"reason,omitempty"`
	DetectorStatus detector.Status `json:"detectorStatus,omitempty"`
	Rows           []Row           `json:"rows"`
	Warnings       []string        `json:"warnings,omitempty"`
}

// New joins candles with signals and, when present, indicators. All inputs must
// have the same length.
func New(market types.Market, timeframe types.Timeframe, candles types.CandleSequence, scan detector.Scan, indicators optional.Option[types.IndicatorSet]) (*Report, error) {
	if len(scan.Signals) != len(candles) {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"signals length %d does not match candles length %d", len(scan.Signals), len(candles))
	}

	set := types.IndicatorSet{}
	if indicators.IsSome() {
		set = indicators.Unwrap()
		if len(set.RSI) != len(candles) || len(set.BollingerWidth) != len(candles) {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter,
				"indicator lengths %d/%d do not match candles length %d", len(set.RSI), len(set.BollingerWidth), len(candles))
		}
	}

	rows := make([]Row, len(candles))
	for i, candle := range candles {
		signal := scan.Signals[i]

		rows[i] = Row{
			Timestamp:  candle.Timestamp,
			Open:       candle.Open,
			High:       candle.High,
			Low:        candle.Low,
			Close:      candle.Close,
			OrderBlock: signal.OrderBlock,
			Entry:      signal.Entry,
			Exit:       signal.Exit,
			StopLoss:   signal.StopLoss,
			RSI:        optional.None[float64](),
			BBWidth:    optional.None[float64](),
		}

		if indicators.IsSome() {
			rows[i].RSI = set.RSI[i]
			rows[i].BBWidth = set.BollingerWidth[i]
		}
	}

	return &Report{
		Market:         market,
		DisplayName:    market.DisplayName(),
		Timeframe:      timeframe,
		DetectorStatus: scan.Status,
		Rows:           rows,
	}, nil
}

// Empty returns a report without rows explaining why.
func Empty(market types.Market, timeframe types.Timeframe, reason string) *Report {
	return &Report{
		Market:      market,
		DisplayName: market.DisplayName(),
		Timeframe:   timeframe,
		Reason:      reason,
		Rows:        []Row{},
	}
}

// HasData reports whether the report has any candles.
func (r *Report) HasData() bool {
	return len(r.Rows) > 0
}

// AddWarning records a non-fatal problem.
func (r *Report) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// Signals returns the rows with an entry signal, oldest first.
func (r *Report) Signals() []Row {
	var out []Row

	for _, row := range r.Rows {
		if row.Entry {
			out = append(out, row)
		}
	}

	return out
}

// LastSignal returns the most recent entry, if any. The entry price is the
// close of the signal candle.
func (r *Report) LastSignal() optional.Option[LastSignal] {
	for i := len(r.Rows) - 1; i >= 0; i-- {
		row := r.Rows[i]
		if !row.Entry {
			continue
		}

		return optional.Some(LastSignal{
			Timestamp:  row.Timestamp,
			EntryPrice: row.Close,
			StopLoss:   row.StopLoss.TakeOr(0),
		})
	}

	return optional.None[LastSignal]()
}

// Message is the status line shown above the table, or "" when there are signals.
func (r *Report) Message() string {
	switch {
	case !r.HasData():
		return NoDataMessage
	case len(r.Signals()) == 0:
		return NoSignalsMessage
	default:
		return ""
	}
}

// WriteJSON encodes the report with indentation.
func (r *Report) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(r)
}
