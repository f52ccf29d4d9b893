package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/moznion/go-optional"
)

// MaxTableRows caps the signals table to the most recent entries.
const MaxTableRows = 20

const timeLayout = "2006-01-02 15:04 MST"

// Render draws the report for a terminal.
func (r *Report) Render() string {
	var s strings.Builder

	s.WriteString(Styles.Title.Render(fmt.Sprintf("%s · %s", r.DisplayName, r.Timeframe)))
	s.WriteString("\n")

	if r.RunID != "" {
		s.WriteString(Styles.Help.Render(fmt.Sprintf("run %s · generated %s", r.RunID, r.GeneratedAt.UTC().Format(timeLayout))))
		s.WriteString("\n")
	}

	s.WriteString("\n")

	for _, warning := range r.Warnings {
		s.WriteString(Styles.Warning.Render("Warning: " + warning))
		s.WriteString("\n")
	}

	if !r.HasData() {
		s.WriteString(Styles.Error.Render(NoDataMessage))
		s.WriteString("\n")

		if r.Reason != "" {
			s.WriteString(Styles.Help.Render(r.Reason))
			s.WriteString("\n")
		}

		return s.String()
	}

	s.WriteString(r.Summary())
	s.WriteString("\n\n")

	signals := r.Signals()
	if len(signals) == 0 {
		s.WriteString(NoSignalsMessage)
		s.WriteString("\n")

		return s.String()
	}

	if last := r.LastSignal(); last.IsSome() {
		s.WriteString(renderLastSignal(last.Unwrap()))
		s.WriteString("\n")
	}

	s.WriteString(renderSignalTable(signals))
	s.WriteString("\n")

	return s.String()
}

// Summary is the one-line overview of the newest candle. It assumes HasData.
func (r *Report) Summary() string {
	last := r.Rows[len(r.Rows)-1]

	previous := 0.0
	if len(r.Rows) > 1 {
		previous = r.Rows[len(r.Rows)-2].Close
	}

	return fmt.Sprintf("Candles: %d  Last close: %s  Signals: %d  RSI: %s  BB width: %s",
		len(r.Rows),
		FormatPriceMove(last.Close, previous),
		len(r.Signals()),
		FormatOptional(last.RSI, "%.2f"),
		FormatOptional(last.BBWidth, "%.2f%%"))
}

func renderLastSignal(last LastSignal) string {
	body := strings.Join([]string{
		Styles.Title.Render("Last signal"),
		fmt.Sprintf("Entry time:  %s", last.Timestamp.UTC().Format(timeLayout)),
		fmt.Sprintf("Entry price: %.4f", last.EntryPrice),
		fmt.Sprintf("Stop loss:   %.4f", last.StopLoss),
	}, "\n")

	return Styles.SignalBox.Render(body)
}

func renderSignalTable(signals []Row) string {
	if len(signals) > MaxTableRows {
		signals = signals[len(signals)-MaxTableRows:]
	}

	rows := make([][]string, 0, len(signals))
	for _, row := range signals {
		rows = append(rows, []string{
			row.Timestamp.UTC().Format(timeLayout),
			fmt.Sprintf("%.4f", row.Close),
			FormatOptional(row.StopLoss, "%.4f"),
			FormatOptional(row.RSI, "%.2f"),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(Styles.Border).
		Headers("Time", "Close", "Stop Loss", "RSI").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Styles.Header
			}

			return Styles.Cell
		})

	return t.Render()
}

// FormatOptional renders v with format, or "-" when undefined.
func FormatOptional(v optional.Option[float64], format string) string {
	if v.IsNone() {
		return "-"
	}

	return fmt.Sprintf(format, v.Unwrap())
}

// Age returns how long ago the newest candle opened, relative to now.
func (r *Report) Age(now time.Time) time.Duration {
	if !r.HasData() {
		return 0
	}

	return now.Sub(r.Rows[len(r.Rows)-1].Timestamp)
}
