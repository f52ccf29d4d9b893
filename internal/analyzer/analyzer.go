// Package analyzer runs one scan: resolve candles, detect order blocks,
// compute indicators and assemble the report.
package analyzer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/MLEngineer1/smc-cash-cow/internal/detector"
	"github.com/MLEngineer1/smc-cash-cow/internal/indicator"
	"github.com/MLEngineer1/smc-cash-cow/internal/logger"
	"github.com/MLEngineer1/smc-cash-cow/internal/metrics"
	"github.com/MLEngineer1/smc-cash-cow/internal/report"
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/marketdata"
)

// Resolver turns a selection into candles. *marketdata.Pipeline implements it.
type Resolver interface {
	Resolve(ctx context.Context, market types.Market, timeframe types.Timeframe) marketdata.Result
}

// Analyzer is safe for concurrent use when its resolver is.
type Analyzer struct {
	resolver   Resolver
	detector   *detector.OrderBlockDetector
	indicators *indicator.Adapter
	metrics    *metrics.Metrics
	logger     *logger.Logger
	now        func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithMetrics records analysis outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Analyzer) {
		a.metrics = m
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l.Named("analyzer")
	}
}

// NewAnalyzer creates an analyzer. indicators may be nil to skip indicator output.
func NewAnalyzer(resolver Resolver, detector *detector.OrderBlockDetector, indicators *indicator.Adapter, opts ...Option) *Analyzer {
	a := &Analyzer{
		resolver:   resolver,
		detector:   detector,
		indicators: indicators,
		metrics:    nil,
		logger:     logger.NewNopLogger(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Analyze never fails. Missing data yields a report without rows and with a
// reason; indicator failure yields a warning next to the price and signal rows.
func (a *Analyzer) Analyze(ctx context.Context, market types.Market, timeframe types.Timeframe) *report.Report {
	started := a.now()
	runID := uuid.NewString()
	log := a.logger.With(
		zap.String("run_id", runID),
		zap.String("market", string(market)),
		zap.String("timeframe", string(timeframe)))

	out, indicatorFailed := a.analyze(ctx, market, timeframe, log)
	out.RunID = runID
	out.GeneratedAt = started.UTC()

	signals := len(out.Signals())
	a.metrics.ObserveAnalysis(string(market), string(timeframe), signals, indicatorFailed, a.now().Sub(started))

	log.Info("Analysis finished",
		zap.Int("candles", len(out.Rows)),
		zap.Int("signals", signals),
		zap.Int("warnings", len(out.Warnings)))

	return out
}

func (a *Analyzer) analyze(ctx context.Context, market types.Market, timeframe types.Timeframe, log *zap.Logger) (*report.Report, bool) {
	result := a.resolver.Resolve(ctx, market, timeframe)
	if !result.OK() {
		log.Warn("No data for analysis", zap.String("reason", result.Reason()))

		return report.Empty(market, timeframe, result.Reason()), false
	}

	candles := result.Candles()
	scan := a.detector.Scan(candles)

	indicators, warning := a.computeIndicators(candles)
	if warning != "" {
		log.Warn("Indicators unavailable", zap.String("warning", warning))
	}

	out, err := report.New(market, timeframe, candles, scan, indicators)
	if err != nil {
		log.Error("Failed to assemble report, dropping indicators", zap.Error(err))
		warning = "indicators unavailable: " + err.Error()

		out, err = report.New(market, timeframe, candles, scan, optional.None[types.IndicatorSet]())
		if err != nil {
			return report.Empty(market, timeframe, err.Error()), false
		}
	}

	if scan.Status == detector.StatusMalformed {
		out.AddWarning("candles are malformed, order block detection skipped")
	}

	if warning != "" {
		out.AddWarning(warning)
	}

	return out, warning != ""
}

func (a *Analyzer) computeIndicators(candles types.CandleSequence) (optional.Option[types.IndicatorSet], string) {
	if a.indicators == nil {
		return optional.None[types.IndicatorSet](), ""
	}

	set, err := a.indicators.Compute(candles.Closes())
	if err != nil {
		return optional.None[types.IndicatorSet](), "indicators unavailable: " + err.Error()
	}

	return optional.Some(set), ""
}
