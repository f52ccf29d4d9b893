// Package marketdata resolves a (market, timeframe) selection into a canonical,
// time-ordered candle sequence.
package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/MLEngineer1/smc-cash-cow/internal/cache"
	"github.com/MLEngineer1/smc-cash-cow/internal/logger"
	"github.com/MLEngineer1/smc-cash-cow/internal/metrics"
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/errors"
	"github.com/MLEngineer1/smc-cash-cow/pkg/marketdata/provider"
)

// Pipeline routes a selection to its source adapter and normalizes the result.
type Pipeline struct {
	exchange provider.Adapter
	vendor   provider.Adapter
	cache    cache.Cache
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCache enables read-through caching of Ok results.
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// WithMetrics records resolve outcomes and fetch latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l.Named("pipeline")
	}
}

// NewPipeline creates a pipeline. exchange serves BTCUSD, vendor serves every
// other market. Either may be nil, in which case its markets resolve Empty.
func NewPipeline(exchange, vendor provider.Adapter, opts ...Option) *Pipeline {
	p := &Pipeline{
		exchange: exchange,
		vendor:   vendor,
		cache:    nil,
		metrics:  nil,
		logger:   logger.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Resolve fetches and normalizes candles for one selection. It never returns an
// error and never panics: every failure becomes an Empty result.
func (p *Pipeline) Resolve(ctx context.Context, market types.Market, timeframe types.Timeframe) (result Result) {
	log := p.logger.With(zap.String("market", string(market)), zap.String("timeframe", string(timeframe)))

	defer func() {
		if r := recover(); r != nil {
			err := errors.Newf(errors.ErrCodeMarketDataFetchFailed, "source adapter panicked: %v", r)
			log.Error("Recovered from panic while resolving candles", zap.Any("panic", r))

			result = Empty(err)
		}

		p.metrics.ObserveResolve(string(market), string(timeframe), result.OK())
	}()

	candles, err := p.resolve(ctx, market, timeframe, log)
	if err != nil {
		log.Warn("No candles for selection", zap.String("reason", Reason(err)), zap.Error(err))

		return Empty(err)
	}

	log.Debug("Resolved candles", zap.Int("count", len(candles)))

	return Ok(candles)
}

func (p *Pipeline) resolve(ctx context.Context, market types.Market, timeframe types.Timeframe, log *zap.Logger) (types.CandleSequence, error) {
	if !market.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported market %q", market)
	}

	if !timeframe.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported timeframe %q", timeframe)
	}

	key := cache.Key{Market: market, Timeframe: timeframe}

	if p.cache != nil {
		cached, hit, err := p.cache.Get(ctx, key)
		if err != nil {
			log.Warn("Cache lookup failed, fetching from source", zap.Error(err))
		}

		p.metrics.ObserveCache(hit)

		if hit && len(cached) > 0 {
			return cached, nil
		}
	}

	adapter, err := p.adapterFor(market)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	frame, err := adapter.Fetch(ctx, market, timeframe)
	p.metrics.ObserveFetch(adapter.Name(), time.Since(start))

	if err != nil {
		return nil, err
	}

	candles, err := p.normalize(market, timeframe, frame, log)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, key, candles); err != nil {
			log.Warn("Failed to store candles in cache", zap.Error(err))
		}
	}

	return candles, nil
}

// adapterFor is the closed market routing table.
func (p *Pipeline) adapterFor(market types.Market) (provider.Adapter, error) {
	var adapter provider.Adapter

	switch market {
	case types.MarketBitcoin:
		adapter = p.exchange
	case types.MarketGold, types.MarketEuro, types.MarketSPY:
		adapter = p.vendor
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported market %q", market)
	}

	if adapter == nil {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration,
			"no %s source configured for market %s", market.Source(), market)
	}

	return adapter, nil
}

// normalize projects bars onto candles, resamples to the requested timeframe
// and validates the sequence.
func (p *Pipeline) normalize(market types.Market, timeframe types.Timeframe, frame provider.Frame, log *zap.Logger) (types.CandleSequence, error) {
	candles := Project(frame.Bars)

	if frame.Interval != "" && frame.Interval != timeframe {
		if frame.Interval.Duration() > timeframe.Duration() {
			return nil, errors.Newf(errors.ErrCodeMarketDataSchema,
				"source returned %s bars for a %s request", frame.Interval, timeframe)
		}

		candles = Resample(candles, timeframe)
	}

	if len(candles) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoDataFound, "no candles for %s at %s", market, timeframe)
	}

	if !candles.IsSorted() {
		log.Warn("Source returned out-of-order candles, sorting")
		sort.SliceStable(candles, func(i, j int) bool {
			return candles[i].Timestamp.Before(candles[j].Timestamp)
		})
	}

	if violations := CountViolations(candles); violations > 0 {
		log.Warn("Candles violate OHLC bounds",
			zap.Int("violations", violations),
			zap.String("first", fmt.Sprint(firstViolation(candles).Timestamp)))
		p.metrics.AddOHLCViolations(string(market), violations)
	}

	return candles, nil
}

// Project keeps only timestamp and OHLC of each bar.
func Project(bars []types.Bar) types.CandleSequence {
	candles := make(types.CandleSequence, len(bars))
	for i, bar := range bars {
		candles[i] = bar.Candle()
	}

	return candles
}

// CountViolations returns the number of candles whose high/low do not bound
// their open and close.
func CountViolations(candles types.CandleSequence) int {
	count := 0

	for _, candle := range candles {
		if !candle.IsConsistent() {
			count++
		}
	}

	return count
}

func firstViolation(candles types.CandleSequence) types.Candle {
	for _, candle := range candles {
		if !candle.IsConsistent() {
			return candle
		}
	}

	return types.Candle{}
}
