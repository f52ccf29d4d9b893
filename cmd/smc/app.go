package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/MLEngineer1/smc-cash-cow/internal/analyzer"
	"github.com/MLEngineer1/smc-cash-cow/internal/cache"
	"github.com/MLEngineer1/smc-cash-cow/internal/config"
	"github.com/MLEngineer1/smc-cash-cow/internal/detector"
	"github.com/MLEngineer1/smc-cash-cow/internal/indicator"
	"github.com/MLEngineer1/smc-cash-cow/internal/logger"
	"github.com/MLEngineer1/smc-cash-cow/internal/metrics"
	"github.com/MLEngineer1/smc-cash-cow/pkg/marketdata"
	"github.com/MLEngineer1/smc-cash-cow/pkg/marketdata/provider"
)

// app holds the wired components shared by every command.
type app struct {
	config   config.Config
	logger   *logger.Logger
	metrics  *metrics.Metrics
	analyzer *analyzer.Analyzer
	closers  []func() error
}

func newApp(ctx context.Context, cfg config.Config, log *logger.Logger) (*app, error) {
	a := &app{
		config:   cfg,
		logger:   log,
		metrics:  metrics.NewMetrics(),
		analyzer: nil,
		closers:  nil,
	}

	exchange := provider.NewBinanceAdapter(cfg.BinanceAdapterConfig())

	vendor, err := provider.NewVendorAdapter(cfg.Vendor, cfg.YahooAdapterConfig(), cfg.PolygonAdapterConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create vendor adapter: %w", err)
	}

	options := []marketdata.Option{
		marketdata.WithMetrics(a.metrics),
		marketdata.WithLogger(log),
	}

	candleCache, err := a.newCache(ctx)
	if err != nil {
		return nil, err
	}

	if candleCache != nil {
		options = append(options, marketdata.WithCache(candleCache))
	}

	pipeline := marketdata.NewPipeline(exchange, vendor, options...)

	indicators, err := indicator.NewDefaultAdapter(cfg.Analysis.RSIPeriod, cfg.Analysis.BBPeriod, cfg.Analysis.BBStdDev)
	if err != nil {
		return nil, fmt.Errorf("failed to configure indicators: %w", err)
	}

	a.analyzer = analyzer.NewAnalyzer(pipeline, detector.NewOrderBlockDetector(log), indicators,
		analyzer.WithMetrics(a.metrics),
		analyzer.WithLogger(log))

	log.Debug("Application wired",
		zap.String("vendor", string(cfg.Vendor)),
		zap.String("cache", string(cfg.Cache.Backend)))

	return a, nil
}

func (a *app) newCache(ctx context.Context) (cache.Cache, error) {
	switch a.config.Cache.Backend {
	case cache.BackendMemory:
		return cache.NewMemoryCache(a.config.Cache.TTL), nil
	case cache.BackendRedis:
		redisCache, err := cache.DialRedis(ctx, a.config.Cache.RedisAddr, a.config.Cache.RedisPassword, a.config.Cache.RedisDB, a.config.Cache.TTL)
		if err != nil {
			return nil, err
		}

		a.closers = append(a.closers, redisCache.Close)

		return redisCache, nil
	default:
		return nil, nil
	}
}

// Close releases connections opened by newApp.
func (a *app) Close() error {
	var first error

	for _, closer := range a.closers {
		if err := closer(); err != nil && first == nil {
			first = err
		}
	}

	_ = a.logger.Sync()

	return first
}
