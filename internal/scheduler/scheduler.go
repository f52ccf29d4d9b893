// Package scheduler reruns analyses for the configured watch list on a cron
// schedule and reports newly appeared order block signals.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/MLEngineer1/smc-cash-cow/internal/config"
	"github.com/MLEngineer1/smc-cash-cow/internal/logger"
	"github.com/MLEngineer1/smc-cash-cow/internal/report"
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
)

// Analyzer runs one fetch-and-analyze cycle.
type Analyzer interface {
	Analyze(ctx context.Context, market types.Market, timeframe types.Timeframe) *report.Report
}

// Target is one watched (market, timeframe) pair.
type Target struct {
	Market    types.Market
	Timeframe types.Timeframe
}

func (t Target) String() string {
	return fmt.Sprintf("%s/%s", t.Market, t.Timeframe)
}

// Event is emitted for every finished analysis.
type Event struct {
	Target Target
	Report *report.Report
	// NewSignal is set when the latest entry differs from the one seen on the
	// previous run of the same target.
	NewSignal bool
}

// Handler receives events. It is called from the cron goroutine.
type Handler func(ctx context.Context, event Event)

// Scheduler manages the watch job.
type Scheduler struct {
	mu sync.Mutex

	cron     *cron.Cron
	analyzer Analyzer
	targets  []Target
	handler  Handler
	logger   *logger.Logger
	timeout  time.Duration
	ctx      context.Context

	lastSignal map[Target]time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithHandler sets the event handler. Without one, events are only logged.
func WithHandler(h Handler) Option {
	return func(s *Scheduler) {
		s.handler = h
	}
}

// WithLogger sets the logger used by the scheduler and its cron runner.
func WithLogger(l *logger.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l.Named("scheduler")
	}
}

// WithTimeout bounds each target's analysis. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.timeout = d
	}
}

// NewScheduler registers one job running every target on cfg.Schedule.
func NewScheduler(ctx context.Context, analyzer Analyzer, cfg config.WatchConfig, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		mu:         sync.Mutex{},
		cron:       nil,
		analyzer:   analyzer,
		targets:    make([]Target, 0, len(cfg.Selections)),
		handler:    nil,
		logger:     logger.NewNopLogger(),
		timeout:    0,
		ctx:        ctx,
		lastSignal: make(map[Target]time.Time),
	}

	for _, opt := range opts {
		opt(s)
	}

	for _, selection := range cfg.Selections {
		market, timeframe, err := selection.Parse()
		if err != nil {
			return nil, fmt.Errorf("invalid watch selection %s/%s: %w", selection.Market, selection.Timeframe, err)
		}

		s.targets = append(s.targets, Target{Market: market, Timeframe: timeframe})
	}

	cronLogger := cronLogger{logger: s.logger.Sugar()}
	s.cron = cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))

	if _, err := s.cron.AddFunc(cfg.Schedule, func() { s.RunNow(s.ctx) }); err != nil {
		return nil, fmt.Errorf("register watch job %q: %w", cfg.Schedule, err)
	}

	return s, nil
}

// Targets returns the watched pairs in configuration order.
func (s *Scheduler) Targets() []Target {
	out := make([]Target, len(s.targets))
	copy(out, s.targets)

	return out
}

// Start starts the cron runner.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("targets", len(s.targets)))
}

// Stop stops the cron runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunNow analyzes every target once, in order, and returns the events.
func (s *Scheduler) RunNow(ctx context.Context) []Event {
	events := make([]Event, 0, len(s.targets))

	for _, target := range s.targets {
		if ctx.Err() != nil {
			s.logger.Warn("Watch run cancelled", zap.Error(ctx.Err()))
			break
		}

		event := s.run(ctx, target)
		events = append(events, event)

		if s.handler != nil {
			s.handler(ctx, event)
		}
	}

	return events
}

func (s *Scheduler) run(ctx context.Context, target Target) Event {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out := s.analyzer.Analyze(ctx, target.Market, target.Timeframe)
	event := Event{Target: target, Report: out, NewSignal: false}

	log := s.logger.With(zap.String("target", target.String()), zap.String("run_id", out.RunID))

	if !out.HasData() {
		log.Warn("Watch target has no data", zap.String("reason", out.Reason))
		return event
	}

	last, err := out.LastSignal().Take()
	if err != nil {
		return event
	}

	s.mu.Lock()
	previous, seen := s.lastSignal[target]
	s.lastSignal[target] = last.Timestamp
	s.mu.Unlock()

	if !seen || last.Timestamp.After(previous) {
		event.NewSignal = true
		log.Info("New order block signal",
			zap.Time("timestamp", last.Timestamp),
			zap.Float64("entry_price", last.EntryPrice),
			zap.Float64("stop_loss", last.StopLoss))
	}

	return event
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
