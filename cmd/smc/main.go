package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/MLEngineer1/smc-cash-cow/internal/config"
	"github.com/MLEngineer1/smc-cash-cow/internal/dashboard"
	"github.com/MLEngineer1/smc-cash-cow/internal/logger"
	"github.com/MLEngineer1/smc-cash-cow/internal/report"
	"github.com/MLEngineer1/smc-cash-cow/internal/scheduler"
	"github.com/MLEngineer1/smc-cash-cow/internal/server"
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/internal/version"
	"github.com/MLEngineer1/smc-cash-cow/pkg/marketdata"
)

// loadConfig reads --config and applies the --log-level override.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if level := cmd.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	return cfg, nil
}

// setup loads configuration and wires the application. quiet discards logs,
// for commands that own the terminal.
func setup(ctx context.Context, cmd *cli.Command, quiet bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log := logger.NewNopLogger()
	if !quiet {
		log, err = logger.NewLoggerWithLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
	}

	return newApp(ctx, cfg, log)
}

func parseSelection(cmd *cli.Command) (types.Market, types.Timeframe, error) {
	return config.Selection{Market: cmd.String("market"), Timeframe: cmd.String("timeframe")}.Parse()
}

func scanAction(ctx context.Context, cmd *cli.Command) error {
	market, timeframe, err := parseSelection(cmd)
	if err != nil {
		return err
	}

	a, err := setup(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	out := a.analyzer.Analyze(ctx, market, timeframe)

	return writeReport(cmd.Root().Writer, out, cmd.Bool("json"))
}

func writeReport(w io.Writer, out *report.Report, asJSON bool) error {
	if asJSON {
		return out.WriteJSON(w)
	}

	_, err := fmt.Fprint(w, out.Render())

	return err
}

func marketsAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	markets := marketdata.GetSupportedMarkets(string(cfg.Vendor))
	w := cmd.Root().Writer

	if cmd.Bool("json") {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(markets)
	}

	rows := make([][]string, 0, len(markets))
	for _, info := range markets {
		timeframes := ""
		for i, tf := range info.Timeframes {
			if i > 0 {
				timeframes += ", "
			}

			timeframes += string(tf)
		}

		rows = append(rows, []string{string(info.Market), info.DisplayName, info.Adapter, timeframes})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Market", "Name", "Adapter", "Timeframes").
		Rows(rows...)

	_, err = fmt.Fprintln(w, t.Render())

	return err
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.NewServer(a.config.Server, a.analyzer, string(a.config.Vendor),
		server.WithMetrics(a.metrics),
		server.WithLogger(a.logger))

	if err := srv.Start(cmd.String("addr")); err != nil {
		return err
	}

	if cmd.Bool("watch") {
		watcher, err := newWatcher(ctx, a, cmd.Root().Writer, false)
		if err != nil {
			return err
		}

		watcher.Start()
		defer watcher.Stop()
	}

	<-ctx.Done()
	a.logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.WriteTimeout)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

func watchAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	watcher, err := newWatcher(ctx, a, cmd.Root().Writer, cmd.Bool("once"))
	if err != nil {
		return err
	}

	if cmd.Bool("once") {
		watcher.RunNow(ctx)
		return nil
	}

	watcher.Start()
	defer watcher.Stop()

	watcher.RunNow(ctx)
	<-ctx.Done()

	return nil
}

// newWatcher prints the report of every target whose latest signal is new, or
// of every target when printAll is set.
func newWatcher(ctx context.Context, a *app, w io.Writer, printAll bool) (*scheduler.Scheduler, error) {
	return scheduler.NewScheduler(ctx, a.analyzer, a.config.Watch,
		scheduler.WithLogger(a.logger),
		scheduler.WithTimeout(a.config.Server.WriteTimeout),
		scheduler.WithHandler(func(_ context.Context, event scheduler.Event) {
			if !event.NewSignal && !printAll {
				return
			}

			if err := writeReport(w, event.Report, false); err != nil {
				a.logger.Error("Failed to print report", zap.Error(err))
			}
		}))
}

func dashboardAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	program := tea.NewProgram(dashboard.NewModel(ctx, a.analyzer, string(a.config.Vendor)),
		tea.WithAltScreen(),
		tea.WithContext(ctx))

	_, err = program.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}

	return err
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	cfg := config.Default()

	schema, err := cfg.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, schema)

	return err
}

func checkAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.Root().Writer, "config ok: vendor=%s cache=%s watch=%d selections\n",
		cfg.Vendor, cfg.Cache.Backend, len(cfg.Watch.Selections))

	return err
}

func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "market",
			Aliases:  []string{"m"},
			Usage:    "Market identifier or display name (XAUUSD, BTCUSD, EURUSD, SPY)",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "timeframe",
			Aliases: []string{"t"},
			Usage:   "Candle timeframe (15m, 30m, 1h, 4h, 1d, 1w)",
			Value:   string(types.TimeframeOneHour),
		},
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "smc",
		Usage:   "Detect order block entries on normalized market candles",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Sources: cli.EnvVars("SMC_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "scan",
				Usage:  "Analyze one market and print the report",
				Flags:  append(selectionFlags(), &cli.BoolFlag{Name: "json", Usage: "Print the report as JSON"}),
				Action: scanAction,
			},
			{
				Name:   "markets",
				Usage:  "List supported markets and timeframes",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Print as JSON"}},
				Action: marketsAction,
			},
			{
				Name:  "serve",
				Usage: "Serve the JSON API and metrics",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "Listen address, overrides server.addr"},
					&cli.BoolFlag{Name: "watch", Usage: "Also run the watch schedule"},
				},
				Action: serveAction,
			},
			{
				Name:   "watch",
				Usage:  "Rescan the watch list on its cron schedule",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "once", Usage: "Run every target once and exit"}},
				Action: watchAction,
			},
			{
				Name:   "dashboard",
				Usage:  "Open the interactive terminal dashboard",
				Action: dashboardAction,
			},
			{
				Name:  "config",
				Usage: "Inspect configuration",
				Commands: []*cli.Command{
					{
						Name:   "schema",
						Usage:  "Print the JSON schema of the config file",
						Action: schemaAction,
					},
					{
						Name:   "check",
						Usage:  "Load and validate the config file",
						Action: checkAction,
					},
				},
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
