// Package main is the entry point for the Intrinio real-time market-data client.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/intrinio/go-realtime-client/business/marketdata"
	marketdataApp "github.com/intrinio/go-realtime-client/business/marketdata/app"
	marketdataDI "github.com/intrinio/go-realtime-client/business/marketdata/di"
	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
	"github.com/intrinio/go-realtime-client/internal/apm"
	"github.com/intrinio/go-realtime-client/internal/config"
	"github.com/intrinio/go-realtime-client/internal/health"
	"github.com/intrinio/go-realtime-client/internal/logger"
	"github.com/intrinio/go-realtime-client/internal/metrics"
	"github.com/intrinio/go-realtime-client/internal/monolith"
	"github.com/intrinio/go-realtime-client/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	replayDate := flag.String("replay", "", "Replay a historical date (YYYY-MM-DD) instead of streaming live")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("go-realtime-client %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging; replay always runs headless.
	tuiMode := !*cliMode && *replayDate == ""

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// A public/browser key never owns the terminal's signal disposition -
	// the embedding process handles shutdown instead.
	if !cfg.MarketData.IsPublicKey {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			if !tuiMode {
				fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
			}
			cancel()
		}()
	}

	if err := run(ctx, cfg, tuiMode, *replayDate); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, tuiMode bool, replayDate string) error {
	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if tuiMode {
		// In TUI mode, suppress logs so they don't tear up the dashboard.
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting go-realtime-client",
			"version", version,
			"environment", cfg.App.Environment,
			"provider", cfg.MarketData.Provider,
		)
	}

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	modules := []monolith.Module{
		&marketdata.Module{},
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	if replayDate != "" {
		return runReplay(ctx, mono, modules, replayDate, log)
	}

	if tuiMode {
		startFunc := func() error {
			return mono.StartModules(ctx, modules...)
		}
		return runTUI(ctx, mono, startFunc)
	}

	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}
	return runCLI(ctx, mono, log)
}

// runCLI streams the live session to stderr via the logger until ctx is cancelled.
// The marketdata module's own Startup already joins any channels configured
// in MarketData.Channels; this only joins $lobby as a fallback when none were.
func runCLI(ctx context.Context, mono monolith.Monolith, log *logger.Logger) error {
	svc := marketdataDI.GetService(mono.Services())
	cfg := mono.Config()
	log.Info(ctx, "all modules started")

	if len(cfg.MarketData.Channels) == 0 {
		if err := svc.Join(ctx, []string{"$lobby"}, false); err != nil {
			return fmt.Errorf("failed to join lobby: %w", err)
		}
	}

	go func() {
		for tr := range svc.Trades() {
			log.Info(ctx, "trade", "symbol", tr.Symbol, "price", tr.Price, "size", tr.Size)
		}
	}()
	go func() {
		for q := range svc.Quotes() {
			log.Debug(ctx, "quote", "symbol", q.Symbol, "type", q.Type.String(), "price", q.Price, "size", q.Size)
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down")
	return svc.Stop(context.Background())
}

// runReplay runs one headless historical replay and exits; no TUI. StartModules
// also starts the live session, which runs alongside the replay until exit.
func runReplay(ctx context.Context, mono monolith.Monolith, modules []monolith.Module, date string, log *logger.Logger) error {
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	svc := marketdataDI.GetService(mono.Services())

	opts := marketdataApp.ReplayOptions{
		Subsources: []string{"iex", "utp"},
		AsIfLive:   false,
	}
	log.Info(ctx, "starting replay", "date", date, "subsources", opts.Subsources)

	var trades, quotes uint64
	onTrade := func(tr domain.Trade) {
		trades++
	}
	onQuote := func(q domain.Quote) {
		quotes++
	}

	err := svc.Replay(ctx, date, opts, onTrade, onQuote)
	log.Info(ctx, "replay finished", "trades", trades, "quotes", quotes)
	return err
}

func runTUI(ctx context.Context, mono monolith.Monolith, startFunc func() error) error {
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	errCh := make(chan error, 1)
	go func() {
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		if err := startFunc(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		svc := marketdataDI.GetService(mono.Services())
		cfg := mono.Config()
		// The module's own Startup already joined cfg.MarketData.Channels;
		// only join $lobby here as a fallback when none were configured.
		if len(cfg.MarketData.Channels) == 0 {
			if err := svc.Join(ctx, []string{"$lobby"}, false); err != nil {
				ui.Send(ui.ErrorMsg{Error: err})
			}
		}

		go func() {
			for tr := range svc.Trades() {
				ui.Send(ui.TradeMsg{Trade: tr})
			}
		}()
		go func() {
			for q := range svc.Quotes() {
				ui.Send(ui.QuoteMsg{Quote: q})
			}
		}()
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			lastState := ""
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					ui.Send(ui.StatsMsg{FramesReceived: svc.TotalMsgCount()})
					state := svc.State().String()
					if state != lastState {
						ui.Send(ui.SessionStateMsg{State: state})
						lastState = state
					}
				}
			}
		}()

		<-ctx.Done()

		if err := svc.Stop(context.Background()); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
		}
		errCh <- nil
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
