// Package marketdata implements the real-time equities market-data
// bounded context: session authentication, the WebSocket session
// controller, and historical tick-file replay.
package marketdata

import (
	"context"
	"fmt"

	"github.com/intrinio/go-realtime-client/business/marketdata/app"
	marketdataDI "github.com/intrinio/go-realtime-client/business/marketdata/di"
	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/auth"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/backoff"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/replay"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/session"
	"github.com/intrinio/go-realtime-client/internal/config"
	"github.com/intrinio/go-realtime-client/internal/di"
	"github.com/intrinio/go-realtime-client/internal/httpclient"
	"github.com/intrinio/go-realtime-client/internal/logger"
	"github.com/intrinio/go-realtime-client/internal/monolith"
	"github.com/intrinio/go-realtime-client/internal/ratelimit"
)

// Module implements the marketdata bounded context.
type Module struct{}

// RegisterServices registers all marketdata services with the DI
// container, in dependency order: auth client and backoff driver are
// private (session-internal), the downloader is optional, and the
// Service is public - the only token other modules (a CLI or TUI
// entry point) need.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, marketdataDI.AuthClient, func(sr di.ServiceRegistry) *auth.Client {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		provider, err := domain.ParseProvider(cfg.MarketData.Provider)
		if err != nil {
			panic("marketdata: " + err.Error())
		}

		httpClient, err := httpclient.NewInstrumentedClient()
		if err != nil {
			panic("marketdata: failed to create auth http client: " + err.Error())
		}

		rpm := cfg.MarketData.AuthRPM
		if rpm <= 0 {
			rpm = 60
		}
		limiter := ratelimit.New(rpm)

		authCfg := auth.Config{
			Provider:    provider,
			AccessKey:   cfg.MarketData.APIKey,
			ManualHost:  cfg.MarketData.WebSocketURL,
			IsPublicKey: cfg.MarketData.IsPublicKey,
			AuthRPM:     rpm,
		}
		return auth.New(authCfg, httpClient, limiter, log)
	})

	di.RegisterToken(c, marketdataDI.Backoff, func(sr di.ServiceRegistry) *backoff.Driver {
		return backoff.New()
	})

	di.RegisterToken(c, marketdataDI.Downloader, func(sr di.ServiceRegistry) *replay.Downloader {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if cfg.Replay.BaseURL == "" {
			return nil
		}

		httpClient, err := httpclient.NewInstrumentedClient()
		if err != nil {
			panic("marketdata: failed to create replay http client: " + err.Error())
		}

		rpm := cfg.Replay.DownloadRPM
		if rpm <= 0 {
			rpm = 30
		}
		limiter := ratelimit.New(rpm)

		downloaderCfg := replay.DownloaderConfig{
			BaseURL:  cfg.Replay.BaseURL,
			CacheDir: cfg.Replay.CacheDir,
			APIKey:   cfg.MarketData.APIKey,
		}
		return replay.NewDownloader(downloaderCfg, httpClient, limiter, log)
	})

	di.RegisterToken(c, marketdataDI.Service, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		provider, err := domain.ParseProvider(cfg.MarketData.Provider)
		if err != nil {
			panic("marketdata: " + err.Error())
		}

		sessionCfg := session.Config{
			Provider:        provider,
			ManualHost:      cfg.MarketData.WebSocketURL,
			IsPublicKey:     cfg.MarketData.IsPublicKey,
			TradesOnly:      false,
			HeartbeatPeriod: cfg.MarketData.HeartbeatPeriod,
			TokenMaxAge:     cfg.MarketData.TokenMaxAge,
		}

		authC := marketdataDI.GetAuthClient(sr)
		driver := marketdataDI.GetBackoff(sr)
		downloader := marketdataDI.GetDownloader(sr)
		return app.NewService(sessionCfg, authC, driver, downloader, log)
	})

	return nil
}

// Startup starts the live session and joins the channels configured
// at startup, if any. Joining blocks until Ready (or the session
// stops), so it runs in the background: a slow or unreachable
// provider must not hold up the rest of the monolith's startup.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	svc := marketdataDI.GetService(mono.Services())
	svc.Start(ctx)

	if len(cfg.MarketData.Channels) > 0 {
		go func() {
			if err := svc.Join(ctx, cfg.MarketData.Channels, false); err != nil {
				log.Warn(ctx, "initial channel join failed", "error", err)
			}
		}()
	}

	log.Info(ctx, fmt.Sprintf("marketdata module started (provider=%s)", cfg.MarketData.Provider))
	return nil
}
