package replay

import (
	"context"

	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/subscription"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/wire"
	"github.com/intrinio/go-realtime-client/internal/logger"
)

// EngineConfig configures a replay run.
type EngineConfig struct {
	AsIfLive       bool
	TradesOnly     bool
	DeleteWhenDone bool
}

// Engine replays N tick-file sources in receive-time order through a
// wire.Codec and a subscription.Registry, the same decode and filter
// types the live session uses, so replayed records have the same
// shape as live ones.
type Engine struct {
	cfg        EngineConfig
	merger     *Merger
	codec      *wire.Codec
	registry   *subscription.Registry
	downloader *Downloader
	log        logger.LoggerInterface

	filesToClean []string
}

// NewEngine builds an Engine over iters (one per subsource file,
// already opened/parsed by a TickFileReader).
func NewEngine(cfg EngineConfig, iters []TickIterator, codec *wire.Codec, registry *subscription.Registry, downloader *Downloader, filesToClean []string, log logger.LoggerInterface) *Engine {
	return &Engine{
		cfg:          cfg,
		merger:       NewMerger(iters, cfg.AsIfLive),
		codec:        codec,
		registry:     registry,
		downloader:   downloader,
		log:          log,
		filesToClean: filesToClean,
	}
}

// Run drains the merge until exhaustion or ctx cancellation, invoking
// onTrade/onQuote for each dispatched record. Quotes are dropped in
// trades-only mode; a record is dispatched only if its symbol matches
// the subscription registry ($lobby subsumes all symbols).
func (e *Engine) Run(ctx context.Context, onTrade func(domain.Trade), onQuote func(domain.Quote)) error {
	defer e.cleanup()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		tick, ok, err := e.merger.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		filterTrade := onTrade
		filterQuote := onQuote
		if e.cfg.TradesOnly {
			filterQuote = nil
		}

		gatedTrade := func(tr domain.Trade) {
			if filterTrade != nil && e.registry.Matches(tr.Symbol) {
				filterTrade(tr)
			}
		}
		gatedQuote := func(q domain.Quote) {
			if filterQuote != nil && e.registry.Matches(q.Symbol) {
				filterQuote(q)
			}
		}

		if err := e.codec.Decode(ctx, tick.Payload, gatedTrade, gatedQuote); err != nil {
			if e.log != nil {
				e.log.Warn(ctx, "replay frame decode error, skipping", "error", err)
			}
		}
	}
}

func (e *Engine) cleanup() {
	if !e.cfg.DeleteWhenDone || e.downloader == nil {
		return
	}
	for _, path := range e.filesToClean {
		if err := e.downloader.Delete(path); err != nil && e.log != nil {
			e.log.Warn(context.Background(), "failed to delete replay file", "path", path, "error", err)
		}
	}
}
