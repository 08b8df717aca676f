package app

import (
	"context"
	"fmt"
	"os"

	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/auth"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/backoff"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/replay"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/session"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/subscription"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/wire"
	"github.com/intrinio/go-realtime-client/internal/logger"
)

// liveBufferSize bounds each of Service's live dispatch channels; a
// slow consumer drops frames rather than stalling the session's
// decode path (mirroring the teacher's bounded Ethereum block
// channel in business/blockchain/infra/ethereum/subscriber.go).
const liveBufferSize = 1024

// Service is the public facade over one live session plus on-demand
// historical replay. Live and replayed data are decoded by the same
// wire.Codec logic; live records arrive on Trades()/Quotes(), replayed
// records on the callbacks passed to Replay.
type Service struct {
	controller *session.Controller
	registry   *subscription.Registry
	downloader *replay.Downloader
	log        logger.LoggerInterface

	trades chan domain.Trade
	quotes chan domain.Quote
}

// NewService wires a session.Controller (live), with its own
// subscription registry, and a Downloader for on-demand replay.
// downloader may be nil if replay was not configured. Decoded trades/quotes are
// available on the channels returned by Trades/Quotes, independent of
// when a caller gets around to reading them.
func NewService(cfg session.Config, authC *auth.Client, driver *backoff.Driver, downloader *replay.Downloader, log logger.LoggerInterface) *Service {
	s := &Service{
		registry:   subscription.New(log),
		downloader: downloader,
		log:        log,
		trades:     make(chan domain.Trade, liveBufferSize),
		quotes:     make(chan domain.Quote, liveBufferSize),
	}
	codec := wire.NewCodec(log)
	s.controller = session.New(cfg, authC, codec, s.registry, driver, log, s.dispatchTrade, s.dispatchQuote)
	return s
}

func (s *Service) dispatchTrade(tr domain.Trade) {
	select {
	case s.trades <- tr:
	default:
		if s.log != nil {
			s.log.Warn(context.Background(), "trade channel full, dropping trade", "symbol", tr.Symbol)
		}
	}
}

func (s *Service) dispatchQuote(q domain.Quote) {
	select {
	case s.quotes <- q:
	default:
		if s.log != nil {
			s.log.Warn(context.Background(), "quote channel full, dropping quote", "symbol", q.Symbol)
		}
	}
}

// Trades returns the channel of decoded trades from the live session.
func (s *Service) Trades() <-chan domain.Trade {
	return s.trades
}

// Quotes returns the channel of decoded quotes from the live session.
func (s *Service) Quotes() <-chan domain.Quote {
	return s.quotes
}

// Start launches the live session in the background; see
// session.Controller.Start.
func (s *Service) Start(ctx context.Context) {
	s.controller.Start(ctx)
}

// Join subscribes to channels on the live session, blocking until
// Ready or the session stops. See session.Controller.Join.
func (s *Service) Join(ctx context.Context, channels []string, tradesOnly bool) error {
	return s.controller.Join(ctx, channels, tradesOnly)
}

// Leave unsubscribes from channels (all channels if empty). See
// session.Controller.Leave.
func (s *Service) Leave(ctx context.Context, channels []string) error {
	return s.controller.Leave(ctx, channels)
}

// Stop ends the live session. See session.Controller.Stop.
func (s *Service) Stop(ctx context.Context) error {
	return s.controller.Stop(ctx)
}

// State returns the live session's lifecycle state.
func (s *Service) State() session.State {
	return s.controller.State()
}

// TotalMsgCount returns the number of inbound WebSocket frames
// received by the live session so far.
func (s *Service) TotalMsgCount() uint64 {
	return s.controller.TotalMsgCount()
}

// ReplayOptions configures one historical replay run.
type ReplayOptions struct {
	Subsources     []string // e.g. ["iex", "utp"]; each has its own tick file for the date
	Symbols        []string // symbols (or "$lobby") to dispatch; empty means $lobby (everything)
	TradesOnly     bool
	AsIfLive       bool // pace dispatch to the original capture's wall-clock gaps
	DeleteWhenDone bool // delete downloaded tick files once the run completes
}

// Replay downloads (or reuses cached) tick files for date, one per
// subsource, merges them in receive-time order, and dispatches
// matching records through onTrade/onQuote until exhaustion or ctx
// cancellation. It runs independently of the live session: a
// concurrent Join/Leave on the live session is unaffected.
func (s *Service) Replay(ctx context.Context, date string, opts ReplayOptions, onTrade TradeHandler, onQuote QuoteHandler) error {
	if s.downloader == nil {
		return fmt.Errorf("replay is not configured: no downloader")
	}
	if len(opts.Subsources) == 0 {
		return fmt.Errorf("replay requires at least one subsource")
	}

	registry := subscription.New(s.log)
	symbols := opts.Symbols
	if len(symbols) == 0 {
		symbols = []string{string(domain.Lobby)}
	}
	for _, sym := range symbols {
		if err := registry.Add(ctx, domain.Channel(sym), opts.TradesOnly); err != nil {
			return err
		}
	}

	var iters []replay.TickIterator
	var paths []string
	var files []*os.File
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()
	for _, sub := range opts.Subsources {
		path, err := s.downloader.Download(ctx, sub, date)
		if err != nil {
			return fmt.Errorf("download %s/%s: %w", sub, date, err)
		}
		paths = append(paths, path)

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		files = append(files, f)
		iters = append(iters, replay.NewTickFileReader(f))
	}

	engineCfg := replay.EngineConfig{
		AsIfLive:       opts.AsIfLive,
		TradesOnly:     opts.TradesOnly,
		DeleteWhenDone: opts.DeleteWhenDone,
	}
	codec := wire.NewCodec(s.log)
	engine := replay.NewEngine(engineCfg, iters, codec, registry, s.downloader, paths, s.log)
	return engine.Run(ctx, onTrade, onQuote)
}
