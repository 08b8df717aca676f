// Package session drives one real-time market-data session end to
// end: authenticate, open the WebSocket, replay the subscription
// registry, dispatch decoded frames, and self-heal on disconnect
// through a fixed reconnect schedule.
package session

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/auth"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/backoff"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/subscription"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/wire"
	"github.com/intrinio/go-realtime-client/internal/apperror"
	"github.com/intrinio/go-realtime-client/internal/logger"
	"github.com/intrinio/go-realtime-client/internal/wsconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const clientInformation = "go-realtime-client/1.0"

const (
	meterName = "github.com/intrinio/go-realtime-client/business/marketdata/infra/session"
)

// State is the session's lifecycle state, per the Init -> Authenticating
// -> Connecting -> Ready <-> Backoff -> Stopped diagram.
type State int

const (
	StateInit State = iota
	StateAuthenticating
	StateConnecting
	StateReady
	StateBackoff
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateBackoff:
		return "backoff"
	case StateStopped:
		return "stopped"
	default:
		return "init"
	}
}

// Config configures a Controller.
type Config struct {
	Provider        domain.Provider
	ManualHost      string // required when Provider == domain.ProviderManual
	IsPublicKey     bool
	TradesOnly      bool // client-wide default, OR'd with each join's per-channel flag
	HeartbeatPeriod time.Duration
	TokenMaxAge     time.Duration
}

// Controller owns one session's lifecycle. It is constructed once per
// logical session; Start launches the authenticate/connect/serve/
// backoff loop in the background and returns immediately.
type Controller struct {
	cfg      Config
	authC    *auth.Client
	codec    *wire.Codec
	registry *subscription.Registry
	driver   *backoff.Driver
	log      logger.LoggerInterface

	onTrade func(domain.Trade)
	onQuote func(domain.Quote)

	mu          sync.Mutex
	state       State
	token       string
	lastReadyAt time.Time
	ws          *wsconn.Client
	readyCh     chan struct{}
	stopped     bool
	cancel      context.CancelFunc

	writeMu sync.Mutex

	stopOnce sync.Once
	stopCh   chan struct{}

	msgCount              atomic.Uint64
	framesReceivedCounter metric.Int64Counter
}

// New builds a Controller. onTrade is required by convention of the
// public API; onQuote may be nil, in which case callers are expected
// to have joined with tradesOnly=true.
func New(cfg Config, authC *auth.Client, codec *wire.Codec, registry *subscription.Registry, driver *backoff.Driver, log logger.LoggerInterface, onTrade func(domain.Trade), onQuote func(domain.Quote)) *Controller {
	c := &Controller{
		cfg:      cfg,
		authC:    authC,
		codec:    codec,
		registry: registry,
		driver:   driver,
		log:      log,
		onTrade:  onTrade,
		onQuote:  onQuote,
		stopCh:   make(chan struct{}),
		readyCh:  make(chan struct{}),
	}
	meter := otel.Meter(meterName)
	counter, err := meter.Int64Counter(
		"marketdata_frames_received_total",
		metric.WithDescription("Total number of inbound WebSocket frames received (not sub-messages)"),
		metric.WithUnit("{frame}"),
	)
	if err == nil {
		c.framesReceivedCounter = counter
	}
	return c
}

// Start launches the session loop in the background and returns
// immediately; callers observe readiness via Join, which blocks until
// Ready (or the session stops). Stop cancels the derived context used
// here, so an in-flight backoff sleep aborts immediately rather than
// waiting out the current schedule tick.
func (c *Controller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	go func() {
		err := c.driver.Run(ctx, c.connectAndServe)
		c.setState(StateStopped)
		if err != nil && err != context.Canceled && c.log != nil {
			c.log.Error(ctx, "session loop exited", "error", err)
		}
	}()
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// TotalMsgCount returns the number of inbound WebSocket frames
// received so far (not the number of sub-messages within them).
func (c *Controller) TotalMsgCount() uint64 {
	return c.msgCount.Load()
}

// Join registers channels (OR'ing tradesOnly with the client-wide
// default) and waits for Ready before sending join frames. Already-
// registered channels are replayed on every future reconnect by the
// subscription registry regardless of the current state.
func (c *Controller) Join(ctx context.Context, channels []string, tradesOnly bool) error {
	flag := tradesOnly || c.cfg.TradesOnly
	for _, ch := range channels {
		dch := domain.Channel(ch)
		if err := c.registry.Add(ctx, dch, flag); err != nil {
			return err
		}
	}
	if err := c.waitReady(ctx); err != nil {
		return err
	}
	for _, ch := range channels {
		dch := domain.Channel(ch)
		if err := c.sendFrame(ctx, wire.BuildJoin(dch, flag)); err != nil {
			return err
		}
	}
	return nil
}

// Leave deregisters channels and, if currently Ready, sends a leave
// frame per channel. An empty channels slice leaves every registered
// channel.
func (c *Controller) Leave(ctx context.Context, channels []string) error {
	if len(channels) == 0 {
		for _, e := range c.registry.Snapshot() {
			channels = append(channels, string(e.Channel))
		}
	}
	for _, ch := range channels {
		dch := domain.Channel(ch)
		c.registry.Remove(dch)
		if c.State() == StateReady {
			if err := c.sendFrame(ctx, wire.BuildLeave(dch)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Stop sends a leave frame per registered channel, closes the socket
// with code 1000, and transitions to Stopped. Safe to call more than
// once; only the first call has effect. The underlying transport
// writes synchronously, so by the time the leave frames below return
// they have already been handed to the kernel socket buffer: there is
// no separate async outbound queue to drain.
func (c *Controller) Stop(ctx context.Context) error {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.stopped = true
		entries := c.registry.Snapshot()
		ws := c.ws
		cancel := c.cancel
		c.mu.Unlock()

		for _, e := range entries {
			_ = c.sendFrame(ctx, wire.BuildLeave(e.Channel))
		}
		c.registry.RemoveAll()

		if ws != nil {
			_ = ws.Close()
		}
		close(c.stopCh)

		// Unblocks a backoff sleep in progress; Run observes ctx.Done()
		// between ticks and returns without a further retry.
		if cancel != nil {
			cancel()
		}
	})
	return nil
}

// connectAndServe runs one full authenticate/connect/replay/dispatch
// cycle. It returns nil only when the session was stopped by the user
// or ctx was cancelled (driver treats nil as terminal success); any
// other return is a transient failure that the backoff driver retries.
func (c *Controller) connectAndServe(ctx context.Context) error {
	if c.isStopped() {
		return nil
	}

	c.mu.Lock()
	c.readyCh = make(chan struct{})
	needsAuth := c.token == "" || (!c.lastReadyAt.IsZero() && time.Since(c.lastReadyAt) > c.cfg.TokenMaxAge)
	c.mu.Unlock()
	c.setState(StateAuthenticating)

	if needsAuth {
		token, err := c.authC.Authenticate(ctx)
		if err != nil {
			return apperror.New(apperror.CodeAuthFailed, apperror.WithCause(err))
		}
		c.mu.Lock()
		c.token = token
		c.mu.Unlock()
	}

	c.setState(StateConnecting)
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	wsURL, err := buildWebSocketURL(c.cfg, token)
	if err != nil {
		return err
	}

	wsCfg := wsconn.DefaultConfig(wsURL, "marketdata")
	wsCfg.MaxReconnects = 1
	ws, err := wsconn.New(wsCfg)
	if err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError, apperror.WithCause(err))
	}

	disconnected := make(chan error, 1)
	ws.OnStateChange(func(state wsconn.State, stateErr error) {
		switch state {
		case wsconn.StateReconnecting, wsconn.StateDisconnected, wsconn.StateClosed:
			select {
			case disconnected <- stateErr:
			default:
			}
		}
	})
	ws.OnMessage(func(msgCtx context.Context, msg []byte) {
		c.msgCount.Add(1)
		if c.framesReceivedCounter != nil {
			c.framesReceivedCounter.Add(msgCtx, 1)
		}
		if derr := c.codec.Decode(msgCtx, msg, c.onTrade, c.onQuote); derr != nil && c.log != nil {
			c.log.Warn(msgCtx, "frame decode error, skipping frame", "error", derr)
		}
	})

	if err := ws.Connect(ctx); err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError, apperror.WithCause(err))
	}

	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()

	for _, e := range c.registry.Snapshot() {
		if err := c.sendFrame(ctx, wire.BuildJoin(e.Channel, e.TradesOnly)); err != nil && c.log != nil {
			c.log.Warn(ctx, "failed to replay subscription on reconnect", "channel", string(e.Channel), "error", err)
		}
	}

	c.mu.Lock()
	c.lastReadyAt = time.Now()
	c.mu.Unlock()
	c.setState(StateReady)

	heartbeatDone := make(chan struct{})
	go c.runHeartbeat(ctx, heartbeatDone)

	var result error
	select {
	case <-ctx.Done():
		result = nil
	case <-c.stopCh:
		result = nil
	case stateErr := <-disconnected:
		if stateErr != nil {
			result = apperror.New(apperror.CodeWebSocketConnectionError, apperror.WithCause(stateErr))
		} else {
			result = apperror.New(apperror.CodeWebSocketConnectionError, apperror.WithMessage("connection lost"))
		}
	}

	close(heartbeatDone)
	_ = ws.Close()

	c.mu.Lock()
	c.ws = nil
	c.mu.Unlock()

	if c.isStopped() {
		return nil
	}
	c.setState(StateBackoff)
	return result
}

func (c *Controller) runHeartbeat(ctx context.Context, done <-chan struct{}) {
	if c.cfg.HeartbeatPeriod <= 0 {
		return
	}
	ticker := time.NewTicker(c.cfg.HeartbeatPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.sendFrame(ctx, []byte{}); err != nil && c.log != nil {
				c.log.Warn(ctx, "heartbeat send failed", "error", err)
			}
		}
	}
}

// sendFrame serializes all writers (join/leave/heartbeat) through a
// single mutex, matching the one-writer contract of the underlying
// WebSocket.
func (c *Controller) sendFrame(ctx context.Context, frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()

	if ws == nil {
		return apperror.New(apperror.CodeWebSocketSendError, apperror.WithMessage("not connected"))
	}
	if err := ws.SendBinary(ctx, frame); err != nil {
		return apperror.New(apperror.CodeWebSocketSendError, apperror.WithCause(err))
	}
	return nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	if s == StateReady {
		close(c.readyCh)
	}
	c.mu.Unlock()
}

func (c *Controller) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// waitReady blocks until the session reaches Ready, the session is
// stopped, or ctx is cancelled.
func (c *Controller) waitReady(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.stopped {
			c.mu.Unlock()
			return apperror.New(apperror.CodeSessionStopped, apperror.WithMessage("session is stopped"))
		}
		if c.state == StateReady {
			c.mu.Unlock()
			return nil
		}
		ch := c.readyCh
		c.mu.Unlock()

		select {
		case <-ch:
			// loop: re-check state, since readiness can flip again quickly
		case <-c.stopCh:
			return apperror.New(apperror.CodeSessionStopped, apperror.WithMessage("session is stopped"))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// buildWebSocketURL constructs the provider-specific WebSocket
// handshake URL, including the freshly acquired token.
func buildWebSocketURL(cfg Config, token string) (string, error) {
	scheme := "wss"
	var host string
	switch cfg.Provider {
	case domain.ProviderRealtime:
		host = "realtime-mx.intrinio.com"
	case domain.ProviderDelayedSIP:
		host = "realtime-delayed-sip.intrinio.com"
	case domain.ProviderNasdaqBasic:
		host = "realtime-nasdaq-basic.intrinio.com"
	case domain.ProviderCBOEOne:
		host = "realtime-cboe-one.intrinio.com"
	case domain.ProviderManual:
		if cfg.ManualHost == "" {
			return "", apperror.New(apperror.CodeConfigurationError, apperror.WithMessage("ipAddress is required for provider=MANUAL"))
		}
		scheme = "ws"
		host = cfg.ManualHost
	default:
		return "", apperror.New(apperror.CodeProviderUnknown, apperror.WithContext(cfg.Provider.String()))
	}

	q := url.Values{}
	q.Set("vsn", "1.0.0")
	q.Set("token", token)
	q.Set("Client-Information", clientInformation)
	q.Set("UseNewEquitiesFormat", "v2")

	u := url.URL{Scheme: scheme, Host: host, Path: "/socket/websocket", RawQuery: q.Encode()}
	return u.String(), nil
}
