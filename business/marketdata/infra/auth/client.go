// Package auth acquires a short-lived session token from a
// provider-specific HTTPS endpoint, using either API-key query or
// Public-key header authentication.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
	"github.com/intrinio/go-realtime-client/internal/apperror"
	"github.com/intrinio/go-realtime-client/internal/circuitbreaker"
	"github.com/intrinio/go-realtime-client/internal/httpclient"
	"github.com/intrinio/go-realtime-client/internal/logger"
	"github.com/intrinio/go-realtime-client/internal/ratelimit"
	"github.com/sony/gobreaker/v2"
)

// clientInformation identifies this SDK to the provider, sent on
// every auth request and echoed into the WebSocket handshake query.
const clientInformation = "go-realtime-client/1.0"

// Config configures the auth client.
type Config struct {
	Provider     domain.Provider
	AccessKey    string
	ManualHost   string // required when Provider == domain.ProviderManual
	IsPublicKey  bool
	AuthRPM      int // auth requests per minute the limiter passed to New was built with; not read by Client
}

// Client acquires tokens over HTTPS, gated by a circuit breaker and a
// rate limiter so a flaky or over-eager caller cannot hammer the auth
// endpoint during reconnect storms.
type Client struct {
	cfg     Config
	http    httpclient.Client
	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[string]
	log     logger.LoggerInterface
}

// New builds a Client. limiter may be shared with the replay
// downloader, since both hit intrinio.com-hosted HTTPS endpoints.
func New(cfg Config, httpClient httpclient.Client, limiter *ratelimit.Limiter, log logger.LoggerInterface) *Client {
	cbCfg := circuitbreaker.DefaultConfig("marketdata-auth")
	if log != nil {
		cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
			log.Info(context.Background(), "circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		}
	}
	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: limiter,
		cb:      circuitbreaker.New[string](cbCfg),
		log:     log,
	}
}

// authURL returns the provider-specific auth endpoint.
func authURL(cfg Config) (string, error) {
	switch cfg.Provider {
	case domain.ProviderRealtime:
		return "https://realtime-mx.intrinio.com/auth", nil
	case domain.ProviderDelayedSIP:
		return "https://realtime-delayed-sip.intrinio.com/auth", nil
	case domain.ProviderNasdaqBasic:
		return "https://realtime-nasdaq-basic.intrinio.com/auth", nil
	case domain.ProviderCBOEOne:
		return "https://realtime-cboe-one.intrinio.com/auth", nil
	case domain.ProviderManual:
		if cfg.ManualHost == "" {
			return "", apperror.New(apperror.CodeConfigurationError, apperror.WithMessage("ipAddress is required for provider=MANUAL"))
		}
		return fmt.Sprintf("http://%s/auth", cfg.ManualHost), nil
	default:
		return "", apperror.New(apperror.CodeProviderUnknown, apperror.WithContext(cfg.Provider.String()))
	}
}

// Authenticate acquires a fresh session token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	return c.cb.Execute(func() (string, error) {
		return c.authenticate(ctx)
	})
}

func (c *Client) authenticate(ctx context.Context) (string, error) {
	url, err := authURL(c.cfg)
	if err != nil {
		return "", err
	}

	req := c.http.NewRequest().
		SetHeader("Client-Information", clientInformation).
		SetHeader("UseNewEquitiesFormat", "v2")

	if c.cfg.IsPublicKey {
		req = req.SetHeader("Authorization", "Public "+c.cfg.AccessKey)
	} else {
		req = req.SetQueryParam("api_key", c.cfg.AccessKey)
	}

	resp, err := req.Get(ctx, url)
	if err != nil {
		return "", apperror.External(apperror.CodeAuthFailed, "auth request transport error", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.String(), nil
	case http.StatusUnauthorized:
		return "", apperror.New(apperror.CodeAuthUnauthorized,
			apperror.WithStatusCode(http.StatusUnauthorized))
	default:
		return "", apperror.New(apperror.CodeAuthFailed,
			apperror.WithContext(fmt.Sprintf("status=%d", resp.StatusCode)))
	}
}
