// Package di contains dependency injection tokens for the marketdata
// context, plus typed getters so other modules never have to repeat a
// type assertion on the container's any-typed values.
package di

import (
	"github.com/intrinio/go-realtime-client/business/marketdata/app"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/auth"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/backoff"
	"github.com/intrinio/go-realtime-client/business/marketdata/infra/replay"
	"github.com/intrinio/go-realtime-client/internal/di"
)

// DI tokens for the marketdata module.
const (
	AuthClient = "marketdata.AuthClient"
	Backoff    = "marketdata.Backoff"
	Downloader = "marketdata.Downloader" // may be absent (nil value) if replay is not configured
	Service    = "marketdata.Service"
)

// GetAuthClient looks up the registered auth.Client.
func GetAuthClient(sr di.ServiceRegistry) *auth.Client {
	return di.MustGet[*auth.Client](sr, AuthClient)
}

// GetBackoff looks up the registered backoff.Driver.
func GetBackoff(sr di.ServiceRegistry) *backoff.Driver {
	return di.MustGet[*backoff.Driver](sr, Backoff)
}

// GetDownloader looks up the registered replay.Downloader, which is
// nil if replay.base_url was not configured.
func GetDownloader(sr di.ServiceRegistry) *replay.Downloader {
	return di.MustGet[*replay.Downloader](sr, Downloader)
}

// GetService looks up the registered app.Service (public - exposed to
// other modules, e.g. a CLI or TUI entry point).
func GetService(sr di.ServiceRegistry) *app.Service {
	return di.MustGet[*app.Service](sr, Service)
}
