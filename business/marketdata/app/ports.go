// Package app exposes the market-data session as a single facade:
// join/leave live channels, or replay a historical day, through one
// decode/filter path.
package app

import "github.com/intrinio/go-realtime-client/business/marketdata/domain"

// TradeHandler receives each decoded trade of a replay run. Live
// trades are delivered on Service.Trades instead.
type TradeHandler func(domain.Trade)

// QuoteHandler receives each decoded quote of a replay run. Never
// invoked when the replay run is trades-only. Live quotes are
// delivered on Service.Quotes instead.
type QuoteHandler func(domain.Quote)
