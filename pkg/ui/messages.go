// Package ui provides the Bubble Tea TUI for the real-time market-data client.
package ui

import "github.com/intrinio/go-realtime-client/business/marketdata/domain"

// Message types for TUI updates

// TradeMsg is sent for each decoded live trade; replays run without the TUI.
type TradeMsg struct {
	Trade domain.Trade
}

// QuoteMsg is sent for each decoded live quote; replays run without the TUI.
type QuoteMsg struct {
	Quote domain.Quote
}

// SessionStateMsg is sent when the live session's lifecycle state changes.
type SessionStateMsg struct {
	State string
}

// ReplayProgressMsg reports how many ticks a running replay has dispatched.
type ReplayProgressMsg struct {
	TicksDispatched uint64
	Done            bool
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// WelcomeCompleteMsg signals the welcome screen is done (timeout or keypress).
type WelcomeCompleteMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // Current step name
	Status  string // "connecting", "connected", "failed"
	Message string // Optional message
}

// StatsMsg reports the live session's cumulative frame count, polled
// periodically since session.Controller tracks it independently of the
// trade/quote decode path.
type StatsMsg struct {
	FramesReceived uint64
}
