// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// TradeRow represents a trade in the scrolling feed.
type TradeRow struct {
	Timestamp    string
	Symbol       string
	Price        float64
	Size         uint32
	MarketCenter string
	Condition    string
}

// TradesComponent renders the recent-trades feed, newest first.
type TradesComponent struct {
	rows       []TradeRow
	maxRows    int
	offset     int // for scrolling
	visibleMax int // how many to show at once
}

// NewTradesComponent creates a new trades component.
func NewTradesComponent(maxRows int) *TradesComponent {
	return &TradesComponent{
		rows:       make([]TradeRow, 0),
		maxRows:    maxRows,
		visibleMax: 12,
	}
}

// Add adds a new trade to the feed.
func (o *TradesComponent) Add(row TradeRow) {
	o.rows = append([]TradeRow{row}, o.rows...)
	if len(o.rows) > o.maxRows {
		o.rows = o.rows[:o.maxRows]
	}
	o.offset = 0
}

// Clear clears all trades.
func (o *TradesComponent) Clear() {
	o.rows = make([]TradeRow, 0)
	o.offset = 0
}

// ScrollUp scrolls the feed up.
func (o *TradesComponent) ScrollUp() {
	if o.offset > 0 {
		o.offset--
	}
}

// ScrollDown scrolls the feed down.
func (o *TradesComponent) ScrollDown() {
	maxOffset := len(o.rows) - o.visibleMax
	if maxOffset < 0 {
		maxOffset = 0
	}
	if o.offset < maxOffset {
		o.offset++
	}
}

// Count returns the total number of trades held.
func (o *TradesComponent) Count() int {
	return len(o.rows)
}

// View renders the trades component.
func (o *TradesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	priceStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	scrollHint := lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))

	var result string
	result = headerStyle.Render("TRADES")

	if len(o.rows) > 0 {
		result += mutedStyle.Render(fmt.Sprintf(" (%d total, ↑↓ scroll)", len(o.rows)))
	}
	result += "\n\n"

	if len(o.rows) == 0 {
		result += mutedStyle.Render("  No trades yet.\n")
		result += mutedStyle.Render("  Waiting for subscribed channels...\n")
		return result
	}

	if o.offset > 0 {
		result += scrollHint.Render(fmt.Sprintf("  ▲ %d above\n", o.offset))
	}

	end := o.offset + o.visibleMax
	if end > len(o.rows) {
		end = len(o.rows)
	}

	for i := o.offset; i < end; i++ {
		row := o.rows[i]
		result += fmt.Sprintf("  [%s] %-6s %s x %-6d %s %s\n",
			row.Timestamp,
			row.Symbol,
			priceStyle.Render(fmt.Sprintf("%10.4f", row.Price)),
			row.Size,
			mutedStyle.Render(row.MarketCenter),
			mutedStyle.Render(row.Condition),
		)
	}

	if end < len(o.rows) {
		result += scrollHint.Render(fmt.Sprintf("\n  ▼ %d more below\n", len(o.rows)-end))
	}

	return result
}
