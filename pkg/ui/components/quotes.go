// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// QuoteRow represents a symbol's latest bid/ask in the quote table.
type QuoteRow struct {
	Symbol   string
	BidPrice float64
	BidSize  uint32
	AskPrice float64
	AskSize  uint32
}

// QuotesComponent renders the latest-quote-per-symbol table.
type QuotesComponent struct {
	rows []QuoteRow
}

// NewQuotesComponent creates a new quotes component.
func NewQuotesComponent() *QuotesComponent {
	return &QuotesComponent{rows: make([]QuoteRow, 0)}
}

// Update replaces the displayed rows, one per subscribed symbol.
func (p *QuotesComponent) Update(rows []QuoteRow) {
	p.rows = rows
}

// View renders the quotes component.
func (p *QuotesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	bidStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	askStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	var result string
	result = headerStyle.Render("QUOTES")
	result += "\n\n"

	if len(p.rows) == 0 {
		return result + dimStyle.Render("  Waiting for quote data...") + "\n"
	}

	result += fmt.Sprintf("  %-8s  %12s  %8s  %12s  %8s\n",
		"Symbol", "Bid", "Bid Sz", "Ask", "Ask Sz")
	result += dimStyle.Render("  " + strings.Repeat("─", 56)) + "\n"

	for _, row := range p.rows {
		result += fmt.Sprintf("  %-8s  %s  %8d  %s  %8d\n",
			row.Symbol,
			bidStyle.Render(fmt.Sprintf("%12.4f", row.BidPrice)),
			row.BidSize,
			askStyle.Render(fmt.Sprintf("%12.4f", row.AskPrice)),
			row.AskSize,
		)
	}

	return result
}
