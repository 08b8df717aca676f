// Package ui provides the Bubble Tea TUI for the real-time market-data client.
package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/intrinio/go-realtime-client/business/marketdata/domain"
	"github.com/intrinio/go-realtime-client/pkg/ui/components"
)

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string // "pending", "connecting", "connected", "failed"
}

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"   // Initial welcome screen
	PhaseStartup   Phase = "startup"   // Authenticating/connecting
	PhaseDashboard Phase = "dashboard" // Main dashboard
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Components
	trades *components.TradesComponent
	quotes *components.QuotesComponent
	status *components.StatusComponent
	stats  *components.StatsComponent

	keys KeyMap
	help help.Model

	// Phase state
	phase        Phase
	welcomeStart time.Time

	// State
	ready        bool
	quitting     bool
	paused       bool
	width        int
	height       int
	sessionState string
	showQuotes   bool
	lastUpdate   time.Time
	errorMsg     string
	errors       []ErrorEntry // Persistent error panel (last 3)
	logs         []string     // Recent log messages

	// Startup state
	startupComplete bool
	startupSteps    map[string]*StartupStep
	startupTime     time.Time

	// Activity tracking
	framesReceived uint64
	tradesReceived uint64
	quotesReceived uint64
	reconnects     int64
	errorCount     int64
	quoteOrder     []string
	quotesBySymbol map[string]components.QuoteRow
}

// New creates a new TUI model.
func New() Model {
	now := time.Now()
	h := help.New()
	return Model{
		trades:         components.NewTradesComponent(200),
		quotes:         components.NewQuotesComponent(),
		status:         components.NewStatusComponent(),
		stats:          components.NewStatsComponent(),
		keys:           DefaultKeyMap(),
		help:           h,
		phase:          PhaseWelcome,
		welcomeStart:   now,
		showQuotes:     true,
		logs:           make([]string, 0, 10),
		errors:         make([]ErrorEntry, 0, 3),
		quotesBySymbol: make(map[string]components.QuoteRow),
		startupSteps: map[string]*StartupStep{
			"auth":    {Name: "Authenticating", Status: "pending"},
			"connect": {Name: "Connecting to session", Status: "pending"},
		},
		startupTime: now,
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.phase == PhaseWelcome {
			m.phase = PhaseStartup
			m.startupTime = time.Now()
			if OnStartModules != nil {
				go OnStartModules()
			}
			return m, tickCmd()
		}
		switch {
		case key.Matches(msg, m.keys.Clear):
			m.trades.Clear()
			return m, nil
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
			return m, nil
		case key.Matches(msg, m.keys.Trade):
			m.showQuotes = false
			return m, nil
		case key.Matches(msg, m.keys.Quote):
			m.showQuotes = true
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			m.trades.ScrollUp()
			return m, nil
		case "down", "j":
			m.trades.ScrollDown()
			return m, nil
		case "e":
			m.errors = make([]ErrorEntry, 0, 3)
			m.errorMsg = ""
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width

	case TickMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.phase = PhaseStartup
			m.startupTime = time.Now()
			if OnStartModules != nil {
				go OnStartModules()
			}
		}
		return m, tickCmd()

	case TradeMsg:
		tr := msg.Trade
		m.trades.Add(components.TradeRow{
			Timestamp:    time.Now().Format("15:04:05"),
			Symbol:       tr.Symbol,
			Price:        tr.Price,
			Size:         tr.Size,
			MarketCenter: tr.MarketCenter,
			Condition:    tr.Condition,
		})
		m.tradesReceived++
		m.lastUpdate = time.Now()

	case QuoteMsg:
		q := msg.Quote
		row, ok := m.quotesBySymbol[q.Symbol]
		if !ok {
			m.quoteOrder = append(m.quoteOrder, q.Symbol)
		}
		if q.Type == domain.QuoteTypeBid {
			row.BidPrice = q.Price
			row.BidSize = q.Size
		} else {
			row.AskPrice = q.Price
			row.AskSize = q.Size
		}
		row.Symbol = q.Symbol
		m.quotesBySymbol[q.Symbol] = row
		sort.Strings(m.quoteOrder)

		rows := make([]components.QuoteRow, 0, len(m.quoteOrder))
		for _, sym := range m.quoteOrder {
			rows = append(rows, m.quotesBySymbol[sym])
		}
		m.quotes.Update(rows)

		m.quotesReceived++
		m.lastUpdate = time.Now()

	case StatsMsg:
		m.framesReceived = msg.FramesReceived

	case SessionStateMsg:
		wasReady := m.sessionState == "ready"
		if msg.State == "backoff" && wasReady {
			m.reconnects++
		}
		m.sessionState = msg.State
		m.status.Update(components.ConnectionStatus{
			Name:       "session",
			Connected:  msg.State == "ready",
			LastUpdate: time.Now(),
		})
		m.lastUpdate = time.Now()

		switch msg.State {
		case "authenticating":
			m.startupSteps["auth"].Status = "connecting"
		case "connecting":
			m.startupSteps["auth"].Status = "done"
			m.startupSteps["connect"].Status = "connecting"
		case "ready":
			m.startupSteps["auth"].Status = "done"
			m.startupSteps["connect"].Status = "done"
			m.startupComplete = true
		case "backoff":
			m.startupSteps["connect"].Status = "failed"
		}

	case ErrorMsg:
		m.errorMsg = msg.Error.Error()
		m.logs = addLog(m.logs, "error", msg.Error.Error())
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}
		m.errorCount++

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)

	case StartupMsg:
		if step, ok := m.startupSteps[msg.Step]; ok {
			step.Status = msg.Status
		}
	}

	m.stats.Update(components.Stats{
		FramesReceived: m.framesReceived,
		TradesReceived: m.tradesReceived,
		QuotesReceived: m.quotesReceived,
		Reconnects:     m.reconnects,
		Errors:         m.errorCount,
	})

	return m, nil
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logLine := fmt.Sprintf("[%s] %s: %s", timestamp, level, message)
	logs = append(logs, logLine)
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		if !m.startupComplete {
			return m.renderStartupScreen()
		}
		m.phase = PhaseDashboard
		fallthrough
	case PhaseDashboard:
	}

	var b strings.Builder

	title := TitleStyle.Render(" Intrinio Real-Time Market Data ")
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(MutedValue.Render(m.status.View()))
	b.WriteString("\n")

	leftCol := m.trades.View()
	var rightCol string
	if m.showQuotes {
		rightCol = m.quotes.View()
	} else {
		rightCol = m.stats.View()
	}

	if m.width > 100 {
		left := BoxStyle.Width(m.width/2 - 2).Render(leftCol)
		right := BoxStyle.Width(m.width/2 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		b.WriteString(BoxStyle.Width(m.width - 4).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(m.width - 4).Render(rightCol))
	}

	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		errorStyle := lipgloss.NewStyle().Foreground(ColorDanger)
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
		mutedError := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))

		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(mutedError.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(errorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(mutedError.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.paused {
		pauseStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
		b.WriteString(pauseStyle.Render("⏸ PAUSED"))
		b.WriteString(" • ")
	}
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	goldStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	greenStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))

	elapsed := time.Since(m.welcomeStart)
	dotCount := int(elapsed.Milliseconds()/300) % 4
	dots := strings.Repeat(".", dotCount)

	var sb strings.Builder
	sb.WriteString("\n\n\n\n")

	logo := `
   ██╗███╗   ██╗████████╗██████╗ ██╗███╗   ██╗██╗ ██████╗
   ██║████╗  ██║╚══██╔══╝██╔══██╗██║████╗  ██║██║██╔═══██╗
   ██║██╔██╗ ██║   ██║   ██████╔╝██║██╔██╗ ██║██║██║   ██║
   ██║██║╚██╗██║   ██║   ██╔══██╗██║██║╚██╗██║██║██║   ██║
   ██║██║ ╚████║   ██║   ██║  ██║██║██║ ╚████║██║╚██████╔╝
   ╚═╝╚═╝  ╚═══╝   ╚═╝   ╚═╝  ╚═╝╚═╝╚═╝  ╚═══╝╚═╝ ╚═════╝
`
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")

	subtitle := "            R E A L - T I M E   M A R K E T   D A T A"
	sb.WriteString(mutedStyle.Render(subtitle))
	sb.WriteString("\n\n\n")

	tagline := "                 📈  Trades and quotes, live  📈"
	sb.WriteString(goldStyle.Render(tagline))
	sb.WriteString("\n\n\n")

	loading := fmt.Sprintf("                  Initializing%s", dots)
	sb.WriteString(greenStyle.Render(loading))
	sb.WriteString("\n\n")

	hint := "            Press any key to skip, or wait..."
	sb.WriteString(mutedStyle.Render(hint))
	sb.WriteString("\n")

	return sb.String()
}

// renderStartupScreen renders the authenticating/connecting screen.
func (m Model) renderStartupScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")).MarginBottom(1)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	connectingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	failedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(titleStyle.Render("  Intrinio Real-Time Market Data"))
	sb.WriteString("\n\n")
	sb.WriteString(headerStyle.Render("  Starting up..."))
	sb.WriteString("\n\n")

	stepOrder := []string{"auth", "connect"}
	for _, stepKey := range stepOrder {
		step, ok := m.startupSteps[stepKey]
		if !ok {
			continue
		}

		var icon, statusText string
		var style lipgloss.Style

		switch step.Status {
		case "connected", "done":
			icon = "✓"
			statusText = "Ready"
			style = successStyle
		case "connecting":
			spinners := []string{"◐", "◓", "◑", "◒"}
			idx := int(time.Since(m.startupTime).Milliseconds()/200) % len(spinners)
			icon = spinners[idx]
			statusText = "Connecting..."
			style = connectingStyle
		case "failed":
			icon = "✗"
			statusText = "Retrying..."
			style = failedStyle
		default:
			icon = "○"
			statusText = "Pending"
			style = mutedStyle
		}

		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			style.Render(icon),
			mutedStyle.Render(step.Name),
			style.Render(statusText),
		))
	}

	sb.WriteString("\n")
	elapsed := time.Since(m.startupTime).Round(time.Second)
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  Elapsed: %s", elapsed)))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("  Waiting for the session to become ready..."))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	stateStyle := StatusDisconnected
	if m.sessionState == "ready" {
		stateStyle = StatusConnected
	} else if m.sessionState == "backoff" || m.sessionState == "connecting" || m.sessionState == "authenticating" {
		stateStyle = StatusReconnecting
	}
	parts = append(parts, stateStyle.Render("session: "+m.sessionState))

	parts = append(parts, fmt.Sprintf("Frames: %d", m.framesReceived))
	parts = append(parts, fmt.Sprintf("Trades: %d", m.tradesReceived))
	parts = append(parts, fmt.Sprintf("Quotes: %d", m.quotesReceived))

	if m.reconnects > 0 {
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Reconnects: %d", m.reconnects)))
	}

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		indicator := ""
		if ago < 2*time.Second {
			indicator = "▪"
		}
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago %s", ago, indicator)))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules should start.
// This is set by main.go to signal when to begin loading modules.
var OnStartModules func()

// Run starts the Bubble Tea program.
func Run() error {
	Program = tea.NewProgram(New(), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
	if _, ok := msg.(StartModulesMsg); ok && OnStartModules != nil {
		OnStartModules()
	}
}
