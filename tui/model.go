package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/zappabad/stockwire/internal/desk"
	"github.com/zappabad/stockwire/internal/engine"
	"github.com/zappabad/stockwire/internal/market"
	"github.com/zappabad/stockwire/pkg/logger"
	"github.com/zappabad/stockwire/tui/panels"
	"github.com/zappabad/stockwire/tui/styles"
)

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusInstruments PanelFocus = 0
	FocusChart       PanelFocus = 1
	FocusSectors     PanelFocus = 2
	FocusNews        PanelFocus = 3

	panelCount = 4
)

const refreshInterval = 500 * time.Millisecond

// Options configures a Model.
type Options struct {
	// Currency is the ISO code used to display prices.
	Currency string
	// Simulation, when set, is stepped from the UI loop every SimInterval.
	Simulation  *engine.Simulation
	SimInterval time.Duration
}

// Model is the main TUI application model.
type Model struct {
	desk *desk.Desk
	opts Options
	log  *zap.Logger

	instrumentsPanel *panels.InstrumentsPanel
	chartPanel       *panels.ChartPanel
	sectorsPanel     *panels.SectorsPanel
	newsPanel        *panels.NewsPanel

	focusedPanel PanelFocus

	width  int
	height int

	paused    bool
	statusMsg string
	ready     bool
}

// NewModel creates a new TUI model over d.
func NewModel(d *desk.Desk, opts Options) *Model {
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	if opts.SimInterval <= 0 {
		opts.SimInterval = 2 * time.Second
	}

	m := &Model{
		desk:             d,
		opts:             opts,
		log:              logger.Named("tui"),
		instrumentsPanel: panels.NewInstrumentsPanel(opts.Currency),
		chartPanel:       panels.NewChartPanel(opts.Currency),
		sectorsPanel:     panels.NewSectorsPanel(opts.Currency),
		newsPanel:        panels.NewNewsPanel(),
		focusedPanel:     FocusInstruments,
	}
	m.syncFocus()
	m.updateAllData()
	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.instrumentsPanel.Init(),
		m.chartPanel.Init(),
		m.sectorsPanel.Init(),
		m.newsPanel.Init(),
		m.listenPriceEvents(),
		m.listenNewsEvents(),
		m.tickRefresh(),
		m.tickSimulation(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "tab":
			m.cycleFocus(1)
		case "shift+tab":
			m.cycleFocus(-1)

		case "f1":
			m.setFocus(FocusInstruments)
		case "f2":
			m.setFocus(FocusChart)
		case "f3":
			m.setFocus(FocusSectors)
		case "f4":
			m.setFocus(FocusNews)

		case "s":
			m.desk.News.SortByDate()
			m.statusMsg = "Feed sorted by date"
			m.updateAllData()
		case "x":
			m.extractNews()
		case "p":
			if m.instrumentsPanel.ToggleOrder() {
				m.statusMsg = "Instruments by price"
			} else {
				m.statusMsg = "Instruments by ticker"
			}
			m.updateAllData()
		case "n":
			m.stepSimulation()
		case " ":
			if m.opts.Simulation != nil {
				m.paused = !m.paused
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case panels.PriceUpdateMsg:
		m.updateAllData()
		cmds = append(cmds, m.listenPriceEvents())

	case panels.NewsUpdateMsg:
		m.statusMsg = fmt.Sprintf("#%d %s: %d instrument(s) moved", msg.Seq, msg.Item.Title, msg.Adjusted)
		m.updateAllData()
		cmds = append(cmds, m.listenNewsEvents())

	case eventsClosedMsg:
		m.log.Debug("event stream closed", zap.String("stream", string(msg)))

	case tickMsg:
		m.updateAllData()
		cmds = append(cmds, m.tickRefresh())

	case simTickMsg:
		if !m.paused {
			m.stepSimulation()
		}
		if m.opts.Simulation != nil && m.opts.Simulation.Remaining() > 0 {
			cmds = append(cmds, m.tickSimulation())
		}
	}

	m.updateFocusedPanel(msg, &cmds)

	return m, tea.Batch(cmds...)
}

func (m *Model) updateFocusedPanel(msg tea.Msg, cmds *[]tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedPanel {
	case FocusInstruments:
		m.instrumentsPanel, cmd = m.instrumentsPanel.Update(msg)
		if selected := m.instrumentsPanel.SelectedTicker(); selected != m.chartPanel.Ticker() {
			m.updateChart()
		}
	case FocusChart:
		m.chartPanel, cmd = m.chartPanel.Update(msg)
	case FocusSectors:
		m.sectorsPanel, cmd = m.sectorsPanel.Update(msg)
	case FocusNews:
		m.newsPanel, cmd = m.newsPanel.Update(msg)
	}

	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	// Layout:
	// ┌───────────────────┬─────────────────────────┐
	// │   Instruments     │        History          │
	// ├───────────────────┼─────────────────────────┤
	// │     Sectors       │         News            │
	// └───────────────────┴─────────────────────────┘
	leftWidth := m.width * 2 / 5
	rightWidth := m.width - leftWidth

	topHeight := (m.height - 1) * 3 / 5
	bottomHeight := m.height - 1 - topHeight

	m.instrumentsPanel.SetSize(leftWidth, topHeight)
	m.chartPanel.SetSize(rightWidth, topHeight)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.instrumentsPanel.View(),
		m.chartPanel.View(),
	)

	m.sectorsPanel.SetSize(leftWidth, bottomHeight)
	m.newsPanel.SetSize(rightWidth, bottomHeight)
	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.sectorsPanel.View(),
		m.newsPanel.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, topRow, bottomRow, m.renderStatusBar())
}

func (m *Model) renderStatusBar() string {
	keys := []struct{ key, desc string }{
		{"F1-F4", " panels"},
		{"↑↓", " select"},
		{"s", " sort by date"},
		{"x", " extract"},
		{"p", " price order"},
		{"n", " next news"},
		{"q", " quit"},
	}
	var help string
	for i, k := range keys {
		if i > 0 {
			help += " │ "
		}
		help += styles.StatusBarKeyStyle.Render(k.key) + styles.StatusBarDescStyle.Render(k.desc)
	}

	var badges string
	if m.desk.News.CrisisAlert() {
		badges += styles.CrisisStyle.Render("CRISIS") + " "
	}
	badges += styles.StatusBarDescStyle.Render(fmt.Sprintf("avg impact %.1f", m.desk.News.AverageImpact()))
	if sim := m.opts.Simulation; sim != nil {
		state := fmt.Sprintf(" │ script %d left", sim.Remaining())
		if m.paused {
			state += " (paused)"
		}
		badges += styles.StatusBarDescStyle.Render(state)
	}

	status := ""
	if m.statusMsg != "" {
		status = " │ " + m.statusMsg
	}

	return styles.StatusBarStyle.Width(m.width).Render(badges + " │ " + help + status)
}

func (m *Model) setFocus(panel PanelFocus) {
	m.focusedPanel = panel
	m.syncFocus()
}

func (m *Model) cycleFocus(delta int) {
	m.setFocus(PanelFocus((int(m.focusedPanel) + delta + panelCount) % panelCount))
}

func (m *Model) syncFocus() {
	m.instrumentsPanel.SetFocus(m.focusedPanel == FocusInstruments)
	m.chartPanel.SetFocus(m.focusedPanel == FocusChart)
	m.sectorsPanel.SetFocus(m.focusedPanel == FocusSectors)
	m.newsPanel.SetFocus(m.focusedPanel == FocusNews)
}

func (m *Model) extractNews() {
	item, err := m.desk.News.Extract()
	if err != nil {
		m.statusMsg = err.Error()
		return
	}
	m.statusMsg = fmt.Sprintf("Extracted [%d] %s", item.Impact, item.Title)
	m.updateAllData()
}

func (m *Model) stepSimulation() {
	sim := m.opts.Simulation
	if sim == nil {
		return
	}
	item, ok, err := sim.Step()
	switch {
	case !ok:
		m.statusMsg = "Script exhausted"
	case err != nil:
		m.statusMsg = fmt.Sprintf("Rejected %q: %v", item.Title, err)
	}
}

func (m *Model) updateAllData() {
	if m.instrumentsPanel.ByPrice() {
		m.instrumentsPanel.SetQuotes(m.desk.Market.QuotesByPrice())
	} else {
		m.instrumentsPanel.SetQuotes(m.desk.Market.Quotes())
	}
	m.instrumentsPanel.SetChanges(m.desk.Market.Changes())

	m.newsPanel.SetItems(m.desk.News.Items(), m.desk.News.ByDate())
	m.sectorsPanel.SetRows(m.sectorRows())
	m.updateChart()
}

func (m *Model) updateChart() {
	ticker := m.instrumentsPanel.SelectedTicker()
	if ticker == "" {
		return
	}
	hist, err := m.desk.Market.History(ticker)
	if err != nil {
		return
	}
	m.chartPanel.SetHistory(ticker, hist)
	if adv, err := m.desk.Advise(ticker); err == nil {
		m.chartPanel.SetAdvice(adv)
	}
}

func (m *Model) sectorRows() []panels.SectorRow {
	counts := make(map[market.Sector]int)
	for _, q := range m.desk.Market.Quotes() {
		counts[q.Sector]++
	}

	sectors := market.Sectors()
	rows := make([]panels.SectorRow, len(sectors))
	for i, s := range sectors {
		rows[i] = panels.SectorRow{
			Sector:      s,
			Average:     m.desk.Market.SectorAverage(s),
			Instruments: counts[s],
			News:        len(m.desk.News.BySector(s)),
		}
	}
	return rows
}

// listenPriceEvents waits for one price event. The handler re-arms it.
func (m *Model) listenPriceEvents() tea.Cmd {
	events := m.desk.Market.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg("market")
		}
		return panels.PriceUpdateMsg{Event: ev}
	}
}

// listenNewsEvents waits for one news event. The handler re-arms it.
func (m *Model) listenNewsEvents() tea.Cmd {
	events := m.desk.News.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg("news")
		}
		return panels.NewsUpdateMsg{Seq: ev.Seq, Item: ev.Item, Adjusted: ev.Adjusted}
	}
}

type eventsClosedMsg string

// tickMsg is sent periodically to refresh data.
type tickMsg struct{}

func (m *Model) tickRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// simTickMsg steps the simulation.
type simTickMsg struct{}

func (m *Model) tickSimulation() tea.Cmd {
	if m.opts.Simulation == nil {
		return nil
	}
	return tea.Tick(m.opts.SimInterval, func(time.Time) tea.Msg {
		return simTickMsg{}
	})
}
