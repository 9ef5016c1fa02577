package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	marketview "github.com/zappabad/stockwire/internal/market/view"
	"github.com/zappabad/stockwire/internal/report"
	"github.com/zappabad/stockwire/tui/styles"
)

// InstrumentsPanel lists every instrument with its current price and last move.
type InstrumentsPanel struct {
	quotes        []marketview.Quote
	changes       map[string]marketview.PriceEvent
	byPrice       bool
	currency      string
	selectedIndex int
	scrollOffset  int
	focused       bool
	width         int
	height        int
}

// NewInstrumentsPanel creates a new instruments panel.
func NewInstrumentsPanel(currency string) *InstrumentsPanel {
	return &InstrumentsPanel{
		currency: currency,
		changes:  make(map[string]marketview.PriceEvent),
	}
}

// Init initializes the panel.
func (p *InstrumentsPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *InstrumentsPanel) Update(msg tea.Msg) (*InstrumentsPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.selectedIndex > 0 {
				p.selectedIndex--
				if p.selectedIndex < p.scrollOffset {
					p.scrollOffset = p.selectedIndex
				}
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.selectedIndex < len(p.quotes)-1 {
				p.selectedIndex++
				visible := p.visibleRows()
				if p.selectedIndex >= p.scrollOffset+visible {
					p.scrollOffset = p.selectedIndex - visible + 1
				}
			}
		}
	}
	return p, nil
}

func (p *InstrumentsPanel) visibleRows() int {
	rows := p.height - 5 // borders, title, header
	if rows < 1 {
		rows = 1
	}
	return rows
}

// View renders the panel.
func (p *InstrumentsPanel) View() string {
	var content strings.Builder

	header := fmt.Sprintf("%-6s %-18s %12s %8s", "Ticker", "Sector", "Price", "Chg")
	content.WriteString(styles.HeaderStyle.Render(header))
	content.WriteString("\n")

	if len(p.quotes) == 0 {
		content.WriteString(styles.MutedStyle.Render("No instruments"))
	}

	visible := p.visibleRows()
	end := p.scrollOffset + visible
	if end > len(p.quotes) {
		end = len(p.quotes)
	}
	for i := p.scrollOffset; i < end; i++ {
		q := p.quotes[i]

		row := fmt.Sprintf("%-6s %-18s %12s ",
			q.Ticker, styles.Truncate(q.Sector.String(), 18), report.FormatMoney(q.Price, p.currency))

		style := styles.RowStyle
		if i == p.selectedIndex && p.focused {
			style = styles.SelectedRowStyle
		}
		content.WriteString(style.Render(row))
		content.WriteString(p.renderChange(q.Ticker))
		if i < end-1 {
			content.WriteString("\n")
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	order := "ticker"
	if p.byPrice {
		order = "price"
	}
	title := styles.RenderTitle(fmt.Sprintf("📈 Instruments (by %s)", order), p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *InstrumentsPanel) renderChange(ticker string) string {
	ev, ok := p.changes[ticker]
	if !ok || ev.Old.IsZero() {
		return styles.MutedStyle.Render(fmt.Sprintf("%8s", "-"))
	}
	pct := ev.New.Sub(ev.Old).Div(ev.Old).Mul(decimal.NewFromInt(100))
	sign := ""
	if pct.IsPositive() {
		sign = "+"
	}
	label := fmt.Sprintf("%7s%%", sign+pct.StringFixed(2))
	switch {
	case ev.Up():
		return styles.PriceUpStyle.Render(label)
	case ev.Down():
		return styles.PriceDownStyle.Render(label)
	}
	return styles.MutedStyle.Render(label)
}

// SetFocus sets the focus state of the panel.
func (p *InstrumentsPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *InstrumentsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetQuotes replaces the listed instruments, keeping the selected ticker
// selected when it is still present.
func (p *InstrumentsPanel) SetQuotes(quotes []marketview.Quote) {
	selected := p.SelectedTicker()
	p.quotes = quotes
	p.selectedIndex = 0
	for i, q := range quotes {
		if q.Ticker == selected {
			p.selectedIndex = i
			break
		}
	}
	if p.scrollOffset > p.selectedIndex {
		p.scrollOffset = p.selectedIndex
	}
}

// SetChanges sets the latest price change per ticker.
func (p *InstrumentsPanel) SetChanges(changes map[string]marketview.PriceEvent) {
	p.changes = changes
}

// ToggleOrder switches between ticker and price ordering and reports the new mode.
func (p *InstrumentsPanel) ToggleOrder() bool {
	p.byPrice = !p.byPrice
	return p.byPrice
}

// ByPrice reports whether instruments are listed most expensive first.
func (p *InstrumentsPanel) ByPrice() bool {
	return p.byPrice
}

// SelectedTicker returns the ticker of the selected row.
func (p *InstrumentsPanel) SelectedTicker() string {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.quotes) {
		return p.quotes[p.selectedIndex].Ticker
	}
	return ""
}

// PriceUpdateMsg is sent when an instrument's price changes.
type PriceUpdateMsg struct {
	Event marketview.PriceEvent
}
