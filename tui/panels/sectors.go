package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/zappabad/stockwire/internal/market"
	"github.com/zappabad/stockwire/internal/report"
	"github.com/zappabad/stockwire/tui/styles"
)

// SectorRow is one line of the sector board.
type SectorRow struct {
	Sector      market.Sector
	Average     decimal.Decimal
	Instruments int
	News        int
}

// SectorsPanel shows the average price and news count of every sector.
type SectorsPanel struct {
	rows         []SectorRow
	currency     string
	scrollOffset int
	focused      bool
	width        int
	height       int
}

// NewSectorsPanel creates a new sector board.
func NewSectorsPanel(currency string) *SectorsPanel {
	return &SectorsPanel{currency: currency}
}

// Init initializes the panel.
func (p *SectorsPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *SectorsPanel) Update(msg tea.Msg) (*SectorsPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.scrollOffset > 0 {
				p.scrollOffset--
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.scrollOffset < len(p.rows)-1 {
				p.scrollOffset++
			}
		}
	}
	return p, nil
}

// View renders the panel.
func (p *SectorsPanel) View() string {
	var content strings.Builder

	header := fmt.Sprintf("%-18s %12s %5s %5s", "Sector", "Avg price", "Inst", "News")
	content.WriteString(styles.HeaderStyle.Render(header))
	content.WriteString("\n")

	visible := p.height - 5
	if visible < 1 {
		visible = 1
	}
	end := p.scrollOffset + visible
	if end > len(p.rows) {
		end = len(p.rows)
	}

	for i := p.scrollOffset; i < end; i++ {
		r := p.rows[i]
		avg := "-"
		style := styles.MutedStyle
		if r.Instruments > 0 {
			avg = report.FormatMoney(r.Average, p.currency)
			style = styles.RowStyle
		}
		line := fmt.Sprintf("%-18s %12s %5d %5d", r.Sector, avg, r.Instruments, r.News)
		content.WriteString(style.Render(line))
		if i < end-1 {
			content.WriteString("\n")
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("🏭 Sectors", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *SectorsPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *SectorsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetRows replaces the board contents.
func (p *SectorsPanel) SetRows(rows []SectorRow) {
	p.rows = rows
	if p.scrollOffset >= len(rows) {
		p.scrollOffset = 0
	}
}

// Rows returns the current board contents.
func (p *SectorsPanel) Rows() []SectorRow {
	return p.rows
}
