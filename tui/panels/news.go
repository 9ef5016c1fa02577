package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/stockwire/internal/news"
	"github.com/zappabad/stockwire/tui/styles"
)

// NewsPanel displays the feed in its current order.
type NewsPanel struct {
	items         []news.Item
	byDate        bool
	selectedIndex int
	scrollOffset  int
	focused       bool
	width         int
	height        int
}

// NewNewsPanel creates a new news panel.
func NewNewsPanel() *NewsPanel {
	return &NewsPanel{}
}

// Init initializes the panel.
func (p *NewsPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *NewsPanel) Update(msg tea.Msg) (*NewsPanel, tea.Cmd) {
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
			if p.selectedIndex < len(p.items)-1 {
				p.selectedIndex++
				visibleItems := p.visibleItems()
				if p.selectedIndex >= p.scrollOffset+visibleItems {
					p.scrollOffset = p.selectedIndex - visibleItems + 1
				}
			}
		}
	}
	return p, nil
}

func (p *NewsPanel) visibleItems() int {
	n := p.height - 5
	if n < 1 {
		n = 1
	}
	return n
}

// View renders the panel.
func (p *NewsPanel) View() string {
	var content strings.Builder

	if len(p.items) == 0 {
		content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("Feed is empty"))
	} else {
		visibleItems := p.visibleItems()

		start := p.scrollOffset
		end := start + visibleItems
		if end > len(p.items) {
			end = len(p.items)
		}

		for i := start; i < end; i++ {
			item := p.items[i]

			tone := styles.NegativeStyle.Render("▼")
			if item.Positive {
				tone = styles.PositiveStyle.Render("▲")
			}

			headlineStyle := styles.NewsNormalStyle
			if item.Impact >= news.CrisisImpact {
				headlineStyle = styles.NewsImportantStyle
			}

			// date(10) + impact(4) + tone(2) + sector(5) + padding
			title := styles.Truncate(item.Title, p.width-30)

			line := fmt.Sprintf("%s %s %s %s %s",
				styles.DateStyle.Render(item.Date),
				headlineStyle.Render(fmt.Sprintf("%2d", item.Impact)),
				tone,
				styles.SectorStyle.Render(fmt.Sprintf("%-4.4s", item.Sector)),
				headlineStyle.Render(title),
			)

			if i == p.selectedIndex && p.focused {
				line = styles.SelectedRowStyle.Render(line)
			}

			content.WriteString(line)
			if i < end-1 {
				content.WriteString("\n")
			}
		}

		if len(p.items) > visibleItems {
			scrollInfo := fmt.Sprintf(" (%d/%d)", p.selectedIndex+1, len(p.items))
			content.WriteString("\n")
			content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(scrollInfo))
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	order := "impact"
	if p.byDate {
		order = "date"
	}
	title := styles.RenderTitle(fmt.Sprintf("📰 News (%d, by %s)", len(p.items), order), p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *NewsPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *NewsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetItems sets the feed contents and the order they are in.
func (p *NewsPanel) SetItems(items []news.Item, byDate bool) {
	p.items = items
	p.byDate = byDate
	if p.selectedIndex >= len(p.items) {
		p.selectedIndex = len(p.items) - 1
		if p.selectedIndex < 0 {
			p.selectedIndex = 0
		}
	}
	if p.scrollOffset > p.selectedIndex {
		p.scrollOffset = p.selectedIndex
	}
}

// SelectedItem returns the currently selected news item.
func (p *NewsPanel) SelectedItem() (news.Item, bool) {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.items) {
		return p.items[p.selectedIndex], true
	}
	return news.Item{}, false
}

// NewsUpdateMsg is sent when an item is published.
type NewsUpdateMsg struct {
	Seq      int64
	Item     news.Item
	Adjusted int
}
